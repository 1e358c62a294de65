// Package domain defines the core game types and the contracts of the shared state store.
//
// This package contains concept-oriented files (game.go, store.go, pubsub.go, rate_limit.go, errors.go)
// with shared types and cross-cutting interfaces. No I/O here - just contracts.
package domain
