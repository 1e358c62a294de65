// Package app provides the per-connection session engine.
//
// A Supervisor runs one Reader and one Writer for every client connection.
// The Reader applies pulls to the shared GameStore and publishes the new state;
// the Writer relays every published state to its client. Depends on domain
// interfaces, not concrete implementations.
package app
