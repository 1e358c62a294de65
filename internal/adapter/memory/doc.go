// Package memory implements the shared state store contracts in process memory.
//
// Used for single-instance development (STORE_BACKEND=memory) and as a fast backend
// for engine tests. Semantics match the Redis adapter: create-if-absent counters,
// second-granularity rolling window limiter with idle expiry, fan-out pub/sub.
package memory
