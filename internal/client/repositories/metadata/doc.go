// Package metadata is the persistent storage medium for the client session:
// a small key/value table holding the formatted auth token, the JSON user
// record and the refresh token.
//
// # Backends
//
//   - SQLiteStore  : default, a local file (modernc.org/sqlite, goose migrations)
//   - PostgresStore: shared database (pgx stdlib driver, goose migrations)
//   - RedisStore   : shared cache (go-redis), keys live under a prefix
//   - MemoryStore  : process-local, for tests and throwaway sessions
//
// Open selects one by name. Every backend implements Store, so a session
// mutation that touches several keys is written with one Batch call and
// cannot be observed half-applied.
package metadata
