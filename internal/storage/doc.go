// Package storage provides the MongoDB repositories behind the auth and
// branch services, plus the Redis-backed OAuth state store. Unique-index
// violations are translated to the services' typed errors here so callers
// never see driver errors.
package storage
