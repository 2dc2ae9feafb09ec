// Package pg wires Postgres connectivity: pooled connections via pgx with
// startup retries, goose SQL migrations bridged from the pool, a readiness
// check, and SQLSTATE classifiers shared by the stores.
package pg
