// Package redis provides the optional Redis connection used as a shared
// tenant-cache backend, with startup retries and a readiness check.
package redis
