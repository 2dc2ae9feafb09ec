// Package requestid assigns a stable identifier to each HTTP request and
// propagates it through the context for logging and response headers.
package requestid
