// Package api defines the HTTP boundary conventions: the JSON response
// envelope, the status/key error taxonomy, and strict request body binding.
package api
