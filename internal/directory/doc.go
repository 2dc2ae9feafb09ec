// Package directory manages a tenant's customers and suppliers. Both
// sides share the Party shape and the scoped-store convention; codes are
// unique per tenant only.
package directory
