// Package billing manages invoices and payments. Invoice status is
// derived from the payment rollup; the rollup can never exceed the
// invoice total.
package billing
