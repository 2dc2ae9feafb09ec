// Package orders manages purchase and sales orders with their product
// lines and lifecycle transitions. Lines are only editable while an
// order is in draft; afterwards the totals feed invoicing.
package orders
