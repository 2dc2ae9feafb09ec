// Package invite brings users into tenants. An address with an existing
// account gets its membership immediately; an unknown address gets a
// pending invite row and an emailed acceptance link.
package invite
