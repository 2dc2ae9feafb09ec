// Package bootstrap provisions the fixed installation state: root and
// guest tenants, the superuser, and its owner membership. Rerunning is
// always safe; every step creates if absent or repairs in place.
package bootstrap
