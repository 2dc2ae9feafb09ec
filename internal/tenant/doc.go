// Package tenant implements shared-schema multi-tenancy: the tenant
// registry, custom domain mappings, role-based memberships, and the
// per-request resolution middleware that decides which tenant a request
// acts on.
//
// Resolution runs in strict priority order: explicit header, exact
// domain mapping, subdomain slug, the user's highest-privilege active
// membership, and finally no tenant at all. Nothing ever falls back to
// a default tenant.
//
// Isolation is enforced at the application layer through Scope: every
// tenant-owned store operation takes a Scope derived from the resolved
// tenant and filters on it, so cross-tenant reads come back as "not
// found" rather than "forbidden".
package tenant
