// Package auth is the first-party authentication collaborator: users with
// bcrypt passwords, HS256 access tokens, and middleware that attaches the
// authenticated Identity to the request context. Tenant resolution treats
// the Identity as an external input and never reads user rows itself.
package auth
