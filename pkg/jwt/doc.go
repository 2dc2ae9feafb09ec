// Package jwt implements HS256 JSON Web Tokens for the first-party auth
// layer: HMAC-SHA256 signing, constant-time verification, and standard
// temporal claim validation.
package jwt
