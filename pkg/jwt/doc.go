// Package jwt issues and verifies the signed tokens used for stateless
// authentication. Tokens are HMAC-SHA256 signed and carry subject, tenant,
// roles and token kind claims with absolute expiry.
//
// The tenant claim is embedded in the token itself rather than relied upon
// from request context alone: a token minted for tenant A cannot be replayed
// against tenant B even when the tenant header is forged, because both
// signals must independently agree at verification time.
package jwt
