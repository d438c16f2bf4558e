// Package jwt issues and verifies the HS256 bearer tokens returned by sign-in.
//
// Claims carry the user ID as the subject plus the caller's role. Middleware
// parses the Authorization header and stores *Claims in the request context,
// where handlers read them with ClaimsFromContext.
package jwt
