// Package tokens issues and validates HS256 access tokens whose subject is
// the user identifier.
package tokens
