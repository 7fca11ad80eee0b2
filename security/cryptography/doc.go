// Package cryptography hashes and verifies user passwords.
package cryptography
