// Package database selects the relational provider for a deployment, makes
// sure the target database exists and applies forward-only versioned
// migrations recorded in the VersionInfo ledger. It is built on Bun.
package database
