// Package planshare wires the infrastructure layer: configuration, the
// database provider, bootstrap and migrations, repositories, access tokens
// and password hashing.
package planshare
