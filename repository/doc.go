// Package repository provides Bun backed repositories with read-only,
// write-only and update-only facets, and a unit of work that commits queued
// writes in one transaction.
package repository
