// Package entity defines the persisted domain models.
package entity
