// Package migrations holds the versioned, forward-only schema changes of the
// application. Importing it registers every migration with
// database.DefaultRegistry.
package migrations
