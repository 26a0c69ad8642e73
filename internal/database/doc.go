// Package database provides SQLite-based storage for the pack history:
// one row per completed pack operation, browsed and pruned by the history
// command.
package database
