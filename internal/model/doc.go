// Package model defines the data structures shared across the parcel
// packages: the manifest describing an archive's contents and the history
// record persisted for each completed pack operation.
package model
