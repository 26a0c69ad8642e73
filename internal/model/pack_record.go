package model

import "time"

// PackRecord is the persisted history row for one completed pack
// operation. Records are written by the CLI after an operation completes
// and browsed with the history command.
type PackRecord struct {
	// ID is the database row ID; zero until saved.
	ID int64 `json:"id"`

	// Source is the absolute path of the packed file.
	Source string `json:"source"`

	// Destination is the absolute path of the produced archive.
	Destination string `json:"destination"`

	// EntryName is the name the entry carries inside the archive, after
	// any header rewrite.
	EntryName string `json:"entry_name"`

	// Bytes is the number of entry content bytes packed.
	Bytes int64 `json:"bytes"`

	// Codec is the post-pack compression codec ("none" when uncompressed).
	Codec string `json:"codec"`

	// Duration is how long the operation ran.
	Duration time.Duration `json:"duration"`

	// CreatedAt is when the operation completed.
	CreatedAt time.Time `json:"created_at"`
}
