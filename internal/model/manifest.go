package model

import (
	"io/fs"
	"time"
)

// ManifestEntry describes one entry of an archive.
type ManifestEntry struct {
	// Name is the entry name as stored in the archive.
	Name string `json:"name"`

	// Size is the entry's content size in bytes.
	Size int64 `json:"size"`

	// Mode is the entry's file mode.
	Mode fs.FileMode `json:"mode"`

	// ModTime is the entry's modification time.
	ModTime time.Time `json:"mod_time"`
}

// Manifest describes an archive's contents without extracting it.
type Manifest struct {
	// Path is the archive file that was read.
	Path string `json:"path"`

	// Codec is the compression codec the archive was read through
	// ("none" when stored uncompressed).
	Codec string `json:"codec"`

	// Entries lists the archive's entries in stored order.
	Entries []ManifestEntry `json:"entries"`
}

// TotalBytes returns the sum of all entry content sizes.
func (m *Manifest) TotalBytes() int64 {
	var total int64
	for _, e := range m.Entries {
		total += e.Size
	}
	return total
}
