// Package compress provides the post-pack transforms the archiver can
// insert between the tar packer and the destination writer, and the
// matching read side used during extraction.
//
// Transforms are looked up by codec name ("gzip", "lz4", "none") for the
// CLI and the configuration file, or by destination file extension when
// reading an archive back.
package compress
