// Package main provides the entry point for the parcel CLI.
//
// parcel packs a single file into a tar archive, optionally compressed,
// streaming progress as bytes flow through the pipeline. It can extract
// and inspect the archives it produces and keeps a local history of pack
// operations.
//
// Usage:
//
//	parcel pack <file>
//	parcel extract <archive> [directory]
//
// See --help for all available options.
package main

// main is the entry point for parcel.
func main() {
	Execute()
}
