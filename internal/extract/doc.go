// Package extract reads archives produced by the packer back out: it
// extracts entries to a directory and lists archive contents without
// extracting. The compression codec is inferred from the archive's file
// extension unless the caller names one explicitly.
package extract
