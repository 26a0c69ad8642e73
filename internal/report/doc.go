// Package report renders archive manifests and pack history in the output
// formats the CLI offers: human-readable text, JSON, and Markdown.
package report
