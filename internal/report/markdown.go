package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nao1215/parcel/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, for
// documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteManifest implements Writer.
func (w *MarkdownWriter) WriteManifest(manifest *model.Manifest) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Archive Manifest")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Archive", "`" + manifest.Path + "`"},
			{"Codec", manifest.Codec},
			{"Entries", strconv.Itoa(len(manifest.Entries))},
			{"Total Size", humanize.Bytes(uint64(manifest.TotalBytes()))},
		},
	})
	md.PlainText("")

	md.H2("Entries")
	md.PlainText("")
	rows := make([][]string, 0, len(manifest.Entries))
	for _, e := range manifest.Entries {
		rows = append(rows, []string{
			"`" + e.Name + "`",
			humanize.Bytes(uint64(e.Size)),
			e.Mode.String(),
			e.ModTime.Format("2006-01-02 15:04:05 MST"),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Size", "Mode", "Modified"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// WriteHistory implements Writer.
func (w *MarkdownWriter) WriteHistory(records []model.PackRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Pack History")
	md.PlainText("")

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			"`" + r.Source + "`",
			"`" + r.Destination + "`",
			r.EntryName,
			humanize.Bytes(uint64(r.Bytes)),
			r.Codec,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Source", "Destination", "Entry", "Size", "Codec"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}
