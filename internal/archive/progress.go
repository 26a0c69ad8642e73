package archive

import (
	"archive/tar"
	"io"
)

// progressReader counts content bytes as they flow from the entry stream
// into the tar writer and emits one event per chunk. Chunks are forwarded
// unchanged; the counter only ever grows, so events are strictly ordered
// and monotonically non-decreasing for the entry.
type progressReader struct {
	r      io.Reader
	header *tar.Header
	bytes  int64
	emit   func(ProgressEvent)
}

func newProgressReader(r io.Reader, header *tar.Header, emit func(ProgressEvent)) *progressReader {
	return &progressReader{r: r, header: header, emit: emit}
}

// Read implements io.Reader.
func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.bytes += int64(n)
		if p.emit != nil {
			p.emit(ProgressEvent{Bytes: p.bytes, Header: p.header})
		}
	}
	return n, err
}

// start emits the entry-start event carrying zero bytes. It must be called
// before the first Read.
func (p *progressReader) start() {
	if p.emit != nil {
		p.emit(ProgressEvent{Bytes: 0, Header: p.header})
	}
}
