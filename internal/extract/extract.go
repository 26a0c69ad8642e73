package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/parcel/internal/compress"
	"github.com/nao1215/parcel/internal/model"
)

// ErrUnsafeEntryName is returned for an entry whose name would escape the
// extraction directory.
var ErrUnsafeEntryName = errors.New("unsafe entry name: entry would extract outside the destination directory")

// Options configures extraction.
type Options struct {
	// Codec names the compression codec to read through. Empty means
	// infer it from the archive path's extension.
	Codec string

	// DirMode is the mode for directories created during extraction.
	// Zero means 0755.
	DirMode os.FileMode
}

// Extract unpacks the archive at path into dir, creating dir if needed,
// and returns a manifest of what was written. It honors ctx between
// entries and while copying entry content.
func Extract(ctx context.Context, path, dir string, opts Options) (*model.Manifest, error) {
	if opts.DirMode == 0 {
		opts.DirMode = 0o755
	}
	if err := os.MkdirAll(dir, opts.DirMode); err != nil {
		return nil, fmt.Errorf("create extraction directory %s: %w", dir, err)
	}

	manifest := &model.Manifest{Path: path}
	err := readArchive(ctx, path, opts.Codec, manifest, func(header *tar.Header, content io.Reader) error {
		target, err := safeJoin(dir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			return os.MkdirAll(target, opts.DirMode)
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), opts.DirMode); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, content); err != nil {
				_ = out.Close()
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
			return out.Close()
		default:
			// Entry types the packer never produces are skipped.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// Manifest lists the archive's entries without extracting anything.
func Manifest(ctx context.Context, path string, codec string) (*model.Manifest, error) {
	manifest := &model.Manifest{Path: path}
	err := readArchive(ctx, path, codec, manifest, func(*tar.Header, io.Reader) error {
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// readArchive walks the archive's entries, filling the manifest and
// handing each entry to handle.
func readArchive(ctx context.Context, path, codec string, manifest *model.Manifest, handle func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer f.Close()

	if codec == "" {
		codec = compress.DetectName(path)
	}
	manifest.Codec = codec

	decoded, err := compress.NewReader(codec, f)
	if err != nil {
		return fmt.Errorf("read archive %s with codec %s: %w", path, codec, err)
	}
	defer decoded.Close()

	tr := tar.NewReader(decoded)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", path, err)
		}

		manifest.Entries = append(manifest.Entries, model.ManifestEntry{
			Name:    header.Name,
			Size:    header.Size,
			Mode:    os.FileMode(header.Mode).Perm(),
			ModTime: header.ModTime,
		})
		if err := handle(header, tr); err != nil {
			return err
		}
	}
}

// safeJoin joins an entry name onto the extraction directory, rejecting
// names that would climb out of it.
func safeJoin(dir, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeEntryName, name)
	}
	return filepath.Join(dir, cleaned), nil
}
