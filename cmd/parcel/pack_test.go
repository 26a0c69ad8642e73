package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/parcel/internal/compress"
	"github.com/nao1215/parcel/internal/config"
)

// TestNewPackCmd tests the pack command creation.
func TestNewPackCmd(t *testing.T) {
	t.Parallel()

	cmd := NewPackCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "pack [file]" {
			t.Errorf("expected use 'pack [file]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("requires at least one argument", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has compression flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("compression")
		if flag == nil {
			t.Fatal("expected compression flag")
		}
		if flag.Shorthand != "z" {
			t.Errorf("expected shorthand 'z', got %q", flag.Shorthand)
		}
		if flag.DefValue != "none" {
			t.Errorf("expected default 'none', got %q", flag.DefValue)
		}
	})

	t.Run("has name flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("name")
		if flag == nil {
			t.Fatal("expected name flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
		if flag.DefValue != "4" {
			t.Errorf("expected default '4', got %q", flag.DefValue)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-history flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-history")
		if flag == nil {
			t.Fatal("expected no-history flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestDefaultArchivePath tests destination naming for implicit outputs.
func TestDefaultArchivePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		codec  string
		want   string
	}{
		{"report.pdf", "none", "report.pdf.tar"},
		{"report.pdf", "gzip", "report.pdf.tar.gz"},
		{"report.pdf", "lz4", "report.pdf.tar.lz4"},
		{"/data/notes.txt", "", "/data/notes.txt.tar"},
	}
	for _, tt := range tests {
		t.Run(tt.source+" "+tt.codec, func(t *testing.T) {
			t.Parallel()
			if got := defaultArchivePath(tt.source, tt.codec); got != tt.want {
				t.Errorf("defaultArchivePath(%q, %q) = %q, want %q", tt.source, tt.codec, got, tt.want)
			}
		})
	}
}

// TestBuildPackConfig tests flag and config-file handling.
func TestBuildPackConfig(t *testing.T) {
	t.Parallel()

	t.Run("single source defaults to a sibling archive path", func(t *testing.T) {
		t.Parallel()
		cmd := NewPackCmd()
		if err := cmd.ParseFlags([]string{"-z", "gzip"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildPackConfig(cmd, []string{"notes.txt"})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Destination != "notes.txt.tar.gz" {
			t.Errorf("expected notes.txt.tar.gz, got %s", cfg.Destination)
		}
	})

	t.Run("several sources default to the current directory", func(t *testing.T) {
		t.Parallel()
		cmd := NewPackCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildPackConfig(cmd, []string{"a.txt", "b.txt"})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Destination != "." {
			t.Errorf("expected '.', got %s", cfg.Destination)
		}
	})

	t.Run("unknown codec is rejected", func(t *testing.T) {
		t.Parallel()
		cmd := NewPackCmd()
		if err := cmd.ParseFlags([]string{"-z", "zstd"}); err != nil {
			t.Fatal(err)
		}
		_, err := buildPackConfig(cmd, []string{"notes.txt"})
		if !errors.Is(err, compress.ErrUnknownCodec) {
			t.Errorf("expected ErrUnknownCodec, got %v", err)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()
		cmd := NewPackCmd()
		missing := filepath.Join(t.TempDir(), "absent.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatal(err)
		}
		_, err := buildPackConfig(cmd, []string{"notes.txt"})
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("config file defaults apply under flag values", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".parcel")
		if err := os.WriteFile(path, []byte("defaults:\n  compression: gzip\n  concurrency: 8\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewPackCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildPackConfig(cmd, []string{"notes.txt"})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Compression != "gzip" {
			t.Errorf("expected config file compression gzip, got %s", cfg.Compression)
		}
		if cfg.Concurrency != 8 {
			t.Errorf("expected config file concurrency 8, got %d", cfg.Concurrency)
		}
	})

	t.Run("config file with an unsupported key is rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".parcel")
		if err := os.WriteFile(path, []byte("defaults:\n  entries:\n    - '*.log'\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewPackCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatal(err)
		}
		_, err := buildPackConfig(cmd, []string{"notes.txt"})
		var keyErr *config.UnsupportedKeyError
		if !errors.As(err, &keyErr) {
			t.Fatalf("expected UnsupportedKeyError, got %v", err)
		}
		if keyErr.Key != "entries" {
			t.Errorf("expected key entries, got %s", keyErr.Key)
		}
	})
}

// TestRunPackCmd tests pack command execution end to end.
func TestRunPackCmd(t *testing.T) {
	t.Run("packs a single file", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "input.txt")
		if err := os.WriteFile(src, []byte("hello parcel"), 0o600); err != nil {
			t.Fatal(err)
		}
		dst := filepath.Join(tmpDir, "out.tar")

		var out bytes.Buffer
		cmd := NewPackCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"-o", dst, "--no-history", src})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "packed") {
			t.Errorf("expected summary line, got %q", out.String())
		}

		f, err := os.Open(dst)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		header, err := tar.NewReader(f).Next()
		if err != nil {
			t.Fatal(err)
		}
		if header.Name != "input.txt" {
			t.Errorf("expected entry input.txt, got %s", header.Name)
		}
	})

	t.Run("packs with gzip and a renamed entry", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "input.txt")
		if err := os.WriteFile(src, []byte("compress me"), 0o600); err != nil {
			t.Fatal(err)
		}
		dst := filepath.Join(tmpDir, "out.tar.gz")

		cmd := NewPackCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"-o", dst, "-z", "gzip", "-n", "renamed.txt", "--no-history", src})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := os.Open(dst)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("expected gzip output: %v", err)
		}
		header, err := tar.NewReader(gz).Next()
		if err != nil {
			t.Fatal(err)
		}
		if header.Name != "renamed.txt" {
			t.Errorf("expected entry renamed.txt, got %s", header.Name)
		}
	})

	t.Run("packs several files into a directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		var sources []string
		for _, name := range []string{"a.log", "b.log", "c.log"} {
			path := filepath.Join(tmpDir, name)
			if err := os.WriteFile(path, []byte(name), 0o600); err != nil {
				t.Fatal(err)
			}
			sources = append(sources, path)
		}
		outDir := filepath.Join(tmpDir, "archives")

		cmd := NewPackCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs(append([]string{"-o", outDir, "--no-history"}, sources...))

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"a.log.tar", "b.log.tar", "c.log.tar"} {
			if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
				t.Errorf("expected archive %s: %v", name, err)
			}
		}
	})

	t.Run("reports batch failures", func(t *testing.T) {
		tmpDir := t.TempDir()
		good := filepath.Join(tmpDir, "good.log")
		if err := os.WriteFile(good, []byte("ok"), 0o600); err != nil {
			t.Fatal(err)
		}
		missing := filepath.Join(tmpDir, "missing.log")
		outDir := filepath.Join(tmpDir, "archives")

		var errOut bytes.Buffer
		cmd := NewPackCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"-o", outDir, "--no-history", good, missing})

		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "1 of 2 archives failed") {
			t.Errorf("expected batch failure summary, got %v", err)
		}
		if !strings.Contains(errOut.String(), "failed:") {
			t.Errorf("expected per-job failure line, got %q", errOut.String())
		}
		if _, statErr := os.Stat(filepath.Join(outDir, "good.log.tar")); statErr != nil {
			t.Errorf("expected the healthy job to produce its archive: %v", statErr)
		}
	})

	t.Run("missing source fails", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewPackCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"--no-history", filepath.Join(tmpDir, "absent.txt")})

		if err := cmd.Execute(); err == nil {
			t.Error("expected an error for a missing source")
		}
	})
}
