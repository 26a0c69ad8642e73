package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/parcel/internal/database"
	"github.com/nao1215/parcel/internal/model"
)

// seedHistory writes history rows into a temp database directory.
func seedHistory(t *testing.T, dir string, records ...model.PackRecord) {
	t.Helper()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for i := range records {
		if _, err := db.SavePackRecord(context.Background(), &records[i]); err != nil {
			t.Fatal(err)
		}
	}
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("dir") == nil {
			t.Fatal("expected dir flag")
		}
	})

	t.Run("has prune flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("prune") == nil {
			t.Fatal("expected prune flag")
		}
	})
}

// TestRunHistoryCmd tests history command execution against a seeded
// database.
func TestRunHistoryCmd(t *testing.T) {
	record := model.PackRecord{
		Source:      "/data/input.bin",
		Destination: "/out/archive.tar.gz",
		EntryName:   "input.bin",
		Bytes:       500,
		Codec:       "gzip",
		Duration:    100 * time.Millisecond,
		CreatedAt:   time.Now().UTC(),
	}

	t.Run("lists recorded operations", func(t *testing.T) {
		dir := t.TempDir()
		seedHistory(t, dir, record)

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--dir", dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "/out/archive.tar.gz") {
			t.Errorf("expected the record in output, got %q", out.String())
		}
	})

	t.Run("outputs JSON with --json", func(t *testing.T) {
		dir := t.TempDir()
		seedHistory(t, dir, record)

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--dir", dir, "--json"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []model.PackRecord
		if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 1 || decoded[0].Codec != "gzip" {
			t.Errorf("unexpected decoded records %+v", decoded)
		}
	})

	t.Run("prune removes old records", func(t *testing.T) {
		dir := t.TempDir()
		old := record
		old.CreatedAt = time.Now().UTC().Add(-72 * time.Hour)
		seedHistory(t, dir, old, record)

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--dir", dir, "--prune", "24h"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "pruned 1 records") {
			t.Errorf("expected prune summary, got %q", out.String())
		}
	})

	t.Run("zero limit fails", func(t *testing.T) {
		cmd := NewHistoryCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{"--limit", "0"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected an error for a zero limit")
		}
	})

	t.Run("empty history prints a friendly message", func(t *testing.T) {
		dir := t.TempDir()

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--dir", dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "No pack history") {
			t.Errorf("expected empty-history message, got %q", out.String())
		}
	})
}
