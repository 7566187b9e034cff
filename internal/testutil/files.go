// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// WriteInputCSV writes content to dir/name and returns its path.
func WriteInputCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteConfigFile writes a piiredact.config.yaml with content into dir and
// returns its path.
func WriteConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	return WriteInputCSV(t, dir, "piiredact.config.yaml", content)
}

// ReadOutputCSV parses the CSV file at path, header included.
func ReadOutputCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}
