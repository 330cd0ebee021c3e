package util

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close gzip: %v", err)
	}
}

func collect(t *testing.T, path string) []string {
	t.Helper()
	var lines []string
	err := ForEachLine(path, func(lineNo int, line string) error {
		if lineNo != len(lines)+1 {
			t.Errorf("Expected line number %d, got %d", len(lines)+1, lineNo)
		}
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachLine failed: %v", err)
	}
	return lines
}

func TestForEachLine_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	content := "100\t10\t'the'\r\n50\t8\t'cat'\n"

	plain := filepath.Join(dir, "freqs.tsv")
	if err := os.WriteFile(plain, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	compressed := filepath.Join(dir, "freqs.tsv.gz")
	writeGzip(t, compressed, content)

	for _, path := range []string{plain, compressed} {
		lines := collect(t, path)
		if len(lines) != 2 {
			t.Fatalf("%s: expected 2 lines, got %d", path, len(lines))
		}
		if lines[0] != "100\t10\t'the'" {
			t.Errorf("%s: unexpected first line %q", path, lines[0])
		}
	}
}

func TestForEachLine_StopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	stop := errors.New("stop")
	seen := 0
	err := ForEachLine(path, func(lineNo int, line string) error {
		seen++
		if lineNo == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Expected stop error, got %v", err)
	}
	if seen != 2 {
		t.Fatalf("Expected 2 lines visited, got %d", seen)
	}
}

func TestCheckInputs(t *testing.T) {
	dir := t.TempDir()
	freqs := filepath.Join(dir, "freqs.tsv")
	if err := os.WriteFile(freqs, []byte("1\t1\t'a'\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name      string
		freqs     string
		clusters  string
		vectors   string
		wantTitle string
	}{
		{"all present", freqs, "", "", ""},
		{"missing freqs", missing, "", "", "No frequencies file found"},
		{"freqs is a directory", dir, "", "", "No frequencies file found"},
		{"missing clusters", freqs, missing, "", "No Brown clusters file found"},
		{"missing vectors", freqs, "", missing, "No word vectors file found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInputs(tt.freqs, tt.clusters, tt.vectors)
			if tt.wantTitle == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var missingErr *MissingInputError
			if !errors.As(err, &missingErr) {
				t.Fatalf("Expected MissingInputError, got %v", err)
			}
			if missingErr.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, missingErr.Title)
			}
			if missingErr.Path == "" {
				t.Error("Expected offending path in error")
			}
		})
	}
}
