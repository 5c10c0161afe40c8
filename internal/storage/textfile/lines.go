package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// readLines returns every line of path without its terminator.
// A missing file is an empty dataset, not an error.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("readLines: open: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// Files written on Windows end lines with \r\n.
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("readLines: scan: %w", err)
	}
	return lines, nil
}

// writeLines replaces path with lines, one per line.
//
// The new content goes to a temp file in the same directory which is
// synced and then renamed over path. A reader therefore sees either the
// old file or the new one, never a half-written mix. Concurrent writers
// still race: the last rename wins.
func writeLines(path string, lines []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writeLines: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err = w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writeLines: write: %w", err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writeLines: flush: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("writeLines: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writeLines: close: %w", err)
	}
	// CreateTemp uses 0600.
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writeLines: chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writeLines: rename: %w", err)
	}
	return nil
}

// appendLine adds one line to the end of path, creating it if needed.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("appendLine: open: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("appendLine: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("appendLine: close: %w", err)
	}
	return nil
}
