package resultstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// FileStore keeps suppressions in a text file with one test ID per line. Lines starting with "#"
// are comments; RecordRun writes one describing the run at the top of the file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) LoadSuppressions(context.Context) ([]string, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("while reading suppression file: %w", err)
	}
	return cleanSuppressions(lines), nil
}

func (f *FileStore) RecordRun(_ context.Context, run RunRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# run %s against %s at %s: %d passed, %d failed\n",
		run.ID, run.ServerURL, run.StartTime.Format(time.RFC3339), run.Passed, run.Failed)
	for _, id := range run.Failures {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(b.String()), 0644); err != nil { //nolint:gosec
		return fmt.Errorf("cannot write suppression file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
