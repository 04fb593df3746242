package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/schema"
)

// Output naming.
const (
	DateLayout = "20060102"
	FileSuffix = "_users_to_inactivate.csv"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// FileName returns "<YYYYMMDD>_users_to_inactivate.csv" for runDate.
func FileName(runDate time.Time) string {
	return runDate.Format(DateLayout) + FileSuffix
}

// OutputPath joins dir and FileName(runDate).
func OutputPath(dir string, runDate time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, FileName(runDate))
}

// EncodeCSV writes one header row of columns and one row per candidate.
func EncodeCSV(w io.Writer, columns []string, candidates []schema.InactivationCandidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, c := range candidates {
		for i, col := range columns {
			row[i] = c.Fields[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the candidate table to path atomically.
func WriteCSV(path string, columns []string, candidates []schema.InactivationCandidate) error {
	return WriteAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, columns, candidates)
	})
}

// StageCSV stages the candidate table for path without touching path.
func StageCSV(path string, columns []string, candidates []schema.InactivationCandidate) (*Staged, error) {
	return Stage(path, func(w io.Writer) error {
		return EncodeCSV(w, columns, candidates)
	})
}

// WriteAtomic writes to a temp file beside path, syncs it and renames it
// into place, so path either holds the complete content or is untouched.
// Every failure is an IOError.
func WriteAtomic(path string, write func(io.Writer) error) error {
	staged, err := Stage(path, write)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// Staged is complete, synced content waiting in a temp file beside Path.
// Exactly one of Commit or Discard should follow.
type Staged struct {
	Path     string
	tempPath string
}

// Stage writes the content for path into a temp file in the same
// directory, creating the directory if needed. Path itself is untouched
// until Commit. Every failure is an IOError and leaves no temp file.
func Stage(path string, write func(io.Writer) error) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, pkgerrors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, pkgerrors.WrapIO("create", "temp file in "+dir, err)
	}
	tempPath := tempFile.Name()
	staged := false
	defer func() {
		if !staged {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buf := bufio.NewWriter(tempFile)
	if err := write(buf); err != nil {
		return nil, pkgerrors.WrapIO("write", path, err)
	}
	if err := buf.Flush(); err != nil {
		return nil, pkgerrors.WrapIO("write", path, err)
	}
	if err := tempFile.Sync(); err != nil {
		return nil, pkgerrors.WrapIO("sync", path, err)
	}
	if err := tempFile.Chmod(filePermissions); err != nil {
		return nil, pkgerrors.WrapIO("chmod", path, err)
	}
	if err := tempFile.Close(); err != nil {
		return nil, pkgerrors.WrapIO("close", path, err)
	}

	staged = true
	return &Staged{Path: path, tempPath: tempPath}, nil
}

// Commit renames the staged content onto Path.
func (s *Staged) Commit() error {
	if err := os.Rename(s.tempPath, s.Path); err != nil {
		_ = os.Remove(s.tempPath)
		return pkgerrors.WrapIO("rename", s.Path, err)
	}
	return nil
}

// Discard drops the staged content. Safe on a nil Staged.
func (s *Staged) Discard() {
	if s != nil {
		_ = os.Remove(s.tempPath)
	}
}
