// Package export renders provisioning outcomes as CSV and writes them to a
// file, stdout, or an S3-compatible bucket.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/newtron-network/psktron/pkg/provision"
)

// Header is the fixed column order of the result file.
var Header = []string{"unit", "name", "psk", "status"}

// ContentType of the rendered bytes.
const ContentType = "text/csv"

// Write renders outcomes to w. The header row is always written.
func Write(w io.Writer, outcomes []provision.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := cw.Write([]string{o.Unit, o.CredentialName, o.Passphrase, o.Status.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render returns the CSV bytes for outcomes.
func Render(outcomes []provision.Outcome) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, outcomes); err != nil {
		return nil, fmt.Errorf("rendering results: %w", err)
	}
	return buf.Bytes(), nil
}

// Sink receives a rendered result file.
type Sink interface {
	// Check reports whether Put can be expected to succeed. It is called
	// before any credential is created.
	Check(ctx context.Context) error
	Put(ctx context.Context, data []byte) error
	String() string
}

// FileSink writes to a local path. "-" writes to Stdout.
type FileSink struct {
	Path   string
	Stdout io.Writer
}

// NewFileSink creates a FileSink for path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Stdout: os.Stdout}
}

// Check verifies the parent directory exists and accepts new files.
func (s *FileSink) Check(ctx context.Context) error {
	if s.Path == "-" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("result directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("result directory %s is not a directory", dir)
	}
	if info, err := os.Stat(s.Path); err == nil && info.IsDir() {
		return fmt.Errorf("result path %s is a directory", s.Path)
	}
	tmp, err := os.CreateTemp(dir, ".psktron-*")
	if err != nil {
		return fmt.Errorf("result directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

// Put writes data. Result files hold passphrases, so they are created 0600.
func (s *FileSink) Put(ctx context.Context, data []byte) error {
	if s.Path == "-" {
		out := s.Stdout
		if out == nil {
			out = os.Stdout
		}
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileSink) String() string {
	if s.Path == "-" {
		return "stdout"
	}
	return s.Path
}
