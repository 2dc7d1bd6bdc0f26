// Package csvstore persists the price history as an append-only CSV file.
// Existing bytes are never read-modified or rewritten; a run appends exactly
// one row or leaves the file untouched.
package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"estimate-tracker/internal/application"
	"estimate-tracker/internal/domain"
)

// Header is the fixed schema of the history file.
const Header = "timestamp,price"

type Appender struct {
	Path string

	// write is swappable for fault injection in tests.
	write func(f *os.File, b []byte) (int, error)
}

var _ application.HistoryStore = (*Appender)(nil)

func NewAppender(path string) *Appender {
	return &Appender{
		Path:  path,
		write: func(f *os.File, b []byte) (int, error) { return f.Write(b) },
	}
}

// Append writes one record after the last existing byte, creating the file
// with the header when absent. An exclusive lock on a sidecar file
// serializes concurrent appenders; on any write error the file is truncated
// back to its pre-call length.
func (a *Appender) Append(_ context.Context, rec domain.PriceRecord) error {
	if a.Path == "" {
		return fmt.Errorf("%w: empty history path", domain.ErrPathUnwritable)
	}

	lock := flock.New(a.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("%w: acquire %s: %v", pathErrKind(err), lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", domain.ErrConcurrentAccess, lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(a.Path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", pathErrKind(err), a.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrIOFailure, a.Path, err)
	}
	prevSize := info.Size()

	var buf bytes.Buffer
	if prevSize == 0 {
		buf.WriteString(Header + "\n")
	} else {
		if err := checkHeader(f); err != nil {
			return err
		}
		// Repair a missing trailing newline so the new row cannot glue
		// itself onto the last existing one.
		if ok, err := endsWithNewline(f, prevSize); err != nil {
			return fmt.Errorf("%w: read tail: %v", domain.ErrIOFailure, err)
		} else if !ok {
			buf.WriteByte('\n')
		}
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(encodeRecord(rec)); err != nil {
		return fmt.Errorf("%w: encode row: %v", domain.ErrIOFailure, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encode row: %v", domain.ErrIOFailure, err)
	}

	write := a.write
	if write == nil {
		write = func(f *os.File, b []byte) (int, error) { return f.Write(b) }
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("%w: seek: %v", domain.ErrIOFailure, err)
	}
	if _, err := write(f, buf.Bytes()); err != nil {
		_ = f.Truncate(prevSize)
		return fmt.Errorf("%w: write row: %v", domain.ErrIOFailure, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", domain.ErrIOFailure, err)
	}
	return nil
}

func encodeRecord(rec domain.PriceRecord) []string {
	return []string{
		rec.ObservedAt.UTC().Format(time.RFC3339),
		rec.Amount.String(),
	}
}

// checkHeader validates that the first line of an existing file matches the
// fixed schema exactly. A mismatch is never coerced.
func checkHeader(f *os.File) error {
	buf := make([]byte, len(Header)+2)
	n, err := f.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read header: %v", domain.ErrIOFailure, err)
	}
	line := string(buf[:n])
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	if line != Header {
		return fmt.Errorf("%w: want %q, found %q", domain.ErrInvalidSchema, Header, line)
	}
	return nil
}

func endsWithNewline(f *os.File, size int64) (bool, error) {
	if size == 0 {
		return true, nil
	}
	tail := make([]byte, 1)
	if _, err := f.ReadAt(tail, size-1); err != nil {
		return false, err
	}
	return tail[0] == '\n', nil
}

func pathErrKind(err error) error {
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		return domain.ErrPathUnwritable
	}
	return domain.ErrIOFailure
}
