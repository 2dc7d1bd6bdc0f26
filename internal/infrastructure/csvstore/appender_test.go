package csvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"estimate-tracker/internal/domain"
)

func record(ts string, amount string) domain.PriceRecord {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return domain.PriceRecord{ObservedAt: t, Amount: decimal.RequireFromString(amount)}
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	a := NewAppender(path)

	err := a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "timestamp,price\n2024-01-01T03:00:00Z,725000\n", string(b))
}

func TestAppend_NRunsYieldNPlusOneLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	a := NewAppender(path)

	var prior string
	for i := 1; i <= 5; i++ {
		ts := fmt.Sprintf("2024-01-%02dT03:00:00Z", i)
		require.NoError(t, a.Append(context.Background(), record(ts, "700000")))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(b)
		require.True(t, strings.HasPrefix(content, prior), "prior bytes were rewritten")
		prior = content

		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		require.Len(t, lines, i+1)
		require.Equal(t, Header, lines[0])
	}
}

func TestAppend_SchemaGuardLeavesFileUntouched(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	before := "Timestamp,Price,URL\n2023-12-31 09:00:00,690000,https://example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(before), 0o644))

	a := NewAppender(path)
	err := a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidSchema)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, string(b))
}

func TestAppend_WriteFailureRestoresLength(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	a := NewAppender(path)
	require.NoError(t, a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000")))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Fail after half the row is on disk.
	a.write = func(f *os.File, b []byte) (int, error) {
		n, _ := f.Write(b[:len(b)/2])
		return n, errors.New("disk full")
	}
	err = a.Append(context.Background(), record("2024-01-02T03:00:00Z", "730000"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrIOFailure)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestAppend_LockedFileIsConcurrentAccess(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	a := NewAppender(path)
	err = a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrConcurrentAccess)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "history file must not be created under contention")
}

func TestAppend_MissingDirectoryIsPathUnwritable(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "history.csv")
	a := NewAppender(path)

	err := a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrPathUnwritable)
}

func TestAppend_EmptyPathIsPathUnwritable(t *testing.T) {
	t.Parallel()
	a := NewAppender("")
	err := a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrPathUnwritable)
}

func TestAppend_RepairsMissingTrailingNewline(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,price\n2023-12-31T09:00:00Z,690000"), 0o644))

	a := NewAppender(path)
	require.NoError(t, a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"timestamp,price\n2023-12-31T09:00:00Z,690000\n2024-01-01T03:00:00Z,725000\n",
		string(b))
}

func TestAppend_HeaderOnlyFileGetsFirstRow(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	a := NewAppender(path)
	require.NoError(t, a.Append(context.Background(), record("2024-01-01T03:00:00Z", "725000")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "timestamp,price\n2024-01-01T03:00:00Z,725000\n", string(b))
}
