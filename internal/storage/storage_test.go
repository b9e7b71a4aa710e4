package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require")

func TestDiskSaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	d, err := NewDisk(dir, "uploads/")
	require.NoError(t, err)

	body := "hello attachment"
	st, err := d.Save(context.Background(), "a.txt", strings.NewReader(body), 1024)
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), st.Size)

	sum := sha256.Sum256([]byte(body))
	require.Equal(t, hex.EncodeToString(sum[:]), st.Checksum)

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, body, string(got))
	require.Equal(t, "/uploads/a.txt", d.URL("a.txt"))

	require.NoError(t, d.Remove("a.txt"))
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, d.Remove("a.txt"))
}

func TestDiskSaveTooLargeLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "/uploads")
	require.NoError(t, err)

	_, err = d.Save(context.Background(), "big.txt", strings.NewReader(strings.Repeat("x", 11)), 10)
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiskSaveExactLimit(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "/uploads")
	require.NoError(t, err)
	st, err := d.Save(context.Background(), "ok.txt", strings.NewReader(strings.Repeat("x", 10)), 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), st.Size)
}

func TestDiskRejectsPathNames(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "/uploads")
	require.NoError(t, err)
	for _, name := range []string{"", "../x.txt", "sub/x.txt", ".hidden"} {
		_, err := d.Save(context.Background(), name, strings.NewReader("x"), 0)
		require.Error(t, err, name)
	}
}

func TestDiskSaveCanceled(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "/uploads")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Save(ctx, "c.txt", strings.NewReader("data"), 0)
	require.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
