// Package storage keeps attachment payloads on the local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gigboard/engine/pkg/utils"
)

// ErrTooLarge is returned by Save when the payload exceeds the limit.
var ErrTooLarge = errors.New("payload exceeds size limit")

// Stored describes a payload written by Save.
type Stored struct {
	Name     string
	Size     int64
	Checksum string
}

// Store is the payload store used by the attachment service.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, limit int64) (*Stored, error)
	Remove(name string) error
	URL(name string) string
}

// Disk writes payloads flat into one directory.
type Disk struct {
	dir    string
	prefix string
}

// NewDisk creates dir if needed. prefix is the public URL path the directory is served under.
func NewDisk(dir, prefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

// Dir is the directory payloads are written to.
func (d *Disk) Dir() string { return d.dir }

// Save streams r into name. The payload appears under its final name only
// once it is complete and within limit bytes (no limit when limit <= 0).
func (d *Disk) Save(ctx context.Context, name string, r io.Reader, limit int64) (*Stored, error) {
	target, err := d.path(name)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	digest := utils.NewDigest()
	size, err := io.Copy(io.MultiWriter(tmp, digest), ctxReader{ctx: ctx, r: src})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}
	if limit > 0 && size > limit {
		return nil, ErrTooLarge
	}
	if err := os.Rename(tmpName, target); err != nil {
		return nil, fmt.Errorf("commit payload: %w", err)
	}
	committed = true
	return &Stored{Name: name, Size: size, Checksum: digest.Hex()}, nil
}

// Remove deletes a payload. A missing payload is not an error.
func (d *Disk) Remove(name string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL is the public path of a payload.
func (d *Disk) URL(name string) string {
	return path.Join(d.prefix, name)
}

func (d *Disk) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid payload name %q", name)
	}
	return filepath.Join(d.dir, name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
