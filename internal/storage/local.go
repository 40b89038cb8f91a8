// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage holds the binary stores post attachments are written to:
// a directory on the local filesystem served under a URL prefix, and an
// S3-compatible bucket. Both hand back a reference string that is saved on
// the post and later used to delete the file.
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
)

// DefaultPublicPrefix is the URL path local files are served under.
const DefaultPublicPrefix = "/uploads/"

// Local stores files in a single flat directory.
type Local struct {
	root   string
	prefix string
}

// NewLocal creates the root directory if needed and returns a Local store
// whose references start with publicPrefix.
func NewLocal(root, publicPrefix string) (*Local, error) {
	if publicPrefix == "" {
		publicPrefix = DefaultPublicPrefix
	}
	if !strings.HasSuffix(publicPrefix, "/") {
		publicPrefix += "/"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root, prefix: publicPrefix}, nil
}

// Root returns the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

// Put writes body under name and returns the public reference.
func (l *Local) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	name = path.Base(filepath.ToSlash(name))
	if name == "." || name == "/" {
		return "", fmt.Errorf("store upload: invalid name %q", name)
	}

	f, err := os.OpenFile(filepath.Join(l.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("store upload %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close upload %s: %w", name, err)
	}
	return l.prefix + name, nil
}

// Delete removes the file a reference points at. A file that is already
// gone is not an error.
func (l *Local) Delete(ctx context.Context, ref string) error {
	name, ok := l.nameOf(ref)
	if !ok {
		return fmt.Errorf("delete upload: %q is not under %s", ref, l.prefix)
	}
	err := os.Remove(filepath.Join(l.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload %s: %w", name, err)
	}
	return nil
}

// Owns reports whether ref points into this store.
func (l *Local) Owns(ref string) bool {
	_, ok := l.nameOf(ref)
	return ok
}

func (l *Local) nameOf(ref string) (string, bool) {
	if !strings.HasPrefix(ref, l.prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, l.prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", false
	}
	return name, true
}
