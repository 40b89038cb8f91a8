// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package attachment manages the single featured image a post may carry.
// New files are stored before the old reference is released, and releasing
// an old file is best-effort: a failed delete is logged and never undoes
// the record change.
package attachment

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultDeleteTimeout bounds a background delete.
const DefaultDeleteTimeout = 30 * time.Second

// BlobStore is the binary store attachments live in.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, ref string) error
	// Owns reports whether ref lies in the managed area. References that
	// point elsewhere are never deleted.
	Owns(ref string) bool
}

// Config configures a Manager.
type Config struct {
	Store         BlobStore
	DeleteTimeout time.Duration
	Now           func() time.Time
}

// Manager drives the attachment lifecycle of mutable records.
type Manager struct {
	store   BlobStore
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewManager creates a Manager over the given store.
func NewManager(cfg Config) *Manager {
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = DefaultDeleteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{store: cfg.Store, timeout: cfg.DeleteTimeout, now: cfg.Now}
}

// Store saves up in the managed area and returns its reference, or nil
// when there is no upload. Nothing is released here; see Swap.
func (m *Manager) Store(ctx context.Context, up *Upload) (*string, error) {
	if up == nil {
		return nil, nil
	}

	ref, err := m.store.Put(ctx, StoredName(m.now(), up.Name), up.ContentType, up.Body, up.Size)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Swap releases previous once next has been committed in its place. It is
// a no-op when no new file was stored or the reference did not change.
func (m *Manager) Swap(previous, next *string) {
	if next == nil || previous == nil || *previous == *next {
		return
	}
	m.Remove(*previous)
}

// Remove deletes ref in the background if it lies in the managed area.
// Failures are logged and otherwise ignored.
func (m *Manager) Remove(ref string) {
	if ref == "" || !m.store.Owns(ref) {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.store.Delete(ctx, ref); err != nil {
			slog.Warn("attachment delete failed", "ref", ref, "error", err)
			return
		}
		slog.Debug("attachment deleted", "ref", ref)
	}()
}

// Wait blocks until all background deletes have finished. Used on
// shutdown and in tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}
