// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package attachment

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // register WebP decoder

	"blogcore/internal/apperr"
)

// DefaultMaxBytes is the upload size limit when none is configured (5 MiB).
const DefaultMaxBytes int64 = 5 << 20

// DefaultAllowed is the raster allow-list for featured images.
var DefaultAllowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Limits bounds what the upload boundary accepts.
type Limits struct {
	MaxBytes int64
	Allowed  map[string]bool
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	if l.Allowed == nil {
		l.Allowed = DefaultAllowed
	}
	return l
}

// Upload is a file that passed inspection and is ready to be stored.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Inspect checks an incoming file against the limits. It sniffs the content
// type from the leading bytes, checks it against the allow-list and decodes
// the image header to confirm the bytes really are that format. The reader
// is rewound before being handed back inside the Upload.
func Inspect(name string, size int64, r io.ReadSeeker, lim Limits) (*Upload, error) {
	lim = lim.withDefaults()

	if size > lim.MaxBytes {
		return nil, apperr.PayloadTooLarge("File too large. Maximum size is %d MB", lim.MaxBytes>>20)
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(r, sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(sniff[:n])
	if !lim.Allowed[contentType] {
		return nil, apperr.UnsupportedMedia("Only image files are allowed")
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	if _, _, err := image.DecodeConfig(r); err != nil {
		return nil, apperr.UnsupportedMedia("Only image files are allowed")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	return &Upload{Name: name, ContentType: contentType, Size: size, Body: r}, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// StoredName builds the on-disk name for an upload:
// <unix millis>-<original base name with whitespace runs turned into '-'>.
func StoredName(now time.Time, original string) string {
	base := path.Base(filepath.ToSlash(original))
	base = strings.NewReplacer("/", "", `\`, "").Replace(base)
	if base == "." || base == ".." || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), whitespace.ReplaceAllString(base, "-"))
}
