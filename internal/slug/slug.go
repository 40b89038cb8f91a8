// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly, collision-resolved identifiers from
// display names.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxAttempts bounds the numeric suffix search in Allocate.
const MaxAttempts = 10_000

var (
	// nonWord matches anything that isn't an ASCII word character or a space.
	nonWord = regexp.MustCompile(`[^\w ]+`)
	// spaces collapses runs of spaces into a single hyphen.
	spaces = regexp.MustCompile(` +`)
)

// ErrExhausted is returned when no free slug was found within MaxAttempts.
var ErrExhausted = errors.New("slug: no free candidate")

// ExistsFunc reports whether a candidate slug is already taken by a record
// other than the one being saved.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generate creates the base slug for a name.
// Example: "Tech Notes & Tips!" → "tech-notes-tips"
func Generate(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	result = nonWord.ReplaceAllString(result, "")
	result = spaces.ReplaceAllString(result, "-")
	return result
}

// Allocate returns the first unused slug among base, base-1, base-2, ...
// An empty base is allowed and yields "", "-1", "-2", ...
func Allocate(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Generate(name)
	candidate := base
	for counter := 1; counter <= MaxAttempts; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug probe %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
	}
	return "", fmt.Errorf("%w for %q after %d attempts", ErrExhausted, base, MaxAttempts)
}

// Reallocate is Allocate for a record being renamed. It keeps the current
// slug when the name did not change and a slug is already assigned.
func Reallocate(ctx context.Context, oldName, newName, current string, exists ExistsFunc) (string, error) {
	if oldName == newName && current != "" {
		return current, nil
	}
	return Allocate(ctx, newName, exists)
}
