// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostFilter is the compiled form of a listing query. Category slugs are
// resolved by the caller; CategoryMissing records that the requested
// category does not exist, which matches no post.
type PostFilter struct {
	CategoryID      *uuid.UUID
	CategoryMissing bool
	AuthorID        *uuid.UUID
	Search          string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Compile turns the filter into a WHERE clause over the posts table aliased
// as p, with positional arguments. An empty filter yields an empty clause.
func (f PostFilter) Compile() (string, []any) {
	var clauses []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryMissing {
		clauses = append(clauses, "FALSE")
	} else if f.CategoryID != nil {
		clauses = append(clauses, "p.category_id = "+next(*f.CategoryID))
	}
	if f.AuthorID != nil {
		clauses = append(clauses, "p.author_id = "+next(*f.AuthorID))
	}
	if f.Search != "" {
		ph := next("%" + likeEscaper.Replace(f.Search) + "%")
		clauses = append(clauses, fmt.Sprintf(
			`(p.title ILIKE %[1]s ESCAPE '\' OR p.content ILIKE %[1]s ESCAPE '\' OR p.excerpt ILIKE %[1]s ESCAPE '\')`, ph))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
