package posts

import (
	"fmt"
	"strings"
)

// ParseTags accepts a list of values or a comma-separated string and
// returns the trimmed, non-empty tags in their original order. Duplicates
// are kept. Any other input yields no tags.
func ParseTags(v any) []string {
	tags := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	case []any:
		for _, e := range t {
			if e == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				tags = append(tags, s)
			}
		}
	case string:
		return ParseTags(strings.Split(t, ","))
	}
	return tags
}

// ParseBool accepts a bool or the strings "true"/"false" in any case.
// Anything else yields def.
func ParseBool(v any, def bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		if b != nil {
			return *b
		}
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return def
}
