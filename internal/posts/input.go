package posts

import (
	"strings"

	"blogcore/internal/validate"
)

// CreateInput is the body of a create request. Tags and IsPublished keep
// their raw decoded form and are normalized by ParseTags and ParseBool.
type CreateInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Content     string `json:"content" validate:"required"`
	Excerpt     string `json:"excerpt" validate:"max=200"`
	Category    string `json:"category" validate:"required"`
	Tags        any    `json:"tags"`
	IsPublished any    `json:"isPublished"`
}

func (in *CreateInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
}

var createMessages = validate.Messages{
	"Title.required":    "Title is required",
	"Title.max":         "Title cannot exceed 100 characters",
	"Content.required":  "Content is required",
	"Excerpt.max":       "Excerpt cannot exceed 200 characters",
	"Category.required": "Category is required",
}

// UpdateInput is the body of an update request. Nil fields are left as
// they are.
type UpdateInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Content     *string `json:"content" validate:"omitnil,min=1"`
	Excerpt     *string `json:"excerpt" validate:"omitnil,max=200"`
	Category    string  `json:"category"`
	Tags        any     `json:"tags"`
	IsPublished any     `json:"isPublished"`
}

func (in *UpdateInput) normalize() {
	for _, f := range []*string{in.Title, in.Content} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	in.Category = strings.TrimSpace(in.Category)
}

var updateMessages = validate.Messages{
	"Title.min":   "Title cannot be empty",
	"Title.max":   "Title cannot exceed 100 characters",
	"Content.min": "Content cannot be empty",
	"Excerpt.max": "Excerpt cannot exceed 200 characters",
}
