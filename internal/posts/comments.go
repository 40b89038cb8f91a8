package posts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/models"
	"blogcore/internal/validate"
)

// CommentInput is the body of an add-comment request.
type CommentInput struct {
	Content string `json:"content" validate:"required"`
}

var commentMessages = validate.Messages{
	"Content.required": "Comment content is required",
}

// AddComment appends a comment by the principal to the end of the post's
// comment list and returns it with the commenter expanded.
func (s *Service) AddComment(ctx context.Context, principal models.Principal, postID uuid.UUID, in CommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in, commentMessages); err != nil {
		return nil, err
	}

	c, err := s.posts.AppendComment(ctx, postID, principal.ID, in.Content)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return c, nil
}
