package posts

import "blogcore/internal/models"

// CanMutate reports whether the principal may update or delete the post:
// admins may touch any post, everyone else only their own.
func CanMutate(p models.Principal, post *models.Post) bool {
	return p.Elevated() || post.AuthoredBy(p.ID)
}
