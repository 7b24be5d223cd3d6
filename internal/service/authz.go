package service

import (
	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
)

// AssertOwner fails with a forbidden error unless callerID authored post.
func AssertOwner(post *models.Post, callerID string) error {
	if post == nil || callerID == "" || post.AuthorID != callerID {
		return apperror.Forbidden("only the author can modify this post")
	}
	return nil
}
