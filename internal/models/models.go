package models

import (
	"strings"
	"time"
)

type User struct {
	UserID       string    `json:"id" db:"user_id" bson:"_id"`
	Username     string    `json:"username" db:"username" bson:"username"`
	Email        string    `json:"email" db:"email" bson:"email"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	Bio          string    `json:"bio" db:"bio" bson:"bio"`
	Avatar       string    `json:"avatar" db:"avatar" bson:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at" bson:"updated_at"`
}

// ProfilePatch lists the only user fields a profile update may touch.
// A nil field is left unchanged.
type ProfilePatch struct {
	Bio    *string `json:"bio" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar" validate:"omitempty,max=2048"`
}

func (p ProfilePatch) IsEmpty() bool {
	return p.Bio == nil && p.Avatar == nil
}

// AuthorSummary is the public part of a user embedded in posts and comments.
type AuthorSummary struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (u *User) Summary() AuthorSummary {
	return AuthorSummary{UserID: u.UserID, Username: u.Username, Avatar: u.Avatar}
}

type Post struct {
	PostID    string        `json:"id"`
	AuthorID  string        `json:"authorId"`
	Author    AuthorSummary `json:"author"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Image     string        `json:"image"`
	ImageKey  string        `json:"-"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Likes     []string      `json:"likes"`
	Comments  []Comment     `json:"comments"`
	// LikedByMe is set per request for the authenticated caller.
	LikedByMe bool          `json:"likedByMe"`
}

func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PostPatch lists the mutable post fields. A nil field is left unchanged;
// Tags, when present, replaces the whole set.
type PostPatch struct {
	Title   *string   `json:"title" validate:"omitempty,max=200"`
	Content *string   `json:"content"`
	Image   *string   `json:"image" validate:"omitempty,max=2048"`
	Tags    *[]string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Image == nil && p.Tags == nil
}

type Comment struct {
	CommentID string        `json:"id"`
	PostID    string        `json:"postId"`
	AuthorID  string        `json:"authorId"`
	Author    AuthorSummary `json:"author"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NormalizeTags trims tags, drops blanks and removes duplicates keeping the
// first occurrence.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
