// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Content kinds.
const (
	ContentKindPost    = "post"
	ContentKindComment = "comment"
)

// Content represents a published post or comment. ReplyCount mirrors the
// number of attached children and is maintained with atomic increments,
// never read-then-write.
type Content struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Kind     string `gorm:"not null;index;default:post" json:"kind"`
	Text     string `gorm:"type:text" json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	// ReplyCount is maintained by the attach/detach-child saga steps.
	ReplyCount int64 `gorm:"not null;default:0" json:"reply_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this content (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsComment reports whether the content is a comment (has a parent).
func (c *Content) IsComment() bool {
	return c.Kind == ContentKindComment
}
