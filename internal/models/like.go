package models

import "time"

// Like records that a user liked a piece of content. The unique index over
// (UserID, ContentID) is the authoritative duplicate-like guard: inserts go
// through INSERT ... ON CONFLICT DO NOTHING, so at most one row can ever
// exist per pair regardless of concurrent requests.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_content" json:"user_id"`
	ContentID uint      `gorm:"not null;uniqueIndex:idx_user_content" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID" json:"user"`
	Content Content `gorm:"foreignKey:ContentID" json:"content"`
}
