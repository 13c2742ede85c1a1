// AngelaMos | 2026
// entity.go

package post

import (
	"time"
)

type Post struct {
	ID         string    `db:"id"`
	Content    string    `db:"content"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	IsPlatform bool      `db:"is_platform"`
	IsVisible  bool      `db:"is_visible"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	// Aggregates hydrated by list/get queries, not stored columns.
	LikeCount  int `db:"like_count"`
	ReplyCount int `db:"reply_count"`
}

type Reply struct {
	ID         string     `db:"id"`
	PostID     string     `db:"post_id"`
	Content    string     `db:"content"`
	AuthorID   string     `db:"author_id"`
	AuthorName string     `db:"author_name"`
	CreatedAt  time.Time  `db:"created_at"`
	EditedAt   *time.Time `db:"edited_at"`
}

func (r *Reply) IsEdited() bool {
	return r.EditedAt != nil
}

// Engagement is the derived ranking metric. It is computed at sort time
// and never persisted.
func (p *Post) Engagement() int {
	return p.LikeCount + p.ReplyCount
}
