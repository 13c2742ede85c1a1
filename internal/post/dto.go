// AngelaMos | 2026
// dto.go

package post

import (
	"time"
)

type CreatePostRequest struct {
	Content    string `json:"content" validate:"required,max=5000"`
	IsPlatform bool   `json:"is_platform"`
}

type EditPostRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type AddReplyRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type EditReplyRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type ReplyResponse struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	CreatedAt  time.Time  `json:"created_at"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
}

type PostResponse struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	AuthorID   string          `json:"author_id"`
	AuthorName string          `json:"author_name"`
	IsPlatform bool            `json:"is_platform"`
	IsVisible  bool            `json:"is_visible"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	LikeCount  int             `json:"like_count"`
	ReplyCount int             `json:"reply_count"`
	LikedByMe  bool            `json:"liked_by_me"`
	Replies    []ReplyResponse `json:"replies,omitempty"`
}

type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
}

type LikeResponse struct {
	PostID    string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

type PostsStatsResponse struct {
	UserPosts        int `json:"user_posts"`
	VisibleUserPosts int `json:"visible_user_posts"`
	PlatformPosts    int `json:"platform_posts"`
	VisiblePlatform  int `json:"visible_platform_posts"`
	TotalLikes       int `json:"total_likes"`
	TotalReplies     int `json:"total_replies"`
}

type SortField string

const (
	SortByDate       SortField = "date"
	SortByLikes      SortField = "likes"
	SortByReplies    SortField = "replies"
	SortByEngagement SortField = "engagement"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case SortByDate, SortByLikes, SortByReplies, SortByEngagement:
		return SortField(s), true
	case "":
		return SortByDate, true
	}
	return "", false
}

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case OrderAsc, OrderDesc:
		return SortOrder(s), true
	case "":
		return OrderDesc, true
	}
	return "", false
}

func toReplyResponse(r *Reply) ReplyResponse {
	return ReplyResponse{
		ID:         r.ID,
		Content:    r.Content,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		CreatedAt:  r.CreatedAt,
		EditedAt:   r.EditedAt,
	}
}

func toPostResponse(p *Post, likedByMe bool, replies []Reply) PostResponse {
	resp := PostResponse{
		ID:         p.ID,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		IsPlatform: p.IsPlatform,
		IsVisible:  p.IsVisible,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		LikeCount:  p.LikeCount,
		ReplyCount: p.ReplyCount,
		LikedByMe:  likedByMe,
	}

	if replies != nil {
		resp.Replies = make([]ReplyResponse, 0, len(replies))
		for i := range replies {
			resp.Replies = append(resp.Replies, toReplyResponse(&replies[i]))
		}
	}

	return resp
}
