// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	TouchUpdatedAt(ctx context.Context, id string) error

	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	HasLike(ctx context.Context, postID, userID string) (bool, error)
	LikedPostIDs(
		ctx context.Context,
		userID string,
		postIDs []string,
	) (map[string]bool, error)

	CreateReply(ctx context.Context, reply *Reply) error
	GetReply(ctx context.Context, replyID string) (*Reply, error)
	ListReplies(ctx context.Context, postID string) ([]Reply, error)
	UpdateReplyContent(ctx context.Context, replyID, content string) error
	DeleteReply(ctx context.Context, replyID string) error

	ListVisible(
		ctx context.Context,
		isPlatform bool,
		limit int,
	) ([]Post, error)
	Search(ctx context.Context, query string) ([]Post, error)
	Stats(ctx context.Context) (*PostsStatsResponse, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// postColumns hydrates like/reply counts alongside the row so engagement
// sorting never needs a second round trip.
const postColumns = `
	p.id, p.content, p.author_id, p.author_name, p.is_platform,
	p.is_visible, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM replies r WHERE r.post_id = p.id) AS reply_count`

func (r *repository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, content, author_id, author_name, is_platform)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_visible, created_at, updated_at`

	err := r.db.GetContext(ctx, post, query,
		post.ID,
		post.Content,
		post.AuthorID,
		post.AuthorName,
		post.IsPlatform,
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

// GetByID does not filter on visibility. Hidden posts stay reachable by
// direct id for moderation tooling and the share page.
func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.id = $1`, postColumns)

	var post Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

func (r *repository) UpdateContent(
	ctx context.Context,
	id, content string,
) error {
	query := `
		UPDATE posts
		SET content = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	// Likes and replies cascade via foreign keys.
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetVisibility(
	ctx context.Context,
	id string,
	visible bool,
) error {
	query := `
		UPDATE posts
		SET is_visible = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, visible)
	if err != nil {
		return fmt.Errorf("set post visibility: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set post visibility: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set post visibility: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) TouchUpdatedAt(ctx context.Context, id string) error {
	query := `UPDATE posts SET updated_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("touch post: %w", err)
	}

	return nil
}

// AddLike inserts atomically; the unique constraint makes concurrent
// duplicate likes converge on a single row instead of racing.
func (r *repository) AddLike(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) RemoveLike(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	query := `
		DELETE FROM post_likes
		WHERE post_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) HasLike(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, postID, userID); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	return exists, nil
}

func (r *repository) LikedPostIDs(
	ctx context.Context,
	userID string,
	postIDs []string,
) (map[string]bool, error) {
	if len(postIDs) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT post_id FROM post_likes WHERE user_id = ? AND post_id IN (?)`,
		userID,
		postIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build liked query: %w", err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("get liked post ids: %w", err)
	}

	liked := make(map[string]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}

	return liked, nil
}

func (r *repository) CreateReply(ctx context.Context, reply *Reply) error {
	query := `
		INSERT INTO replies (id, post_id, content, author_id, author_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &reply.CreatedAt, query,
		reply.ID,
		reply.PostID,
		reply.Content,
		reply.AuthorID,
		reply.AuthorName,
	)
	if err != nil {
		return fmt.Errorf("create reply: %w", err)
	}

	return nil
}

func (r *repository) GetReply(
	ctx context.Context,
	replyID string,
) (*Reply, error) {
	query := `
		SELECT id, post_id, content, author_id, author_name, created_at, edited_at
		FROM replies
		WHERE id = $1`

	var reply Reply
	err := r.db.GetContext(ctx, &reply, query, replyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get reply: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reply: %w", err)
	}

	return &reply, nil
}

func (r *repository) ListReplies(
	ctx context.Context,
	postID string,
) ([]Reply, error) {
	query := `
		SELECT id, post_id, content, author_id, author_name, created_at, edited_at
		FROM replies
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC`

	var replies []Reply
	if err := r.db.SelectContext(ctx, &replies, query, postID); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	return replies, nil
}

func (r *repository) UpdateReplyContent(
	ctx context.Context,
	replyID, content string,
) error {
	query := `
		UPDATE replies
		SET content = $2, edited_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, replyID, content)
	if err != nil {
		return fmt.Errorf("update reply: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reply: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update reply: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteReply(ctx context.Context, replyID string) error {
	query := `DELETE FROM replies WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, replyID)
	if err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete reply: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListVisible(
	ctx context.Context,
	isPlatform bool,
	limit int,
) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.is_platform = $1 AND p.is_visible = true
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $2`, postColumns)

	var posts []Post
	err := r.db.SelectContext(ctx, &posts, query, isPlatform, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

// Search matches content or author name case-insensitively over visible
// posts in both collections.
func (r *repository) Search(
	ctx context.Context,
	searchQuery string,
) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.is_visible = true
			AND (p.content ILIKE $1 OR p.author_name ILIKE $1)
		ORDER BY p.created_at DESC, p.id ASC`, postColumns)

	pattern := "%" + escapeLike(searchQuery) + "%"

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query, pattern); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	return posts, nil
}

func (r *repository) Stats(ctx context.Context) (*PostsStatsResponse, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT is_platform) AS user_posts,
			COUNT(*) FILTER (WHERE NOT is_platform AND is_visible) AS visible_user_posts,
			COUNT(*) FILTER (WHERE is_platform) AS platform_posts,
			COUNT(*) FILTER (WHERE is_platform AND is_visible) AS visible_platform_posts,
			(SELECT COUNT(*) FROM post_likes) AS total_likes,
			(SELECT COUNT(*) FROM replies) AS total_replies
		FROM posts`

	var stats struct {
		UserPosts        int `db:"user_posts"`
		VisibleUserPosts int `db:"visible_user_posts"`
		PlatformPosts    int `db:"platform_posts"`
		VisiblePlatform  int `db:"visible_platform_posts"`
		TotalLikes       int `db:"total_likes"`
		TotalReplies     int `db:"total_replies"`
	}
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("posts stats: %w", err)
	}

	return &PostsStatsResponse{
		UserPosts:        stats.UserPosts,
		VisibleUserPosts: stats.VisibleUserPosts,
		PlatformPosts:    stats.PlatformPosts,
		VisiblePlatform:  stats.VisiblePlatform,
		TotalLikes:       stats.TotalLikes,
		TotalReplies:     stats.TotalReplies,
	}, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
