// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/config"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

// ErrEditWindowExpired marks an author edit attempted after the allowed
// window. Admins are exempt from windows entirely.
var ErrEditWindowExpired = errors.New("edit window expired")

// UserDirectory resolves user ids to display names. Author names are
// denormalized onto posts and replies at creation and never synced.
type UserDirectory interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type Service struct {
	repo  Repository
	users UserDirectory

	maxContentLength int
	postEditWindow   time.Duration
	replyEditWindow  time.Duration

	userPostsLimit     int
	platformPostsLimit int
	platformFeedCap    int

	now func() time.Time
}

func NewService(
	repo Repository,
	users UserDirectory,
	contentCfg config.ContentConfig,
	feedCfg config.FeedConfig,
) *Service {
	return &Service{
		repo:               repo,
		users:              users,
		maxContentLength:   contentCfg.MaxPostLength,
		postEditWindow:     contentCfg.PostEditWindow,
		replyEditWindow:    contentCfg.ReplyEditWindow,
		userPostsLimit:     feedCfg.UserPostsLimit,
		platformPostsLimit: feedCfg.PlatformPostsLimit,
		platformFeedCap:    feedCfg.PlatformFeedCap,
		now:                time.Now,
	}
}

func (s *Service) CreatePost(
	ctx context.Context,
	actorID string,
	actorIsAdmin bool,
	req CreatePostRequest,
) (*PostResponse, error) {
	content, err := s.validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	if req.IsPlatform && !actorIsAdmin {
		return nil, fmt.Errorf(
			"create post: platform posts are admin-only: %w",
			core.ErrForbidden,
		)
	}

	authorName, err := s.resolveName(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:         uuid.New().String(),
		Content:    content,
		AuthorID:   actorID,
		AuthorName: authorName,
		IsPlatform: req.IsPlatform,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	resp := toPostResponse(post, false, []Reply{})
	return &resp, nil
}

// GetPost returns a post by id with its replies. Hidden posts resolve
// here even though list and search exclude them.
func (s *Service) GetPost(
	ctx context.Context,
	actorID, postID string,
) (*PostResponse, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	replies, err := s.repo.ListReplies(ctx, postID)
	if err != nil {
		return nil, err
	}

	likedByMe := false
	if actorID != "" {
		likedByMe, err = s.repo.HasLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
	}

	resp := toPostResponse(post, likedByMe, replies)
	return &resp, nil
}

func (s *Service) EditPost(
	ctx context.Context,
	actorID string,
	actorIsAdmin bool,
	postID string,
	req EditPostRequest,
) (*PostResponse, error) {
	content, err := s.validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeMutation(
		post.AuthorID,
		post.CreatedAt,
		actorID,
		actorIsAdmin,
		s.postEditWindow,
	); err != nil {
		return nil, fmt.Errorf("edit post: %w", err)
	}

	if err := s.repo.UpdateContent(ctx, postID, content); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, actorID, postID)
}

// DeletePost hard deletes the post along with its replies and likes.
// Deletion is author-or-admin with no time window.
func (s *Service) DeletePost(
	ctx context.Context,
	actorID string,
	actorIsAdmin bool,
	postID string,
) error {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != actorID && !actorIsAdmin {
		return fmt.Errorf("delete post: %w", core.ErrForbidden)
	}

	return s.repo.Delete(ctx, postID)
}

// Like is an atomic set insert. Liking an already-liked post is a no-op.
func (s *Service) Like(
	ctx context.Context,
	actorID, postID string,
) (*LikeResponse, error) {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	changed, err := s.repo.AddLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	return s.finishLike(ctx, postID, changed, true)
}

// Unlike is the atomic inverse of Like.
func (s *Service) Unlike(
	ctx context.Context,
	actorID, postID string,
) (*LikeResponse, error) {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	changed, err := s.repo.RemoveLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	return s.finishLike(ctx, postID, changed, false)
}

// ToggleLike flips the actor's like on the post. It is built on the
// atomic add/remove primitives so two sequential calls always restore
// the original state.
func (s *Service) ToggleLike(
	ctx context.Context,
	actorID, postID string,
) (*LikeResponse, error) {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.repo.HasLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	if liked {
		return s.Unlike(ctx, actorID, postID)
	}
	return s.Like(ctx, actorID, postID)
}

func (s *Service) finishLike(
	ctx context.Context,
	postID string,
	changed, liked bool,
) (*LikeResponse, error) {
	if changed {
		if err := s.repo.TouchUpdatedAt(ctx, postID); err != nil {
			return nil, err
		}
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &LikeResponse{
		PostID:    postID,
		Liked:     liked,
		LikeCount: post.LikeCount,
	}, nil
}

func (s *Service) AddReply(
	ctx context.Context,
	actorID, postID string,
	req AddReplyRequest,
) (*ReplyResponse, error) {
	content, err := s.validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	authorName, err := s.resolveName(ctx, actorID)
	if err != nil {
		return nil, err
	}

	reply := &Reply{
		ID:         uuid.New().String(),
		PostID:     postID,
		Content:    content,
		AuthorID:   actorID,
		AuthorName: authorName,
	}

	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	if err := s.repo.TouchUpdatedAt(ctx, postID); err != nil {
		return nil, err
	}

	resp := toReplyResponse(reply)
	return &resp, nil
}

func (s *Service) EditReply(
	ctx context.Context,
	actorID string,
	actorIsAdmin bool,
	postID, replyID string,
	req EditReplyRequest,
) (*ReplyResponse, error) {
	content, err := s.validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	reply, err := s.getReplyOnPost(ctx, postID, replyID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeMutation(
		reply.AuthorID,
		reply.CreatedAt,
		actorID,
		actorIsAdmin,
		s.replyEditWindow,
	); err != nil {
		return nil, fmt.Errorf("edit reply: %w", err)
	}

	if err := s.repo.UpdateReplyContent(ctx, replyID, content); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetReply(ctx, replyID)
	if err != nil {
		return nil, err
	}

	resp := toReplyResponse(updated)
	return &resp, nil
}

func (s *Service) DeleteReply(
	ctx context.Context,
	actorID string,
	actorIsAdmin bool,
	postID, replyID string,
) error {
	reply, err := s.getReplyOnPost(ctx, postID, replyID)
	if err != nil {
		return err
	}

	if reply.AuthorID != actorID && !actorIsAdmin {
		return fmt.Errorf("delete reply: %w", core.ErrForbidden)
	}

	if err := s.repo.DeleteReply(ctx, replyID); err != nil {
		return err
	}

	return s.repo.TouchUpdatedAt(ctx, postID)
}

// ToggleVisibility flips a post's visibility. Admin-only; hidden posts
// drop out of list and search reads but stay intact in storage.
func (s *Service) ToggleVisibility(
	ctx context.Context,
	actorIsAdmin bool,
	postID string,
) (*PostResponse, error) {
	if !actorIsAdmin {
		return nil, fmt.Errorf("toggle visibility: %w", core.ErrForbidden)
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetVisibility(ctx, postID, !post.IsVisible); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, "", postID)
}

// ListPosts returns visible posts from one collection, newest first.
func (s *Service) ListPosts(
	ctx context.Context,
	actorID string,
	isPlatform bool,
	limit int,
	sortBy SortField,
	order SortOrder,
) ([]PostResponse, error) {
	if limit <= 0 {
		if isPlatform {
			limit = s.platformPostsLimit
		} else {
			limit = s.userPostsLimit
		}
	}

	posts, err := s.repo.ListVisible(ctx, isPlatform, limit)
	if err != nil {
		return nil, err
	}

	sortPosts(posts, sortBy, order)

	return s.hydrate(ctx, actorID, posts)
}

// CombinedFeed merges recent user posts with a capped slice of platform
// posts and re-sorts the concatenation by recency. The cap keeps
// announcements from overwhelming the feed regardless of volume.
func (s *Service) CombinedFeed(
	ctx context.Context,
	actorID string,
) ([]PostResponse, error) {
	userPosts, err := s.repo.ListVisible(ctx, false, s.userPostsLimit)
	if err != nil {
		return nil, err
	}

	platformPosts, err := s.repo.ListVisible(ctx, true, s.platformPostsLimit)
	if err != nil {
		return nil, err
	}

	if len(platformPosts) > s.platformFeedCap {
		platformPosts = platformPosts[:s.platformFeedCap]
	}

	combined := make([]Post, 0, len(userPosts)+len(platformPosts))
	combined = append(combined, userPosts...)
	combined = append(combined, platformPosts...)

	sortPosts(combined, SortByDate, OrderDesc)

	return s.hydrate(ctx, actorID, combined)
}

// SearchPosts matches the query against content or author name,
// case-insensitively, over visible posts in both collections.
func (s *Service) SearchPosts(
	ctx context.Context,
	actorID, query string,
) ([]PostResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf(
			"search: empty query: %w",
			core.ErrInvalidInput,
		)
	}

	posts, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	sortPosts(posts, SortByDate, OrderDesc)

	return s.hydrate(ctx, actorID, posts)
}

func (s *Service) GetPostsStats(
	ctx context.Context,
) (*PostsStatsResponse, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf(
			"content must not be empty: %w",
			core.ErrInvalidInput,
		)
	}
	if len([]rune(content)) > s.maxContentLength {
		return "", fmt.Errorf(
			"content exceeds %d characters: %w",
			s.maxContentLength,
			core.ErrInvalidInput,
		)
	}
	return content, nil
}

// authorizeMutation enforces the author-or-admin rule, then the edit
// window for non-admin authors. Permission is checked before the window
// so a stranger always sees PermissionDenied, never EditWindowExpired.
func (s *Service) authorizeMutation(
	authorID string,
	createdAt time.Time,
	actorID string,
	actorIsAdmin bool,
	window time.Duration,
) error {
	if actorIsAdmin {
		return nil
	}

	if authorID != actorID {
		return core.ErrForbidden
	}

	if s.now().Sub(createdAt) > window {
		return ErrEditWindowExpired
	}

	return nil
}

func (s *Service) getReplyOnPost(
	ctx context.Context,
	postID, replyID string,
) (*Reply, error) {
	reply, err := s.repo.GetReply(ctx, replyID)
	if err != nil {
		return nil, err
	}

	if reply.PostID != postID {
		return nil, fmt.Errorf("reply not on post: %w", core.ErrNotFound)
	}

	return reply, nil
}

func (s *Service) resolveName(
	ctx context.Context,
	userID string,
) (string, error) {
	names, err := s.users.NamesByIDs(ctx, []string{userID})
	if err != nil {
		return "", fmt.Errorf("resolve author name: %w", err)
	}

	name, ok := names[userID]
	if !ok {
		return "", fmt.Errorf("resolve author name: %w", core.ErrNotFound)
	}

	return name, nil
}

func (s *Service) hydrate(
	ctx context.Context,
	actorID string,
	posts []Post,
) ([]PostResponse, error) {
	liked := map[string]bool{}

	if actorID != "" && len(posts) > 0 {
		ids := make([]string, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}

		var err error
		liked, err = s.repo.LikedPostIDs(ctx, actorID, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i], liked[posts[i].ID], nil))
	}

	return out, nil
}

// sortPosts orders in place. Ties always break on id ascending so
// results are reproducible across runs.
func sortPosts(posts []Post, sortBy SortField, order SortOrder) {
	key := func(p *Post) int64 {
		switch sortBy {
		case SortByLikes:
			return int64(p.LikeCount)
		case SortByReplies:
			return int64(p.ReplyCount)
		case SortByEngagement:
			return int64(p.Engagement())
		default:
			return p.CreatedAt.UnixNano()
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		ki, kj := key(&posts[i]), key(&posts[j])
		if ki != kj {
			if order == OrderAsc {
				return ki < kj
			}
			return ki > kj
		}
		return posts[i].ID < posts[j].ID
	})
}
