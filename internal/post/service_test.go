// AngelaMos | 2026
// service_test.go

package post

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/config"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

type fakeRepo struct {
	posts   map[string]*Post
	likes   map[string]map[string]bool // postID -> userID set
	replies map[string]*Reply
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		posts:   map[string]*Post{},
		likes:   map[string]map[string]bool{},
		replies: map[string]*Reply{},
	}
}

func (f *fakeRepo) Create(_ context.Context, p *Post) error {
	now := time.Now()
	p.IsVisible = true
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	clone := *p
	f.posts[p.ID] = &clone
	f.likes[p.ID] = map[string]bool{}
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *p
	out.LikeCount = len(f.likes[id])
	out.ReplyCount = f.replyCount(id)
	return &out, nil
}

func (f *fakeRepo) UpdateContent(_ context.Context, id, content string) error {
	p, ok := f.posts[id]
	if !ok {
		return core.ErrNotFound
	}
	p.Content = content
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.posts, id)
	delete(f.likes, id)
	for rid, r := range f.replies {
		if r.PostID == id {
			delete(f.replies, rid)
		}
	}
	return nil
}

func (f *fakeRepo) SetVisibility(
	_ context.Context,
	id string,
	visible bool,
) error {
	p, ok := f.posts[id]
	if !ok {
		return core.ErrNotFound
	}
	p.IsVisible = visible
	return nil
}

func (f *fakeRepo) TouchUpdatedAt(_ context.Context, id string) error {
	if p, ok := f.posts[id]; ok {
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeRepo) AddLike(
	_ context.Context,
	postID, userID string,
) (bool, error) {
	set, ok := f.likes[postID]
	if !ok {
		return false, core.ErrNotFound
	}
	if set[userID] {
		return false, nil
	}
	set[userID] = true
	return true, nil
}

func (f *fakeRepo) RemoveLike(
	_ context.Context,
	postID, userID string,
) (bool, error) {
	set, ok := f.likes[postID]
	if !ok {
		return false, core.ErrNotFound
	}
	if !set[userID] {
		return false, nil
	}
	delete(set, userID)
	return true, nil
}

func (f *fakeRepo) HasLike(
	_ context.Context,
	postID, userID string,
) (bool, error) {
	return f.likes[postID][userID], nil
}

func (f *fakeRepo) LikedPostIDs(
	_ context.Context,
	userID string,
	postIDs []string,
) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range postIDs {
		if f.likes[id][userID] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReply(_ context.Context, r *Reply) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	clone := *r
	f.replies[r.ID] = &clone
	return nil
}

func (f *fakeRepo) GetReply(_ context.Context, id string) (*Reply, error) {
	r, ok := f.replies[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeRepo) ListReplies(
	_ context.Context,
	postID string,
) ([]Reply, error) {
	var out []Reply
	for _, r := range f.replies {
		if r.PostID == postID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRepo) UpdateReplyContent(
	_ context.Context,
	id, content string,
) error {
	r, ok := f.replies[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	r.Content = content
	r.EditedAt = &now
	return nil
}

func (f *fakeRepo) DeleteReply(_ context.Context, id string) error {
	if _, ok := f.replies[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.replies, id)
	return nil
}

func (f *fakeRepo) ListVisible(
	_ context.Context,
	isPlatform bool,
	limit int,
) ([]Post, error) {
	var out []Post
	for id, p := range f.posts {
		if p.IsPlatform == isPlatform && p.IsVisible {
			clone := *p
			clone.LikeCount = len(f.likes[id])
			clone.ReplyCount = f.replyCount(id)
			out = append(out, clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Search(_ context.Context, query string) ([]Post, error) {
	q := strings.ToLower(query)
	var out []Post
	for id, p := range f.posts {
		if !p.IsVisible {
			continue
		}
		if strings.Contains(strings.ToLower(p.Content), q) ||
			strings.Contains(strings.ToLower(p.AuthorName), q) {
			clone := *p
			clone.LikeCount = len(f.likes[id])
			clone.ReplyCount = f.replyCount(id)
			out = append(out, clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) Stats(_ context.Context) (*PostsStatsResponse, error) {
	stats := &PostsStatsResponse{TotalReplies: len(f.replies)}
	for id, p := range f.posts {
		if p.IsPlatform {
			stats.PlatformPosts++
			if p.IsVisible {
				stats.VisiblePlatform++
			}
		} else {
			stats.UserPosts++
			if p.IsVisible {
				stats.VisibleUserPosts++
			}
		}
		stats.TotalLikes += len(f.likes[id])
	}
	return stats, nil
}

func (f *fakeRepo) replyCount(postID string) int {
	n := 0
	for _, r := range f.replies {
		if r.PostID == postID {
			n++
		}
	}
	return n
}

type fakeDirectory struct {
	names map[string]string
}

func (d *fakeDirectory) NamesByIDs(
	_ context.Context,
	ids []string,
) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := d.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	dir := &fakeDirectory{names: map[string]string{
		"alice": "Alice Rivera",
		"bob":   "Bob Chen",
		"root":  "Site Admin",
	}}

	svc := NewService(repo, dir,
		config.ContentConfig{
			MaxPostLength:   5000,
			PostEditWindow:  24 * time.Hour,
			ReplyEditWindow: 2 * time.Hour,
		},
		config.FeedConfig{
			UserPostsLimit:     50,
			PlatformPostsLimit: 20,
			PlatformFeedCap:    3,
		},
	)
	return svc, repo
}

func mustCreate(
	t *testing.T,
	svc *Service,
	actorID string,
	admin bool,
	content string,
	platform bool,
) *PostResponse {
	t.Helper()
	resp, err := svc.CreatePost(context.Background(), actorID, admin,
		CreatePostRequest{Content: content, IsPlatform: platform})
	require.NoError(t, err)
	return resp
}

func TestCreatePost(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreate(t, svc, "alice", false, "  hello world  ", false)

	assert.Equal(t, "hello world", resp.Content, "content is trimmed")
	assert.Equal(t, "alice", resp.AuthorID)
	assert.Equal(t, "Alice Rivera", resp.AuthorName)
	assert.True(t, resp.IsVisible)
	assert.False(t, resp.IsPlatform)
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)
	assert.Zero(t, resp.LikeCount)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "alice", false,
		CreatePostRequest{Content: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "alice", false,
		CreatePostRequest{Content: strings.Repeat("x", 5001)})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPlatformPostsAdminOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "alice", false,
		CreatePostRequest{Content: "announcement", IsPlatform: true})
	assert.ErrorIs(t, err, core.ErrForbidden)

	resp, err := svc.CreatePost(ctx, "root", true,
		CreatePostRequest{Content: "announcement", IsPlatform: true})
	require.NoError(t, err)
	assert.True(t, resp.IsPlatform)
}

func TestToggleLikeSelfInverse(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "likeable", false)

	first, err := svc.ToggleLike(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikeCount)

	second, err := svc.ToggleLike(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 0, second.LikeCount)
}

func TestLikeIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "likeable", false)

	for range 3 {
		resp, err := svc.Like(ctx, "bob", p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.LikeCount)
	}

	resp, err := svc.Unlike(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LikeCount)

	// Unliking when not liked stays at zero.
	resp, err = svc.Unlike(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LikeCount)
}

func TestEditPostWindow(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "original", false)
	createdAt := repo.posts[p.ID].CreatedAt

	// Just inside the 24h window.
	svc.now = func() time.Time { return createdAt.Add(24*time.Hour - time.Minute) }
	edited, err := svc.EditPost(ctx, "alice", false, p.ID,
		EditPostRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)
	assert.Equal(t, createdAt, edited.CreatedAt)

	// Just past it.
	svc.now = func() time.Time { return createdAt.Add(24*time.Hour + time.Minute) }
	_, err = svc.EditPost(ctx, "alice", false, p.ID,
		EditPostRequest{Content: "too late"})
	assert.ErrorIs(t, err, ErrEditWindowExpired)

	// Admins are exempt from the window.
	edited, err = svc.EditPost(ctx, "root", true, p.ID,
		EditPostRequest{Content: "admin edit"})
	require.NoError(t, err)
	assert.Equal(t, "admin edit", edited.Content)
}

func TestEditReplyWindow(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "post", false)

	reply, err := svc.AddReply(ctx, "bob", p.ID,
		AddReplyRequest{Content: "first"})
	require.NoError(t, err)

	createdAt := repo.replies[reply.ID].CreatedAt

	svc.now = func() time.Time { return createdAt.Add(2*time.Hour - time.Minute) }
	edited, err := svc.EditReply(ctx, "bob", false, p.ID, reply.ID,
		EditReplyRequest{Content: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Content)
	assert.NotNil(t, edited.EditedAt, "edited reply carries an edit marker")

	svc.now = func() time.Time { return createdAt.Add(2*time.Hour + time.Minute) }
	_, err = svc.EditReply(ctx, "bob", false, p.ID, reply.ID,
		EditReplyRequest{Content: "too late"})
	assert.ErrorIs(t, err, ErrEditWindowExpired)
}

func TestPermissionMatrix(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "owned by alice", false)
	reply, err := svc.AddReply(ctx, "alice", p.ID,
		AddReplyRequest{Content: "alice reply"})
	require.NoError(t, err)

	// A non-author non-admin is always denied, valid content or not.
	_, err = svc.EditPost(ctx, "bob", false, p.ID,
		EditPostRequest{Content: "hijack"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.DeletePost(ctx, "bob", false, p.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.EditReply(ctx, "bob", false, p.ID, reply.ID,
		EditReplyRequest{Content: "hijack"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.DeleteReply(ctx, "bob", false, p.ID, reply.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// Admins may do all of it.
	_, err = svc.EditPost(ctx, "root", true, p.ID,
		EditPostRequest{Content: "moderated"})
	assert.NoError(t, err)

	err = svc.DeleteReply(ctx, "root", true, p.ID, reply.ID)
	assert.NoError(t, err)
}

func TestToggleVisibilityAdminOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "visible", false)

	_, err := svc.ToggleVisibility(ctx, false, p.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	hidden, err := svc.ToggleVisibility(ctx, true, p.ID)
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)

	shown, err := svc.ToggleVisibility(ctx, true, p.ID)
	require.NoError(t, err)
	assert.True(t, shown.IsVisible)
}

func TestHiddenPostsExcludedFromListsButDirectlyReadable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	visible := mustCreate(t, svc, "alice", false, "shown", false)
	hidden := mustCreate(t, svc, "alice", false, "hidden firewall talk", false)

	_, err := svc.ToggleVisibility(ctx, true, hidden.ID)
	require.NoError(t, err)

	listed, err := svc.ListPosts(ctx, "", false, 0, SortByDate, OrderDesc)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, visible.ID, listed[0].ID)

	found, err := svc.SearchPosts(ctx, "", "firewall")
	require.NoError(t, err)
	assert.Empty(t, found)

	direct, err := svc.GetPost(ctx, "", hidden.ID)
	require.NoError(t, err)
	assert.False(t, direct.IsVisible)
}

func TestCombinedFeedCap(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)

	for i := range 5 {
		p := mustCreate(t, svc, "alice", false, "user post", false)
		repo.posts[p.ID].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	var platformIDs []string
	for i := range 10 {
		p := mustCreate(t, svc, "root", true, "platform post", true)
		repo.posts[p.ID].CreatedAt = base.Add(
			time.Duration(10+i) * time.Minute,
		)
		platformIDs = append(platformIDs, p.ID)
	}

	feed, err := svc.CombinedFeed(ctx, "")
	require.NoError(t, err)
	require.Len(t, feed, 8, "5 user posts + capped 3 platform posts")

	gotPlatform := map[string]bool{}
	for _, p := range feed {
		if p.IsPlatform {
			gotPlatform[p.ID] = true
		}
	}
	require.Len(t, gotPlatform, 3)

	// The 3 platform entries are the most recent 3.
	for _, id := range platformIDs[7:] {
		assert.True(t, gotPlatform[id])
	}

	// The merge is ordered by recency.
	for i := 1; i < len(feed); i++ {
		assert.False(
			t,
			feed[i-1].CreatedAt.Before(feed[i].CreatedAt),
			"feed must be newest first",
		)
	}
}

func TestSearchMatchesContentAndAuthor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	match1 := mustCreate(t, svc, "alice", false, "Configuring a FIREWALL", false)
	mustCreate(t, svc, "bob", false, "nothing relevant", false)

	// Author-name matches count too.
	dirHit := mustCreate(t, svc, "alice", false, "unrelated content", false)

	found, err := svc.SearchPosts(ctx, "", "firewall")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, match1.ID, found[0].ID)

	byAuthor, err := svc.SearchPosts(ctx, "", "rivera")
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, p := range byAuthor {
		ids[p.ID] = true
	}
	assert.True(t, ids[match1.ID])
	assert.True(t, ids[dirHit.ID])

	_, err = svc.SearchPosts(ctx, "", "   ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSortByEngagement(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	quiet := mustCreate(t, svc, "alice", false, "quiet", false)
	busy := mustCreate(t, svc, "alice", false, "busy", false)
	middle := mustCreate(t, svc, "bob", false, "middle", false)

	_, err := svc.Like(ctx, "bob", busy.ID)
	require.NoError(t, err)
	_, err = svc.Like(ctx, "root", busy.ID)
	require.NoError(t, err)
	_, err = svc.AddReply(ctx, "bob", busy.ID, AddReplyRequest{Content: "!"})
	require.NoError(t, err)

	_, err = svc.Like(ctx, "alice", middle.ID)
	require.NoError(t, err)

	// Same creation instant removes date as a factor.
	now := time.Now()
	for _, p := range repo.posts {
		p.CreatedAt = now
	}

	sorted, err := svc.ListPosts(ctx, "", false, 0, SortByEngagement, OrderDesc)
	require.NoError(t, err)
	require.Len(t, sorted, 3)

	assert.Equal(t, busy.ID, sorted[0].ID)
	assert.Equal(t, middle.ID, sorted[1].ID)
	assert.Equal(t, quiet.ID, sorted[2].ID)

	// With identical dates the date sort falls back to id ascending.
	byDate, err := svc.ListPosts(ctx, "", false, 0, SortByDate, OrderDesc)
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	assert.True(t, byDate[0].ID < byDate[1].ID)
	assert.True(t, byDate[1].ID < byDate[2].ID)
}

func TestDeletePostCascades(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "doomed", false)
	_, err := svc.AddReply(ctx, "bob", p.ID, AddReplyRequest{Content: "reply"})
	require.NoError(t, err)
	_, err = svc.Like(ctx, "bob", p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, "alice", false, p.ID))

	_, err = svc.GetPost(ctx, "", p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, repo.replies)
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := mustCreate(t, svc, "alice", false, "hello #1", false)

	like, err := svc.ToggleLike(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	reply, err := svc.AddReply(ctx, "bob", p.ID,
		AddReplyRequest{Content: "nice!"})
	require.NoError(t, err)
	assert.Equal(t, "bob", reply.AuthorID)

	edited, err := svc.EditPost(ctx, "alice", false, p.ID,
		EditPostRequest{Content: "hello #1 (edited)"})
	require.NoError(t, err)
	assert.Equal(t, "hello #1 (edited)", edited.Content)
	assert.Equal(t, p.CreatedAt, edited.CreatedAt)
	assert.True(t, edited.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, 1, edited.ReplyCount)

	_, err = svc.ToggleVisibility(ctx, true, p.ID)
	require.NoError(t, err)

	listed, err := svc.ListPosts(ctx, "", false, 0, SortByDate, OrderDesc)
	require.NoError(t, err)
	assert.Empty(t, listed)

	direct, err := svc.GetPost(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.False(t, direct.IsVisible)
	assert.True(t, direct.LikedByMe)
	require.Len(t, direct.Replies, 1)
	assert.Equal(t, "nice!", direct.Replies[0].Content)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p1 := mustCreate(t, svc, "alice", false, "one", false)
	mustCreate(t, svc, "bob", false, "two", false)
	platform := mustCreate(t, svc, "root", true, "announcement", true)

	_, err := svc.Like(ctx, "bob", p1.ID)
	require.NoError(t, err)
	_, err = svc.AddReply(ctx, "alice", platform.ID,
		AddReplyRequest{Content: "thanks"})
	require.NoError(t, err)

	_, err = svc.ToggleVisibility(ctx, true, p1.ID)
	require.NoError(t, err)

	stats, err := svc.GetPostsStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.UserPosts)
	assert.Equal(t, 1, stats.VisibleUserPosts)
	assert.Equal(t, 1, stats.PlatformPosts)
	assert.Equal(t, 1, stats.VisiblePlatform)
	assert.Equal(t, 1, stats.TotalLikes)
	assert.Equal(t, 1, stats.TotalReplies)
}
