// AngelaMos | 2026
// service_test.go

package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/config"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

type fakeRepo struct {
	enrollments map[string]Enrollment      // key user|path
	sections    map[string]SectionProgress // key user|path|section
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		enrollments: map[string]Enrollment{},
		sections:    map[string]SectionProgress{},
	}
}

func (f *fakeRepo) GetEnrollment(
	_ context.Context,
	userID, pathID string,
) (*Enrollment, error) {
	e, ok := f.enrollments[userID+"|"+pathID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &e, nil
}

func (f *fakeRepo) ListEnrollments(
	_ context.Context,
	userID string,
) ([]Enrollment, error) {
	var out []Enrollment
	for _, e := range f.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateEnrollment(
	_ context.Context,
	e *Enrollment,
) error {
	key := e.UserID + "|" + e.PathID
	if _, exists := f.enrollments[key]; exists {
		return core.ErrDuplicateKey
	}
	e.EnrolledAt = time.Now()
	f.enrollments[key] = *e
	return nil
}

func (f *fakeRepo) InitSections(
	_ context.Context,
	sections []SectionProgress,
) error {
	for _, s := range sections {
		key := s.UserID + "|" + s.PathID + "|" + s.SectionKey
		if _, exists := f.sections[key]; !exists {
			f.sections[key] = s
		}
	}
	return nil
}

func (f *fakeRepo) GetSections(
	_ context.Context,
	userID, pathID string,
) ([]SectionProgress, error) {
	var out []SectionProgress
	for _, s := range f.sections {
		if s.UserID == userID && s.PathID == pathID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertSection(
	_ context.Context,
	s *SectionProgress,
) error {
	key := s.UserID + "|" + s.PathID + "|" + s.SectionKey
	s.UpdatedAt = time.Now()
	f.sections[key] = *s
	return nil
}

func (f *fakeRepo) CountEnrollments(_ context.Context) (int, error) {
	return len(f.enrollments), nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, config.ProgressConfig{PointsPerLevel: 50})
	return svc, repo
}

func TestEnrollInPath(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.EnrollInPath(ctx, "u1", "cybersecurity")
	require.NoError(t, err)

	assert.Equal(t, "cybersecurity", resp.PathID)
	assert.Len(t, resp.Sections, 10)
	assert.Equal(t, 0, resp.TotalPoints)
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, 50, resp.PointsToNextLevel)
}

func TestEnrollInPathIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, "u1", "ai", UpdateProgressRequest{
		SectionKey: "ml-fundamentals",
		Completed:  true,
		Score:      30,
	})
	require.NoError(t, err)

	second, err := svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	assert.Equal(t, first.PathID, second.PathID)
	assert.Equal(t, 30, second.TotalPoints, "re-enrollment must not reset progress")
}

func TestEnrollUnknownPath(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.EnrollInPath(context.Background(), "u1", "quantum")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateProgressPointsInvariant(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "cybersecurity")
	require.NoError(t, err)

	steps := []struct {
		key       string
		completed bool
		score     int
	}{
		{"intro-to-security", true, 40},
		{"networking-basics", true, 35},
		{"cryptography", true, 45},
		{"cryptography", false, 0},
		{"web-security", true, 50},
	}

	var resp *PathProgressResponse
	for _, step := range steps {
		var err error
		resp, err = svc.UpdateProgress(ctx, "u1", "cybersecurity",
			UpdateProgressRequest{
				SectionKey: step.key,
				Completed:  step.completed,
				Score:      step.score,
			})
		require.NoError(t, err)

		sum := 0
		for _, s := range resp.Sections {
			if s.Completed {
				sum += s.Score
			}
		}
		assert.Equal(t, sum, resp.TotalPoints)
		assert.Equal(t, resp.TotalPoints/50+1, resp.Level)
	}

	// 40 + 35 + 50; cryptography was uncompleted along the way.
	assert.Equal(t, 125, resp.TotalPoints)
	assert.Equal(t, 3, resp.Level)
	assert.Equal(t, 25, resp.PointsToNextLevel)
}

func TestUpdateProgressUncompleteClearsScore(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, "u1", "ai", UpdateProgressRequest{
		SectionKey: "neural-networks",
		Completed:  true,
		Score:      50,
	})
	require.NoError(t, err)

	resp, err := svc.UpdateProgress(ctx, "u1", "ai", UpdateProgressRequest{
		SectionKey: "neural-networks",
		Completed:  false,
		Score:      50,
	})
	require.NoError(t, err)

	stored := repo.sections["u1|ai|neural-networks"]
	assert.False(t, stored.Completed)
	assert.Equal(t, 0, stored.Score)
	assert.Nil(t, stored.CompletedAt)
	assert.Equal(t, 0, resp.TotalPoints)
	assert.Equal(t, 1, resp.Level)
}

func TestUpdateProgressUnknownSectionKey(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, "u1", "ai", UpdateProgressRequest{
		SectionKey: "not-a-real-section",
		Completed:  true,
		Score:      10,
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateProgressNotEnrolled(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateProgress(
		context.Background(),
		"u1",
		"ai",
		UpdateProgressRequest{
			SectionKey: "ml-fundamentals",
			Completed:  true,
			Score:      10,
		},
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCompleteSectionIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	first, err := svc.CompleteSection(ctx, "u1", "ai", "ai-security", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, first.TotalPoints)

	// Second completion must not double-count, even with another score.
	second, err := svc.CompleteSection(ctx, "u1", "ai", "ai-security", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, second.TotalPoints)

	third, err := svc.CompleteSection(ctx, "u1", "ai", "ai-security", 100)
	require.NoError(t, err)
	assert.Equal(t, 40, third.TotalPoints)
}

func TestLevelThresholds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "cybersecurity")
	require.NoError(t, err)

	cases := []struct {
		points        int
		wantLevel     int
		wantRemaining int
	}{
		{0, 1, 50},
		{49, 1, 1},
		{50, 2, 50},
		{99, 2, 1},
		{100, 3, 50},
	}

	template, _ := GetPathTemplate("cybersecurity")

	for _, tc := range cases {
		resp, err := svc.UpdateProgress(ctx, "u1", "cybersecurity",
			UpdateProgressRequest{
				SectionKey: template.Sections[0],
				Completed:  true,
				Score:      tc.points,
			})
		require.NoError(t, err)

		assert.Equal(t, tc.wantLevel, resp.Level, "points=%d", tc.points)
		assert.Equal(
			t,
			tc.wantRemaining,
			resp.PointsToNextLevel,
			"points=%d",
			tc.points,
		)
	}
}

func TestGetProgressMultiplePaths(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.EnrollInPath(ctx, "u1", "cybersecurity")
	require.NoError(t, err)
	_, err = svc.EnrollInPath(ctx, "u1", "ai")
	require.NoError(t, err)

	// Path totals are independent namespaces.
	_, err = svc.UpdateProgress(ctx, "u1", "ai", UpdateProgressRequest{
		SectionKey: "ml-fundamentals",
		Completed:  true,
		Score:      60,
	})
	require.NoError(t, err)

	overview, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, overview.Paths, 2)

	byPath := map[string]PathProgressResponse{}
	for _, p := range overview.Paths {
		byPath[p.PathID] = p
	}

	assert.Equal(t, 0, byPath["cybersecurity"].TotalPoints)
	assert.Equal(t, 1, byPath["cybersecurity"].Level)
	assert.Equal(t, 60, byPath["ai"].TotalPoints)
	assert.Equal(t, 2, byPath["ai"].Level)
}

func TestCatalogShape(t *testing.T) {
	templates := ListPathTemplates()
	require.Len(t, templates, 2)

	assert.Equal(t, "cybersecurity", templates[0].ID)
	assert.Len(t, templates[0].Sections, 10)
	assert.Equal(t, "ai", templates[1].ID)
	assert.Len(t, templates[1].Sections, 4)

	assert.True(t, templates[0].HasSection("web-security"))
	assert.False(t, templates[0].HasSection("ml-fundamentals"))
}
