// AngelaMos | 2026
// service.go

package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/config"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

type Service struct {
	repo           Repository
	pointsPerLevel int
}

func NewService(repo Repository, cfg config.ProgressConfig) *Service {
	pointsPerLevel := cfg.PointsPerLevel
	if pointsPerLevel <= 0 {
		pointsPerLevel = 50
	}

	return &Service{
		repo:           repo,
		pointsPerLevel: pointsPerLevel,
	}
}

// ListPaths returns the fixed curriculum catalog.
func (s *Service) ListPaths() []PathTemplateResponse {
	templates := ListPathTemplates()
	out := make([]PathTemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, PathTemplateResponse{
			ID:       t.ID,
			Name:     t.Name,
			Sections: t.Sections,
		})
	}
	return out
}

// EnrollInPath enrolls a user in a path and seeds one progress row per
// section. Re-enrolling is a no-op that returns current state unchanged.
func (s *Service) EnrollInPath(
	ctx context.Context,
	userID, pathID string,
) (*PathProgressResponse, error) {
	template, ok := GetPathTemplate(pathID)
	if !ok {
		return nil, fmt.Errorf(
			"enroll: unknown path %q: %w",
			pathID,
			core.ErrNotFound,
		)
	}

	enrollment := &Enrollment{
		ID:     uuid.New().String(),
		UserID: userID,
		PathID: pathID,
	}

	err := s.repo.CreateEnrollment(ctx, enrollment)
	if err != nil && !errors.Is(err, core.ErrDuplicateKey) {
		return nil, err
	}

	if err == nil {
		sections := make([]SectionProgress, 0, len(template.Sections))
		for _, key := range template.Sections {
			sections = append(sections, SectionProgress{
				ID:         uuid.New().String(),
				UserID:     userID,
				PathID:     pathID,
				SectionKey: key,
			})
		}
		if initErr := s.repo.InitSections(ctx, sections); initErr != nil {
			return nil, initErr
		}
	}

	return s.GetPathProgress(ctx, userID, pathID)
}

// UpdateProgress overwrites one section's completion state and recomputes
// path totals from the full progress map. It does not guard against
// re-completing an already-completed section; CompleteSection does.
func (s *Service) UpdateProgress(
	ctx context.Context,
	userID, pathID string,
	req UpdateProgressRequest,
) (*PathProgressResponse, error) {
	template, ok := GetPathTemplate(pathID)
	if !ok {
		return nil, fmt.Errorf(
			"update progress: unknown path %q: %w",
			pathID,
			core.ErrNotFound,
		)
	}

	if !template.HasSection(req.SectionKey) {
		return nil, fmt.Errorf(
			"update progress: unknown section %q for path %q: %w",
			req.SectionKey,
			pathID,
			core.ErrInvalidInput,
		)
	}

	if _, err := s.repo.GetEnrollment(ctx, userID, pathID); err != nil {
		return nil, err
	}

	section := &SectionProgress{
		ID:         uuid.New().String(),
		UserID:     userID,
		PathID:     pathID,
		SectionKey: req.SectionKey,
		Completed:  req.Completed,
	}

	if req.Completed {
		now := time.Now()
		section.Score = req.Score
		section.CompletedAt = &now
	}

	if err := s.repo.UpsertSection(ctx, section); err != nil {
		return nil, err
	}

	return s.GetPathProgress(ctx, userID, pathID)
}

// CompleteSection marks a section complete, awarding its score. Already
// completed sections are left untouched so scores cannot double-count.
func (s *Service) CompleteSection(
	ctx context.Context,
	userID, pathID, sectionKey string,
	score int,
) (*PathProgressResponse, error) {
	template, ok := GetPathTemplate(pathID)
	if !ok {
		return nil, fmt.Errorf(
			"complete section: unknown path %q: %w",
			pathID,
			core.ErrNotFound,
		)
	}

	if !template.HasSection(sectionKey) {
		return nil, fmt.Errorf(
			"complete section: unknown section %q for path %q: %w",
			sectionKey,
			pathID,
			core.ErrInvalidInput,
		)
	}

	if _, err := s.repo.GetEnrollment(ctx, userID, pathID); err != nil {
		return nil, err
	}

	sections, err := s.repo.GetSections(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	for _, existing := range sections {
		if existing.SectionKey == sectionKey && existing.Completed {
			return s.buildPathResponse(ctx, userID, pathID)
		}
	}

	return s.UpdateProgress(ctx, userID, pathID, UpdateProgressRequest{
		SectionKey: sectionKey,
		Completed:  true,
		Score:      score,
	})
}

// GetProgress returns every enrolled path with derived totals.
func (s *Service) GetProgress(
	ctx context.Context,
	userID string,
) (*ProgressOverviewResponse, error) {
	enrollments, err := s.repo.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}

	paths := make([]PathProgressResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp, err := s.buildPathResponse(ctx, userID, e.PathID)
		if err != nil {
			return nil, err
		}
		resp.EnrolledAt = e.EnrolledAt
		paths = append(paths, *resp)
	}

	return &ProgressOverviewResponse{Paths: paths}, nil
}

func (s *Service) GetPathProgress(
	ctx context.Context,
	userID, pathID string,
) (*PathProgressResponse, error) {
	enrollment, err := s.repo.GetEnrollment(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	resp, err := s.buildPathResponse(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	resp.EnrolledAt = enrollment.EnrolledAt
	return resp, nil
}

func (s *Service) CountEnrollments(ctx context.Context) (int, error) {
	return s.repo.CountEnrollments(ctx)
}

// buildPathResponse recomputes totals from the full section map. The
// derivation is always total, never incremental, so repeated calls can
// never accumulate drift.
func (s *Service) buildPathResponse(
	ctx context.Context,
	userID, pathID string,
) (*PathProgressResponse, error) {
	template, ok := GetPathTemplate(pathID)
	if !ok {
		return nil, fmt.Errorf(
			"build progress: unknown path %q: %w",
			pathID,
			core.ErrNotFound,
		)
	}

	sections, err := s.repo.GetSections(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]SectionProgress, len(sections))
	for _, sec := range sections {
		byKey[sec.SectionKey] = sec
	}

	totalPoints := 0
	completedCount := 0
	sectionResponses := make([]SectionProgressResponse, 0, len(template.Sections))

	for _, key := range template.Sections {
		sec := byKey[key]
		if sec.Completed {
			totalPoints += sec.Score
			completedCount++
		}
		sectionResponses = append(sectionResponses, SectionProgressResponse{
			SectionKey:  key,
			Completed:   sec.Completed,
			Score:       sec.Score,
			CompletedAt: sec.CompletedAt,
		})
	}

	level := totalPoints/s.pointsPerLevel + 1
	pointsToNext := s.pointsPerLevel - totalPoints%s.pointsPerLevel

	return &PathProgressResponse{
		PathID:            template.ID,
		PathName:          template.Name,
		Sections:          sectionResponses,
		CompletedSections: completedCount,
		TotalSections:     len(template.Sections),
		TotalPoints:       totalPoints,
		Level:             level,
		PointsToNextLevel: pointsToNext,
	}, nil
}
