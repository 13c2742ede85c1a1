// AngelaMos | 2026
// repository.go

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
)

type Repository interface {
	GetEnrollment(
		ctx context.Context,
		userID, pathID string,
	) (*Enrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment *Enrollment) error
	InitSections(ctx context.Context, sections []SectionProgress) error
	GetSections(
		ctx context.Context,
		userID, pathID string,
	) ([]SectionProgress, error)
	UpsertSection(ctx context.Context, section *SectionProgress) error
	CountEnrollments(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetEnrollment(
	ctx context.Context,
	userID, pathID string,
) (*Enrollment, error) {
	query := `
		SELECT id, user_id, path_id, enrolled_at
		FROM path_enrollments
		WHERE user_id = $1 AND path_id = $2`

	var e Enrollment
	err := r.db.GetContext(ctx, &e, query, userID, pathID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get enrollment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	return &e, nil
}

func (r *repository) ListEnrollments(
	ctx context.Context,
	userID string,
) ([]Enrollment, error) {
	query := `
		SELECT id, user_id, path_id, enrolled_at
		FROM path_enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at ASC`

	var enrollments []Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	return enrollments, nil
}

func (r *repository) CreateEnrollment(
	ctx context.Context,
	enrollment *Enrollment,
) error {
	query := `
		INSERT INTO path_enrollments (id, user_id, path_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, path_id) DO NOTHING
		RETURNING enrolled_at`

	err := r.db.GetContext(ctx, &enrollment.EnrolledAt, query,
		enrollment.ID,
		enrollment.UserID,
		enrollment.PathID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict path: the enrollment already exists.
		return fmt.Errorf("create enrollment: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

func (r *repository) InitSections(
	ctx context.Context,
	sections []SectionProgress,
) error {
	query := `
		INSERT INTO section_progress (id, user_id, path_id, section_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, path_id, section_key) DO NOTHING`

	for i := range sections {
		s := &sections[i]
		_, err := r.db.ExecContext(ctx, query,
			s.ID,
			s.UserID,
			s.PathID,
			s.SectionKey,
		)
		if err != nil {
			return fmt.Errorf("init section %s: %w", s.SectionKey, err)
		}
	}

	return nil
}

func (r *repository) GetSections(
	ctx context.Context,
	userID, pathID string,
) ([]SectionProgress, error) {
	query := `
		SELECT id, user_id, path_id, section_key, completed, score,
		       completed_at, updated_at
		FROM section_progress
		WHERE user_id = $1 AND path_id = $2`

	var sections []SectionProgress
	err := r.db.SelectContext(ctx, &sections, query, userID, pathID)
	if err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}

	return sections, nil
}

func (r *repository) UpsertSection(
	ctx context.Context,
	section *SectionProgress,
) error {
	query := `
		INSERT INTO section_progress (
			id, user_id, path_id, section_key, completed, score, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, path_id, section_key) DO UPDATE SET
			completed = EXCLUDED.completed,
			score = EXCLUDED.score,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &section.UpdatedAt, query,
		section.ID,
		section.UserID,
		section.PathID,
		section.SectionKey,
		section.Completed,
		section.Score,
		section.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert section: %w", err)
	}

	return nil
}

func (r *repository) CountEnrollments(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM path_enrollments`

	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}

	return total, nil
}
