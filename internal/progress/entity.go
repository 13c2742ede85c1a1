// AngelaMos | 2026
// entity.go

package progress

import (
	"time"
)

type Enrollment struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	PathID     string    `db:"path_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

type SectionProgress struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	PathID      string     `db:"path_id"`
	SectionKey  string     `db:"section_key"`
	Completed   bool       `db:"completed"`
	Score       int        `db:"score"`
	CompletedAt *time.Time `db:"completed_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
