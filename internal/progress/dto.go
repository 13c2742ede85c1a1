// AngelaMos | 2026
// dto.go

package progress

import (
	"time"
)

type EnrollRequest struct {
	PathID string `json:"path_id" validate:"required,min=1,max=50"`
}

type UpdateProgressRequest struct {
	SectionKey string `json:"section_key" validate:"required,min=1,max=100"`
	Completed  bool   `json:"completed"`
	Score      int    `json:"score" validate:"min=0,max=1000"`
}

type SectionProgressResponse struct {
	SectionKey  string     `json:"section_key"`
	Completed   bool       `json:"completed"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type PathProgressResponse struct {
	PathID            string                    `json:"path_id"`
	PathName          string                    `json:"path_name"`
	EnrolledAt        time.Time                 `json:"enrolled_at"`
	Sections          []SectionProgressResponse `json:"sections"`
	CompletedSections int                       `json:"completed_sections"`
	TotalSections     int                       `json:"total_sections"`
	TotalPoints       int                       `json:"total_points"`
	Level             int                       `json:"level"`
	PointsToNextLevel int                       `json:"points_to_next_level"`
}

type ProgressOverviewResponse struct {
	Paths []PathProgressResponse `json:"paths"`
}

type PathTemplateResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
}
