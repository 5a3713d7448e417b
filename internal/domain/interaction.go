package domain

import (
	"time"

	"github.com/google/uuid"
)

// View names the dashboard panel a request was answered for.
type View string

const (
	ViewMap    View = "map"
	ViewSeries View = "series"
)

// Interaction records one answered dashboard request for the interaction log.
type Interaction struct {
	ID         string    `json:"id"`
	View       View      `json:"view"`
	Category   Category  `json:"category"`
	Start      *Date     `json:"start,omitempty"`
	End        *Date     `json:"end,omitempty"`
	Areas      []string  `json:"areas,omitempty"`
	Rows       int       `json:"rows"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewInteraction stamps an interaction with a fresh id and the current time.
func NewInteraction(view View, category Category, rows int) Interaction {
	return Interaction{
		ID:         uuid.NewString(),
		View:       view,
		Category:   category,
		Rows:       rows,
		OccurredAt: clock.Now().UTC(),
	}
}

// WithRange attaches the requested date range.
func (i Interaction) WithRange(start, end Date) Interaction {
	i.Start, i.End = &start, &end
	return i
}

// WithAreas attaches the requested areas.
func (i Interaction) WithAreas(areas []string) Interaction {
	i.Areas = areas
	return i
}
