// Package survey implements the response state model: the shape of one
// respondent's answers and the progress metrics derived from it.
package survey

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
)

// NotFoundError reports an operation that referenced a section id absent from
// the response. With a well-formed catalog this is a programming error.
type NotFoundError struct {
	SectionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("section %q not found in response", e.SectionID)
}

// SectionState tracks one catalog section's answers and completion. Entries
// are created at response initialization and never removed.
type SectionState struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Completed    bool              `json:"completed"`
	CompletedAt  *time.Time        `json:"completedAt"`
	Answers      map[string]Answer `json:"answers"`
	LastModified time.Time         `json:"lastModified"`
}

// Progress is derived from the sections it summarizes and never stored
// independently of them.
type Progress struct {
	TotalSections     int `json:"totalSections"`
	CompletedSections int `json:"completedSections"`
	PercentComplete   int `json:"percentComplete"`
	CurrentSection    int `json:"currentSection"` // 1-based catalog index
}

type Metadata struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// Response is the aggregate root: one respondent's section states plus
// metadata and derived progress. Sections always holds exactly one entry per
// catalog section.
type Response struct {
	ID          string                   `json:"id"`
	Timestamp   time.Time                `json:"timestamp"`
	StartedAt   time.Time                `json:"startedAt"`
	LastUpdated time.Time                `json:"lastUpdated"`
	CompletedAt *time.Time               `json:"completedAt"`
	Progress    Progress                 `json:"progress"`
	Sections    map[string]*SectionState `json:"sections"`
	Metadata    Metadata                 `json:"metadata"`
}

// New builds a fresh response for the catalog: one empty SectionState per
// section, a new unique id, and zeroed progress.
func New(c *catalog.Catalog) *Response {
	now := time.Now().UTC()
	sections := make(map[string]*SectionState, len(c.Sections))
	for _, s := range c.Sections {
		sections[s.ID] = &SectionState{
			ID:           s.ID,
			Name:         s.Name,
			Answers:      map[string]Answer{},
			LastModified: now,
		}
	}
	return &Response{
		ID:          uuid.NewString(),
		Timestamp:   now,
		StartedAt:   now,
		LastUpdated: now,
		Progress: Progress{
			TotalSections:  len(c.Sections),
			CurrentSection: 1,
		},
		Sections: sections,
		Metadata: Metadata{},
	}
}

// RecordAnswer sets the answer for a question in the given section and bumps
// the modification timestamps. It never changes section completion. Question
// ids not present in the catalog are tolerated as stray data, since the
// catalog may evolve between sessions.
func (r *Response) RecordAnswer(sectionID, questionID string, a Answer) error {
	sec, ok := r.Sections[sectionID]
	if !ok {
		return &NotFoundError{SectionID: sectionID}
	}
	now := time.Now().UTC()
	if sec.Answers == nil {
		sec.Answers = map[string]Answer{}
	}
	sec.Answers[questionID] = a
	sec.LastModified = now
	r.LastUpdated = now
	return nil
}

// MarkSectionComplete marks a section completed and recomputes progress.
// Idempotent: a section already completed keeps its original CompletedAt.
// When the recomputation shows every section complete, the response's
// CompletedAt is set once and never reset.
func (r *Response) MarkSectionComplete(c *catalog.Catalog, sectionID string) error {
	sec, ok := r.Sections[sectionID]
	if !ok {
		return &NotFoundError{SectionID: sectionID}
	}
	now := time.Now().UTC()
	if !sec.Completed {
		sec.Completed = true
		sec.CompletedAt = &now
		sec.LastModified = now
	}
	r.Progress = ComputeProgress(r.Sections, c.SectionOrder(), r.Progress)
	if r.Progress.CompletedSections == r.Progress.TotalSections && r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	r.LastUpdated = now
	return nil
}

// ComputeProgress derives completion metrics from section states. Pure:
// prev supplies the CurrentSection carried forward when every section is
// complete; in that terminal state CurrentSection is pinned to TotalSections.
func ComputeProgress(sections map[string]*SectionState, order []string, prev Progress) Progress {
	total := len(sections)
	completed := 0
	for _, s := range sections {
		if s.Completed {
			completed++
		}
	}
	percent := 0
	if total > 0 {
		percent = int(float64(completed)/float64(total)*100 + 0.5)
	}
	current := prev.CurrentSection
	found := false
	for i, id := range order {
		s, ok := sections[id]
		if !ok || !s.Completed {
			current = i + 1
			found = true
			break
		}
	}
	if !found && total > 0 {
		current = total
	}
	return Progress{
		TotalSections:     total,
		CompletedSections: completed,
		PercentComplete:   percent,
		CurrentSection:    current,
	}
}
