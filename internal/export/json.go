package export

import (
	"encoding/json"
	"fmt"

	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// FormatError reports a payload that is not an exported response. Nothing is
// imported from a rejected file.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "invalid response file format: " + e.Reason }

// RenderJSON serializes a response for export, indented for humans. The
// output round-trips exactly through ParseResponse.
func RenderJSON(r *survey.Response) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return out, nil
}

// ParseResponse validates and decodes an exported JSON response. A file is
// accepted only when it carries non-empty id, sections, and progress fields;
// anything else is a *FormatError with no partial result.
func ParseResponse(data []byte) (*survey.Response, error) {
	// Probe the contract fields before committing to a full decode so a
	// rejected file reports a format error, not a field-level decode error.
	var probe struct {
		ID       string          `json:"id"`
		Sections json.RawMessage `json:"sections"`
		Progress json.RawMessage `json:"progress"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}
	if probe.ID == "" {
		return nil, &FormatError{Reason: "missing id"}
	}
	if len(probe.Sections) == 0 || string(probe.Sections) == "null" {
		return nil, &FormatError{Reason: "missing sections"}
	}
	if len(probe.Progress) == 0 || string(probe.Progress) == "null" {
		return nil, &FormatError{Reason: "missing progress"}
	}
	var r survey.Response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}
	return &r, nil
}
