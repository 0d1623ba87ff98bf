// ABOUTME: Cluster result lifecycle status enum and its transition rules.
// ABOUTME: Closed set of five states with exhaustive, compile-checked dispatch.

package models

import (
	"encoding/json"
	"fmt"
)

// Status is the processing lifecycle state of one uploaded cluster result.
type Status int

const (
	StatusWaiting Status = iota
	StatusProcessing
	StatusCompleted
	StatusPartial
	StatusFailed
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []Status{
	StatusWaiting,
	StatusProcessing,
	StatusCompleted,
	StatusPartial,
	StatusFailed,
}

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "waiting":
		return StatusWaiting, nil
	case "processing":
		return StatusProcessing, nil
	case "completed":
		return StatusCompleted, nil
	case "partial":
		return StatusPartial, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusWaiting, fmt.Errorf("unknown status %q", s)
	}
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// transition. Terminal states are only reachable from processing; retry is
// a transition back to processing from failed or partial, never completed.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusPartial || next == StatusFailed
	case StatusFailed, StatusPartial:
		return next == StatusProcessing
	case StatusCompleted:
		return false
	default:
		return false
	}
}

// Retryable reports whether a retry request is valid from this status.
func (s Status) Retryable() bool {
	return s == StatusFailed || s == StatusPartial
}

// Viewable reports whether the result's structured data may be read.
// Waiting, processing, and failed results carry no usable data.
func (s Status) Viewable() bool {
	return s == StatusCompleted || s == StatusPartial
}

// Terminal reports whether the status is an end state of a processing job.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
