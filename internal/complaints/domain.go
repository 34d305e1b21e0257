package complaints

import (
	"fmt"
	"time"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

// Status is a complaint's workflow state. Transitions only move forward.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

var ErrStatusReversal = fmt.Errorf("%w: complaint status cannot move backwards", httpx.ErrStatusReversal)

// ValidTransition reports whether a complaint may move from one status
// to another. Resolved is terminal.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusResolved
	case StatusInProgress:
		return to == StatusResolved
	default:
		return false
	}
}

type Complaint struct {
	ID             int64      `json:"id"`
	PropertyNumber string     `json:"property_number"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
}

type ListRequest struct {
	PropertyNumber string
	Status         Status
	Page           int
	Limit          int
}
