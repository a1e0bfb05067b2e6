// Package offline queues clock mutations on the kiosk while the API is
// unreachable and replays them once it is back.
package offline

import (
	"errors"
	"time"
)

type Kind string

const (
	KindClockIn  Kind = "clock_in"
	KindClockOut Kind = "clock_out"
)

// Status is the replay state of a pending action:
// queued -> in_flight -> done (then deleted); a failed replay goes back to
// queued.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusInFlight Status = "in_flight"
	StatusDone     Status = "done"
)

var (
	ErrActionNotFound   = errors.New("pending action not found")
	ErrUnexpectedStatus = errors.New("pending action has unexpected status")
)

// Request is a clock mutation as entered on the kiosk. A clock-out must name
// the entry it closes.
type Request struct {
	Kind       Kind   `json:"kind" validate:"oneof=clock_in clock_out"`
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	EntryID    string `json:"entry_id,omitempty" validate:"required_if=Kind clock_out,omitempty,uuid"`
}

// Action is a queued Request waiting to be sent to the API.
type Action struct {
	Request

	Seq       int64     `json:"seq"`
	ID        string    `json:"id" validate:"required,uuid"`
	Status    Status    `json:"status" validate:"oneof=queued in_flight done"`
	Attempts  int       `json:"attempts" validate:"gte=0"`
	LastError string    `json:"last_error,omitempty"`
	ClaimedBy string    `json:"claimed_by,omitempty"`
	ClaimedAt time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats counts actions per status.
type Stats struct {
	Queued   int `json:"queued"`
	InFlight int `json:"in_flight"`
	Done     int `json:"done"`
}

func (s Stats) Total() int {
	return s.Queued + s.InFlight + s.Done
}
