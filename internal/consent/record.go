// Package consent defines consent records, the ledger snapshot format and
// the catalogue of clinical data categories offered for consent.
package consent

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/common"
)

// Status is the lifecycle state of a Record.
type Status string

const (
	StatusGranted Status = "granted"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusGranted, StatusRevoked, StatusExpired:
		return true
	}
	return false
}

// Record is one grant of permission to share a data category with an
// organization.
type Record struct {
	ID             string     `json:"id"`
	DataType       string     `json:"dataType"`
	Purpose        string     `json:"purpose"`
	Organization   string     `json:"organization"`
	DateGranted    time.Time  `json:"dateGranted"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Status         Status     `json:"status"`
}

// Active reports whether the record currently grants access.
func (r Record) Active() bool {
	return r.Status == StatusGranted
}

// Overdue reports whether a granted record has reached its expiration date.
func (r Record) Overdue(now time.Time) bool {
	return r.Status == StatusGranted && r.ExpirationDate != nil && !r.ExpirationDate.After(now)
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r.ExpirationDate != nil {
		exp := *r.ExpirationDate
		r.ExpirationDate = &exp
	}
	return r
}

// Request holds the caller-supplied fields of a new consent.
type Request struct {
	DataType       string
	Purpose        string
	Organization   string
	ExpirationDate *time.Time
}

// Validate checks the request against the moment it would be granted.
func (req Request) Validate(grantedAt time.Time) error {
	if strings.TrimSpace(req.DataType) == "" {
		return fmt.Errorf("%w: data type is required", common.ErrInvalidConsent)
	}
	if strings.TrimSpace(req.Organization) == "" {
		return fmt.Errorf("%w: organization is required", common.ErrInvalidConsent)
	}
	if req.ExpirationDate != nil && !req.ExpirationDate.After(grantedAt) {
		return fmt.Errorf("%w: expiration date must be in the future", common.ErrInvalidConsent)
	}
	return nil
}

// NewRecord builds a granted record from req. Timestamps are normalised to
// UTC without a monotonic reading so they survive a persistence round trip
// unchanged.
func NewRecord(id string, req Request, grantedAt time.Time) Record {
	r := Record{
		ID:           id,
		DataType:     req.DataType,
		Purpose:      req.Purpose,
		Organization: req.Organization,
		DateGranted:  normalize(grantedAt),
		Status:       StatusGranted,
	}
	if req.ExpirationDate != nil {
		exp := normalize(*req.ExpirationDate)
		r.ExpirationDate = &exp
	}
	return r
}

func normalize(t time.Time) time.Time {
	return t.UTC().Round(0)
}

func (r Record) normalized() Record {
	r.DateGranted = normalize(r.DateGranted)
	if r.ExpirationDate != nil {
		exp := normalize(*r.ExpirationDate)
		r.ExpirationDate = &exp
	}
	return r
}

// Active filters records down to the granted ones, keeping order.
func Active(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Active() {
			out = append(out, r.Clone())
		}
	}
	return out
}

// CloneAll deep-copies a ledger.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
