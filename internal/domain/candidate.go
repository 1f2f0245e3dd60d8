package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CandidateStatus tracks a candidate through the evaluation pipeline
type CandidateStatus string

const (
	CandidateStatusUploaded  CandidateStatus = "uploaded"
	CandidateStatusIndexed   CandidateStatus = "indexed"
	CandidateStatusEvaluated CandidateStatus = "evaluated"
	CandidateStatusFailed    CandidateStatus = "failed"
)

// Candidate is an applicant to a job posting together with their CV text.
type Candidate struct {
	ID        string
	OwnerID   string
	JobID     string
	Name      string
	Email     string
	CVText    string
	Profile   json.RawMessage
	Status    CandidateStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasProfile reports whether a parsed profile is stored.
func (c *Candidate) HasProfile() bool {
	return len(c.Profile) > 0 && string(c.Profile) != "null"
}

// ValidateCandidate validates a Candidate instance
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("candidate cannot be nil")
	}
	if c.ID == "" {
		return fmt.Errorf("candidate ID is required")
	}
	if c.OwnerID == "" {
		return fmt.Errorf("candidate OwnerID is required")
	}
	if c.JobID == "" {
		return fmt.Errorf("candidate JobID is required")
	}
	if c.Name == "" {
		return fmt.Errorf("candidate Name is required")
	}
	if !IsValidCandidateStatus(c.Status) {
		return ErrInvalidCandidateStatus
	}
	return nil
}

func IsValidCandidateStatus(s CandidateStatus) bool {
	switch s {
	case CandidateStatusUploaded, CandidateStatusIndexed,
		CandidateStatusEvaluated, CandidateStatusFailed:
		return true
	}
	return false
}
