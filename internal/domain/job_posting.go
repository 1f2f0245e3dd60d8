package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobPosting is an open position. Blueprint holds the structured requirements
// handed to the language model; when empty the description is used instead.
type JobPosting struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Blueprint   json.RawMessage
	CreatedAt   time.Time
}

// BlueprintText returns the requirements text sent with an evaluation request.
func (j *JobPosting) BlueprintText() string {
	if len(j.Blueprint) > 0 && string(j.Blueprint) != "null" {
		return string(j.Blueprint)
	}
	return fmt.Sprintf("Title: %s\n\n%s", j.Title, j.Description)
}

func ValidateJobPosting(j *JobPosting) error {
	if j == nil {
		return fmt.Errorf("job posting cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("job posting ID is required")
	}
	if j.OwnerID == "" {
		return fmt.Errorf("job posting OwnerID is required")
	}
	if j.Title == "" {
		return fmt.Errorf("job posting Title is required")
	}
	if len(j.Blueprint) > 0 && !json.Valid(j.Blueprint) {
		return fmt.Errorf("job posting Blueprint must be valid JSON")
	}
	return nil
}
