package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCandidate(t *testing.T) {
	valid := func() *Candidate {
		return &Candidate{ID: "c1", OwnerID: "o1", JobID: "j1", Name: "Ada", Status: CandidateStatusUploaded}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateCandidate(valid()))
	})

	t.Run("missing job", func(t *testing.T) {
		c := valid()
		c.JobID = ""
		err := ValidateCandidate(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JobID")
	})

	t.Run("bad status", func(t *testing.T) {
		c := valid()
		c.Status = "archived"
		err := ValidateCandidate(c)
		assert.True(t, errors.Is(err, ErrInvalidCandidateStatus))
	})
}

func TestCandidateHasProfile(t *testing.T) {
	assert.False(t, (&Candidate{}).HasProfile())
	assert.False(t, (&Candidate{Profile: json.RawMessage("null")}).HasProfile())
	assert.True(t, (&Candidate{Profile: json.RawMessage(`{"name":"Ada"}`)}).HasProfile())
}

func TestJobPostingBlueprintText(t *testing.T) {
	job := &JobPosting{Title: "Backend Engineer", Description: "Go and Postgres"}
	assert.Contains(t, job.BlueprintText(), "Backend Engineer")
	assert.Contains(t, job.BlueprintText(), "Go and Postgres")

	job.Blueprint = json.RawMessage(`{"skills":["go"]}`)
	assert.Equal(t, `{"skills":["go"]}`, job.BlueprintText())
}

func TestValidateJobPosting(t *testing.T) {
	require.NoError(t, ValidateJobPosting(&JobPosting{ID: "j1", OwnerID: "o1", Title: "SRE"}))

	err := ValidateJobPosting(&JobPosting{ID: "j1", OwnerID: "o1", Title: "SRE", Blueprint: json.RawMessage("{")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blueprint")
}

func TestEvaluationIsComplete(t *testing.T) {
	criteria := []CriterionMatch{{Criterion: "SkillsMatch"}}

	tests := []struct {
		name string
		eval *Evaluation
		want bool
	}{
		{"nil", nil, false},
		{"no criteria", &Evaluation{GapsAnalysis: GapsAnalysis{MissingGaps: []string{"k8s"}}}, false},
		{"criteria without gaps or strengths", &Evaluation{CriteriaMatches: criteria}, false},
		{"criteria with gaps", &Evaluation{CriteriaMatches: criteria, GapsAnalysis: GapsAnalysis{MissingGaps: []string{"k8s"}}}, true},
		{"criteria with strengths", &Evaluation{CriteriaMatches: criteria, GapsAnalysis: GapsAnalysis{MatchingStrengths: []string{"go"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eval.IsComplete())
		})
	}
}

func TestDomainErrorIs(t *testing.T) {
	wrapped := NewDomainErrorWithCause(ErrCodeNotFound, ErrCandidateNotFound.Message, errors.New("no rows"))

	assert.True(t, errors.Is(wrapped, ErrCandidateNotFound))
	assert.False(t, errors.Is(wrapped, ErrJobPostingNotFound))
	assert.Contains(t, NewEvaluationFailedError(errors.New("bad json")).Error(), "failed to evaluate candidate: bad json")
}
