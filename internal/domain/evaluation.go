package domain

import "time"

// Decision is the hiring recommendation of an evaluation.
type Decision string

const (
	DecisionYes   Decision = "yes"
	DecisionMaybe Decision = "maybe"
	DecisionNo    Decision = "no"
)

// MatchedThreshold is the score at or above which a synthesized criterion counts as matched.
const MatchedThreshold = 0.7

// MinCriteria is the minimum number of criteria every evaluation carries.
const MinCriteria = 4

// CriterionMatch is one weighted, scored dimension of fit.
type CriterionMatch struct {
	Criterion string   `json:"criterion"`
	Weight    float64  `json:"weight"`
	Score     float64  `json:"score"`
	Matched   bool     `json:"matched"`
	Evidence  []string `json:"evidence"`
	Reasoning string   `json:"reasoning"`
}

type RequirementCheck struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
	Evidence    string `json:"evidence"`
}

type RequirementsAnalysis struct {
	MustHave   []RequirementCheck `json:"must_have"`
	NiceToHave []RequirementCheck `json:"nice_to_have"`
}

type ExperienceAnalysis struct {
	RequiredYears  float64  `json:"required_years"`
	CandidateYears float64  `json:"candidate_years"`
	Matches        bool     `json:"matches"`
	RelevantRoles  []string `json:"relevant_roles"`
	Summary        string   `json:"summary"`
}

type EducationAnalysis struct {
	RequiredLevel  string `json:"required_level"`
	CandidateLevel string `json:"candidate_level"`
	Matches        bool   `json:"matches"`
	Details        string `json:"details"`
}

type SkillComparison struct {
	Skill    string `json:"skill"`
	Required bool   `json:"required"`
	Matched  bool   `json:"matched"`
	Evidence string `json:"evidence"`
}

type ExperienceComparison struct {
	Responsibility string `json:"responsibility"`
	Matched        bool   `json:"matched"`
	Evidence       string `json:"evidence"`
}

type GapsAnalysis struct {
	MissingGaps       []string `json:"missing_gaps"`
	MatchingStrengths []string `json:"matching_strengths"`
	DevelopmentAreas  []string `json:"development_areas"`
}

type QualityIssue struct {
	Issue      string `json:"issue"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
}

type PortfolioLink struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Evaluation is the canonical, fully populated evaluation record. Every slice is
// non-nil so the JSON form never carries null arrays.
type Evaluation struct {
	Decision                      Decision               `json:"decision"`
	Confidence                    float64                `json:"confidence"`
	OverallMatchScore             float64                `json:"overall_match_score"`
	CriteriaMatches               []CriterionMatch       `json:"criteria_matches"`
	Strengths                     []string               `json:"strengths"`
	Concerns                      []string               `json:"concerns"`
	RedFlagsFound                 []string               `json:"red_flags_found"`
	Summary                       string                 `json:"summary"`
	RecommendedInterviewQuestions []string               `json:"recommended_interview_questions"`
	RequirementsAnalysis          RequirementsAnalysis   `json:"requirements_analysis"`
	ExperienceAnalysis            ExperienceAnalysis     `json:"experience_analysis"`
	EducationAnalysis             EducationAnalysis      `json:"education_analysis"`
	SkillsComparison              []SkillComparison      `json:"skills_comparison"`
	ProfessionalExperience        []ExperienceComparison `json:"professional_experience_comparison"`
	GapsAnalysis                  GapsAnalysis           `json:"gaps_analysis"`
	ResumeQualityIssues           []QualityIssue         `json:"resume_quality_issues"`
	PortfolioLinks                []PortfolioLink        `json:"portfolio_links"`
}

// IsComplete reports whether a stored evaluation can be served without re-running.
// An evaluation with no criteria, or with neither gaps nor strengths, is treated
// as incomplete. A genuinely gap-free and strength-free candidate is therefore
// re-evaluated on every request; this is a known ambiguity kept as-is.
func (e *Evaluation) IsComplete() bool {
	if e == nil || len(e.CriteriaMatches) == 0 {
		return false
	}
	return len(e.GapsAnalysis.MissingGaps) > 0 || len(e.GapsAnalysis.MatchingStrengths) > 0
}

// EvaluationRecord is a stored evaluation. There is at most one per candidate;
// a re-evaluation replaces it wholesale.
type EvaluationRecord struct {
	ID          string
	CandidateID string
	OwnerID     string
	Result      *Evaluation
	Model       string
	CreatedAt   time.Time
}
