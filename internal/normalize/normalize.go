// Package normalize reconciles loosely structured model output into the
// canonical evaluation record. Every function here is pure and total: any
// input, including null or malformed JSON, yields a fully populated Evaluation.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

const defaultConfidence = 0.5

// ErrNotObject is returned by Parse when the payload is valid JSON but not an object.
var ErrNotObject = errors.New("response is not a JSON object")

// ExtractJSON strips markdown code fences and any prose around the outermost
// JSON object.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "\ufeff")
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		if start := strings.Index(raw, "{"); start != -1 {
			if end := strings.LastIndex(raw, "}"); end > start {
				raw = raw[start : end+1]
			}
		}
	}
	return raw
}

// Parse decodes a model response into a JSON object. A failure here means the
// response was malformed or truncated.
func Parse(raw []byte) (map[string]any, error) {
	cleaned := ExtractJSON(string(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}

// Normalize parses raw and builds the canonical evaluation. Unparseable input
// produces the all-default evaluation.
func Normalize(raw []byte) *domain.Evaluation {
	m, err := Parse(raw)
	if err != nil {
		return FromValue(nil)
	}
	return FromValue(m)
}

// FromValue builds the canonical evaluation from an already decoded value.
// Anything other than a JSON object is treated as an empty object.
func FromValue(v any) *domain.Evaluation {
	root, _ := asObject(v)

	eval := &domain.Evaluation{
		Decision:                      parseDecision(root.str("decision", "recommendation", "verdict")),
		Confidence:                    unitScore(root.value("confidence", "confidence_score"), defaultConfidence),
		OverallMatchScore:             unitScore(root.value("overall_match_score", "match_score", "overall_score"), 0),
		Strengths:                     root.stringList("strengths", "key_strengths"),
		Concerns:                      root.stringList("concerns", "weaknesses"),
		RedFlagsFound:                 root.stringList("red_flags_found", "red_flags"),
		Summary:                       root.str("summary", "evaluation_summary", "overall_summary"),
		RecommendedInterviewQuestions: root.stringList("recommended_interview_questions", "interview_questions"),
		RequirementsAnalysis:          parseRequirements(root),
		ExperienceAnalysis:            parseExperience(root.obj("experience_analysis")),
		EducationAnalysis:             parseEducation(root.obj("education_analysis")),
		SkillsComparison:              parseSkills(root),
		ProfessionalExperience:        parseResponsibilities(root.list("professional_experience_comparison", "experience_comparison", "responsibilities_comparison")),
		GapsAnalysis:                  parseGaps(root),
		PortfolioLinks:                parsePortfolioLinks(root.list("portfolio_links", "portfolio", "links")),
	}

	issues, hasIssues := root.get("resume_quality_issues", "resume_issues", "quality_issues")
	eval.ResumeQualityIssues = parseQualityIssues(issues)

	provided := parseCriteria(root.list("criteria_matches", "criteria", "criteria_match"))
	eval.CriteriaMatches = withSynthesizedCriteria(provided, eval, hasIssues)

	if eval.OverallMatchScore == 0 {
		eval.OverallMatchScore = weightedScore(eval.CriteriaMatches)
	}

	synthesizeGaps(eval)
	return eval
}

func parseDecision(s string) domain.Decision {
	switch strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")) {
	case "yes", "y", "hire", "strong yes", "recommend", "recommended":
		return domain.DecisionYes
	case "no", "n", "reject", "rejected", "no hire", "not recommended":
		return domain.DecisionNo
	}
	return domain.DecisionMaybe
}
