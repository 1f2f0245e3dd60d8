package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// Names of the locally synthesized criteria.
const (
	CriterionSkillsMatch           = "SkillsMatch"
	CriterionResponsibilitiesMatch = "ResponsibilitiesMatch"
	CriterionExperienceYears       = "ExperienceYears"
	CriterionResumeQuality         = "ResumeQuality"
)

// Synthesis weights. These are a policy choice carried over for compatibility
// with existing stored evaluations; no derivation backs them.
const (
	WeightSkillsMatch           = 0.35
	WeightResponsibilitiesMatch = 0.35
	WeightExperienceYears       = 0.2
	WeightResumeQuality         = 0.1
)

// resumeQualityIssueCap is the issue count at which ResumeQuality bottoms out.
const resumeQualityIssueCap = 10

// withSynthesizedCriteria tops provided up to domain.MinCriteria using criteria
// derived from the other sections. Names already supplied are never duplicated.
func withSynthesizedCriteria(provided []domain.CriterionMatch, eval *domain.Evaluation, hasQualitySection bool) []domain.CriterionMatch {
	if len(provided) >= domain.MinCriteria {
		return provided
	}

	existing := make(map[string]struct{}, len(provided))
	for _, c := range provided {
		existing[strings.ToLower(c.Criterion)] = struct{}{}
	}

	out := append(make([]domain.CriterionMatch, 0, domain.MinCriteria+len(provided)), provided...)
	for _, c := range synthesizeCriteria(eval, hasQualitySection) {
		if _, dup := existing[strings.ToLower(c.Criterion)]; dup {
			continue
		}
		out = append(out, c)
	}

	if len(out) > domain.MinCriteria {
		out = out[:domain.MinCriteria]
	}
	return out
}

func synthesizeCriteria(eval *domain.Evaluation, hasQualitySection bool) []domain.CriterionMatch {
	skillsMatched, skillNames := 0, []string{}
	for _, s := range eval.SkillsComparison {
		if s.Matched {
			skillsMatched++
			skillNames = append(skillNames, s.Skill)
		}
	}

	respMatched, respNames := 0, []string{}
	for _, r := range eval.ProfessionalExperience {
		if r.Matched {
			respMatched++
			respNames = append(respNames, r.Responsibility)
		}
	}

	exp := eval.ExperienceAnalysis
	expScore, expReason := 0.0, "no experience data reported"
	switch {
	case exp.Matches:
		expScore, expReason = 1.0, "experience requirement met"
	case exp.CandidateYears > 0:
		expScore, expReason = 0.5, fmt.Sprintf("%s years reported without a confirmed match", formatYears(exp.CandidateYears))
	}

	issues := len(eval.ResumeQualityIssues)
	qualityScore, qualityReason := 0.0, "no resume quality data reported"
	if hasQualitySection {
		qualityScore = 1 - math.Min(1, float64(issues)/resumeQualityIssueCap)
		qualityReason = fmt.Sprintf("%d resume quality issues found", issues)
	}
	qualityEvidence := make([]string, 0, issues)
	for _, q := range eval.ResumeQualityIssues {
		qualityEvidence = append(qualityEvidence, q.Issue)
	}

	expEvidence := []string{}
	if exp.Summary != "" {
		expEvidence = append(expEvidence, exp.Summary)
	}

	return []domain.CriterionMatch{
		synthesized(CriterionSkillsMatch, WeightSkillsMatch, ratio(skillsMatched, len(eval.SkillsComparison)),
			skillNames, ratioText(skillsMatched, len(eval.SkillsComparison), "skills")),
		synthesized(CriterionResponsibilitiesMatch, WeightResponsibilitiesMatch, ratio(respMatched, len(eval.ProfessionalExperience)),
			respNames, ratioText(respMatched, len(eval.ProfessionalExperience), "responsibilities")),
		synthesized(CriterionExperienceYears, WeightExperienceYears, expScore, expEvidence, expReason),
		synthesized(CriterionResumeQuality, WeightResumeQuality, qualityScore, qualityEvidence, qualityReason),
	}
}

func synthesized(name string, weight, score float64, evidence []string, reasoning string) domain.CriterionMatch {
	score = clamp01(score)
	return domain.CriterionMatch{
		Criterion: name,
		Weight:    weight,
		Score:     score,
		Matched:   score >= domain.MatchedThreshold,
		Evidence:  evidence,
		Reasoning: reasoning,
	}
}

func ratio(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// weightedScore is Σ weight·score / Σ weight, or 0 when no weight is set.
func weightedScore(criteria []domain.CriterionMatch) float64 {
	var sum, weights float64
	for _, c := range criteria {
		sum += c.Weight * c.Score
		weights += c.Weight
	}
	if weights == 0 {
		return 0
	}
	return clamp01(sum / weights)
}

// synthesizeGaps fills empty gap lists from the other sections: missing gaps
// from unmet must-have requirements and unmatched required skills, matching
// strengths from matched skills and met requirements.
func synthesizeGaps(eval *domain.Evaluation) {
	g := &eval.GapsAnalysis

	if len(g.MissingGaps) == 0 {
		var gaps []string
		for _, r := range eval.RequirementsAnalysis.MustHave {
			if !r.Met {
				gaps = append(gaps, r.Requirement)
			}
		}
		for _, s := range eval.SkillsComparison {
			if s.Required && !s.Matched {
				gaps = append(gaps, s.Skill)
			}
		}
		g.MissingGaps = dedupe(gaps)
	}

	if len(g.MatchingStrengths) == 0 {
		var strengths []string
		for _, s := range eval.SkillsComparison {
			if s.Matched {
				strengths = append(strengths, s.Skill)
			}
		}
		for _, r := range eval.RequirementsAnalysis.MustHave {
			if r.Met {
				strengths = append(strengths, r.Requirement)
			}
		}
		g.MatchingStrengths = dedupe(strengths)
	}
}

func formatYears(y float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", y), "0"), ".")
}
