package normalize

import (
	"strconv"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// defaultCriterionWeight applies to provider criteria that omit a weight.
const defaultCriterionWeight = 0.25

func parseCriteria(items []any) []domain.CriterionMatch {
	out := make([]domain.CriterionMatch, 0, len(items))
	for i, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		name := m.str("criterion", "name", "criteria", "dimension", "title")
		if name == "" {
			name = "Criterion " + strconv.Itoa(i+1)
		}
		score := unitScore(m.value("score", "match_score", "rating"), 0)
		matched := score >= domain.MatchedThreshold
		if v, ok := m.get("matched", "match", "met"); ok {
			matched = coerceBool(v)
		}
		out = append(out, domain.CriterionMatch{
			Criterion: name,
			Weight:    unitWeight(m.value("weight", "importance"), defaultCriterionWeight),
			Score:     score,
			Matched:   matched,
			Evidence:  m.stringList("evidence", "supporting_evidence"),
			Reasoning: m.str("reasoning", "explanation", "rationale", "notes"),
		})
	}
	return out
}

func parseRequirements(root object) domain.RequirementsAnalysis {
	ra := domain.RequirementsAnalysis{
		MustHave:   []domain.RequirementCheck{},
		NiceToHave: []domain.RequirementCheck{},
	}

	v, _ := root.get("requirements_analysis", "requirements")
	switch val := v.(type) {
	case []any:
		ra.MustHave = parseRequirementChecks(val)
	case map[string]any:
		o := object(val)
		ra.MustHave = parseRequirementChecks(o.list("must_have", "must_haves", "required", "mandatory"))
		ra.NiceToHave = parseRequirementChecks(o.list("nice_to_have", "nice_to_haves", "preferred", "optional"))
	}
	return ra
}

func parseRequirementChecks(items []any) []domain.RequirementCheck {
	out := make([]domain.RequirementCheck, 0, len(items))
	for _, item := range items {
		if m, ok := asObject(item); ok {
			req := m.str("requirement", "name", "text", "description")
			if req == "" {
				continue
			}
			out = append(out, domain.RequirementCheck{
				Requirement: req,
				Met:         m.boolean("met", "matched", "satisfied", "meets"),
				Evidence:    itemTextOrJoined(m, "evidence", "details"),
			})
			continue
		}
		if s := coerceString(item); s != "" {
			out = append(out, domain.RequirementCheck{Requirement: s})
		}
	}
	return out
}

func parseExperience(o object) domain.ExperienceAnalysis {
	return domain.ExperienceAnalysis{
		RequiredYears:  nonNegative(o.float("required_years", "years_required", "min_years")),
		CandidateYears: nonNegative(o.float("candidate_years", "years_of_experience", "total_years", "years")),
		Matches:        o.boolean("matches", "match", "meets_requirement", "meets_requirements"),
		RelevantRoles:  o.stringList("relevant_roles", "roles"),
		Summary:        o.str("summary", "details", "assessment"),
	}
}

func parseEducation(o object) domain.EducationAnalysis {
	return domain.EducationAnalysis{
		RequiredLevel:  o.str("required_level", "required", "required_degree"),
		CandidateLevel: o.str("candidate_level", "candidate", "candidate_degree", "highest_degree"),
		Matches:        o.boolean("matches", "match", "meets_requirement", "meets_requirements"),
		Details:        o.str("details", "summary", "assessment"),
	}
}

// parseSkills accepts a list of skill entries, or an object splitting skills
// into matched and missing lists.
func parseSkills(root object) []domain.SkillComparison {
	out := []domain.SkillComparison{}
	v, _ := root.get("skills_comparison", "skills_analysis", "skills_match")
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if m, ok := asObject(item); ok {
				skill := m.str("skill", "name", "requirement")
				if skill == "" {
					continue
				}
				required := true
				if r, ok := m.get("required", "is_required", "mandatory"); ok {
					required = coerceBool(r)
				}
				out = append(out, domain.SkillComparison{
					Skill:    skill,
					Required: required,
					Matched:  m.boolean("matched", "match", "candidate_has", "has", "present"),
					Evidence: itemTextOrJoined(m, "evidence", "details"),
				})
				continue
			}
			if s := coerceString(item); s != "" {
				out = append(out, domain.SkillComparison{Skill: s, Required: true})
			}
		}
	case map[string]any:
		o := object(val)
		for _, s := range o.stringList("matched", "matching", "present") {
			out = append(out, domain.SkillComparison{Skill: s, Required: true, Matched: true})
		}
		for _, s := range o.stringList("missing", "absent", "unmatched") {
			out = append(out, domain.SkillComparison{Skill: s, Required: true})
		}
	}
	return out
}

func parseResponsibilities(items []any) []domain.ExperienceComparison {
	out := make([]domain.ExperienceComparison, 0, len(items))
	for _, item := range items {
		if m, ok := asObject(item); ok {
			resp := m.str("responsibility", "requirement", "area", "name", "description")
			if resp == "" {
				continue
			}
			out = append(out, domain.ExperienceComparison{
				Responsibility: resp,
				Matched:        m.boolean("matched", "match", "met"),
				Evidence:       itemTextOrJoined(m, "evidence", "details"),
			})
			continue
		}
		if s := coerceString(item); s != "" {
			out = append(out, domain.ExperienceComparison{Responsibility: s})
		}
	}
	return out
}

// parseGaps reads the gaps section, falling back to top-level keys when the
// model flattened it.
func parseGaps(root object) domain.GapsAnalysis {
	g := root.obj("gaps_analysis", "gap_analysis", "gaps")
	if g == nil {
		g = root
	}
	return domain.GapsAnalysis{
		MissingGaps:       g.stringList("missing_gaps", "gaps", "missing"),
		MatchingStrengths: g.stringList("matching_strengths", "matches"),
		DevelopmentAreas:  g.stringList("development_areas", "areas_for_development"),
	}
}

func parseQualityIssues(v any) []domain.QualityIssue {
	out := []domain.QualityIssue{}
	items, _ := v.([]any)
	for _, item := range items {
		if m, ok := asObject(item); ok {
			issue := m.str("issue", "description", "text", "problem")
			if issue == "" {
				continue
			}
			out = append(out, domain.QualityIssue{
				Issue:      issue,
				Severity:   m.str("severity", "level"),
				Suggestion: m.str("suggestion", "fix", "recommendation"),
			})
			continue
		}
		if s := coerceString(item); s != "" {
			out = append(out, domain.QualityIssue{Issue: s})
		}
	}
	return out
}

func parsePortfolioLinks(items []any) []domain.PortfolioLink {
	out := make([]domain.PortfolioLink, 0, len(items))
	for _, item := range items {
		if m, ok := asObject(item); ok {
			url := m.str("url", "link", "href")
			if url == "" {
				continue
			}
			out = append(out, domain.PortfolioLink{URL: url, Label: m.str("label", "title", "name", "type")})
			continue
		}
		if s := coerceString(item); s != "" {
			out = append(out, domain.PortfolioLink{URL: s})
		}
	}
	return out
}

// itemTextOrJoined reads a field that should be a string but is sometimes a list.
func itemTextOrJoined(o object, key string, aliases ...string) string {
	parts := o.stringList(key, aliases...)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "; " + p
	}
	return joined
}
