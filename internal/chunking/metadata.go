package chunking

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

const maxMetadataRunes = 120

var (
	companyLabel     = regexp.MustCompile(`(?im)^\s*(?:company|employer|organi[sz]ation)\s*:\s*(.+)$`)
	roleLabel        = regexp.MustCompile(`(?im)^\s*(?:role|title|position|job title)\s*:\s*(.+)$`)
	roleAtCompany    = regexp.MustCompile(`(?m)^\s*[-*•]?\s*([A-Z][^\n,|@]{1,60}?)\s+(?:at|@)\s+([A-Z][^\n,|(]{0,60}?)\s*(?:[,|(]|\s[-–—]\s|$)`)
	institutionLabel = regexp.MustCompile(`(?im)^\s*(?:institution|university|school|college)\s*:\s*(.+)$`)
	institutionName  = regexp.MustCompile(`((?:[A-Z][\w.&'-]*\s+){0,5}(?:University|College|Institute|School|Academy|Polytechnic)(?:\s+of(?:\s+[A-Z][\w.&'-]*){1,4})?)`)
	degreeLabel      = regexp.MustCompile(`(?im)^\s*degree\s*:\s*(.+)$`)
	degreeName       = regexp.MustCompile(`(?i)\b((?:bachelor|master|doctor|associate)(?:'s)?(?:\s+(?:of|in)\s+[a-z][a-z &]*[a-z]|\s+degree)|ph\.?d|mba|b\.?sc|m\.?sc|b\.?eng|m\.?eng)\b`)
	degreeTail       = regexp.MustCompile(`(?i)\s+(?:from|at)\s+.*$`)
)

// extractMetadata pulls company/role hints from experience chunks and
// institution/degree hints from education chunks. Unmatched fields stay empty.
func extractMetadata(kind domain.SectionType, text string) domain.ChunkMetadata {
	var meta domain.ChunkMetadata
	switch kind {
	case domain.SectionExperience:
		meta.Company = firstGroup(companyLabel, text)
		meta.Role = firstGroup(roleLabel, text)
		if m := roleAtCompany.FindStringSubmatch(text); m != nil {
			if meta.Role == "" {
				meta.Role = clean(m[1])
			}
			if meta.Company == "" {
				meta.Company = clean(m[2])
			}
		}
	case domain.SectionEducation:
		meta.Institution = firstGroup(institutionLabel, text)
		if meta.Institution == "" {
			meta.Institution = firstGroup(institutionName, text)
		}
		meta.Degree = firstGroup(degreeLabel, text)
		if meta.Degree == "" {
			meta.Degree = clean(degreeTail.ReplaceAllString(firstGroup(degreeName, text), ""))
		}
	}
	return meta
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return clean(m[1])
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " ,;:|-–—")
	if r := []rune(s); len(r) > maxMetadataRunes {
		s = string(r[:maxMetadataRunes])
	}
	return s
}
