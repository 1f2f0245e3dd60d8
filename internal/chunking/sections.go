package chunking

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type section struct {
	kind  domain.SectionType
	start int
	end   int
}

// maxHeaderRunes bounds how long a line may be and still count as a header.
const maxHeaderRunes = 60

var headerPatterns = []struct {
	kind domain.SectionType
	re   *regexp.Regexp
}{
	{domain.SectionContact, regexp.MustCompile(`(?i)^(contact|contacts|contact (information|info|details)|personal (information|details|info))$`)},
	{domain.SectionSummary, regexp.MustCompile(`(?i)^((professional |career |executive )?(summary|profile|overview)|about( me)?|(career )?objective|profile summary)$`)},
	{domain.SectionExperience, regexp.MustCompile(`(?i)^((work|professional|relevant|employment|career) (experience|history)|experience|employment|work|positions held)$`)},
	{domain.SectionEducation, regexp.MustCompile(`(?i)^(education|educational background|academic (background|history|qualifications)|education (and|&) (training|certifications)|qualifications|certifications)$`)},
	{domain.SectionSkills, regexp.MustCompile(`(?i)^((technical|core|key|professional|relevant) (skills|competencies)|skills( (and|&) (tools|technologies|expertise))?|competencies|technologies|tech stack|tools)$`)},
}

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
)

// headerKind reports the section a line introduces. Headers may be decorated
// with markdown markers, rules or a trailing colon ("## Experience:", "SKILLS").
func headerKind(line string) (domain.SectionType, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len([]rune(trimmed)) > maxHeaderRunes {
		return "", false
	}
	label := strings.TrimFunc(trimmed, func(r rune) bool {
		return r == ':' || r == '#' || r == '*' || r == '_' || r == '=' || r == '-' || r == '|' || unicode.IsSpace(r)
	})
	label = strings.Join(strings.Fields(label), " ")
	for _, p := range headerPatterns {
		if p.re.MatchString(label) {
			return p.kind, true
		}
	}
	return "", false
}

// detectSections scans text line by line. Each header opens a section whose body
// runs to the next header. Text before the first header becomes contact when it
// carries an email or phone number and other otherwise. Without any header the
// whole text is one "other" section.
func detectSections(text []rune) []section {
	type header struct {
		kind      domain.SectionType
		lineStart int
		bodyStart int
	}

	var headers []header
	lineStart := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		if kind, ok := headerKind(string(text[lineStart:i])); ok {
			bodyStart := i
			if i < len(text) {
				bodyStart = i + 1
			}
			headers = append(headers, header{kind: kind, lineStart: lineStart, bodyStart: bodyStart})
		}
		lineStart = i + 1
	}

	if len(headers) == 0 {
		return []section{{kind: domain.SectionOther, start: 0, end: len(text)}}
	}

	sections := make([]section, 0, len(headers)+1)
	if preamble := headers[0].lineStart; trimmedLen(text, 0, preamble) > 0 {
		kind := domain.SectionOther
		body := string(text[:preamble])
		if emailPattern.MatchString(body) || phonePattern.MatchString(body) {
			kind = domain.SectionContact
		}
		sections = append(sections, section{kind: kind, start: 0, end: preamble})
	}

	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].lineStart
		}
		sections = append(sections, section{kind: h.kind, start: h.bodyStart, end: end})
	}
	return sections
}

func trimmedLen(text []rune, start, end int) int {
	start, end = trimSpan(text, start, end)
	return end - start
}

// trimSpan narrows [start,end) so it neither starts nor ends with whitespace.
func trimSpan(text []rune, start, end int) (int, int) {
	for start < end && unicode.IsSpace(text[start]) {
		start++
	}
	for end > start && unicode.IsSpace(text[end-1]) {
		end--
	}
	return start, end
}
