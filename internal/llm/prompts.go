package llm

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

//go:embed prompts/evaluate.md
var evaluatePrompt string

//go:embed prompts/profile.md
var profilePrompt string

const noProfile = "(no structured profile available; rely on the CV text)"

func buildEvaluatePrompt(req EvaluateRequest) string {
	profile := strings.TrimSpace(req.CandidateProfile)
	if profile == "" {
		profile = noProfile
	}
	r := strings.NewReplacer(
		"{{JOB_BLUEPRINT}}", strings.TrimSpace(req.JobBlueprint),
		"{{CANDIDATE_PROFILE}}", profile,
		"{{CV_TEXT}}", strings.TrimSpace(req.CVText),
	)
	return r.Replace(evaluatePrompt)
}

func buildProfilePrompt(cvText string, chunks []domain.RetrievedChunk) string {
	r := strings.NewReplacer(
		"{{CV_TEXT}}", strings.TrimSpace(cvText),
		"{{CV_EXCERPTS}}", FormatChunks(chunks),
	)
	return r.Replace(profilePrompt)
}

// FormatChunks renders retrieved chunks as labeled excerpts for a prompt.
func FormatChunks(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s #%d]\n%s", c.SectionType, c.Index, strings.TrimSpace(c.Text))
	}
	return b.String()
}
