// Package chunking splits CV text into labeled, overlapping retrieval chunks.
package chunking

import (
	"strings"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// Config controls section windowing. All sizes are in runes.
type Config struct {
	TargetChars  int
	OverlapChars int
	MinChars     int
}

// DefaultConfig returns the sizes used in production.
func DefaultConfig() Config {
	return Config{
		TargetChars:  800,
		OverlapChars: 100,
		MinChars:     200,
	}
}

// minSectionChars is the size under which a detected section is dropped as noise.
const minSectionChars = 50

// Tolerance is how far past TargetChars a non-final chunk may run, either when
// a short chunk is merged forward or when a small section tail is absorbed.
func (c Config) Tolerance() int {
	return c.TargetChars / 10
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.TargetChars <= 0 {
		c.TargetChars = d.TargetChars
	}
	if c.OverlapChars < 0 || c.OverlapChars >= c.TargetChars/2 {
		c.OverlapChars = min(d.OverlapChars, c.TargetChars/4)
	}
	if c.MinChars <= 0 || c.MinChars > c.TargetChars {
		c.MinChars = min(d.MinChars, c.TargetChars/2)
	}
	return c
}

// Segmenter is stateless and safe for concurrent use.
type Segmenter struct {
	cfg Config
}

func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg.withDefaults()}
}

func (s *Segmenter) Config() Config {
	return s.cfg
}

// ChunkCV splits rawText into chunks tagged with their CV section. Offsets refer
// to the text after line endings are normalized to "\n". It never fails: text
// without recognizable sections is windowed as a single "other" section, and
// empty input yields an empty slice.
func (s *Segmenter) ChunkCV(rawText, candidateID string) []domain.Chunk {
	text := []rune(NormalizeLineEndings(rawText))

	chunks := make([]domain.Chunk, 0, 8)
	for _, sec := range detectSections(text) {
		if trimmedLen(text, sec.start, sec.end) < minSectionChars {
			continue
		}
		chunks = s.appendWindows(chunks, text, sec, candidateID)
	}

	if len(chunks) == 0 {
		chunks = s.appendWindows(chunks, text, section{kind: domain.SectionOther, start: 0, end: len(text)}, candidateID)
	}

	return chunks
}

func (s *Segmenter) appendWindows(chunks []domain.Chunk, text []rune, sec section, candidateID string) []domain.Chunk {
	for _, sp := range window(text, sec.start, sec.end, s.cfg) {
		body := string(text[sp.start:sp.end])
		chunks = append(chunks, domain.Chunk{
			CandidateID: candidateID,
			Text:        body,
			Index:       len(chunks),
			SectionType: sec.kind,
			StartChar:   sp.start,
			EndChar:     sp.end,
			Metadata:    extractMetadata(sec.kind, body),
		})
	}
	return chunks
}

// NormalizeLineEndings converts CRLF and lone CR to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
