package domain

// SectionType labels the CV section a chunk was cut from.
type SectionType string

const (
	SectionExperience SectionType = "experience"
	SectionEducation  SectionType = "education"
	SectionSkills     SectionType = "skills"
	SectionSummary    SectionType = "summary"
	SectionContact    SectionType = "contact"
	SectionOther      SectionType = "other"
)

// IsValid reports whether s is one of the known section types.
func (s SectionType) IsValid() bool {
	switch s {
	case SectionExperience, SectionEducation, SectionSkills,
		SectionSummary, SectionContact, SectionOther:
		return true
	}
	return false
}

// ChunkMetadata holds hints pulled out of a chunk's text. Any field may be empty.
type ChunkMetadata struct {
	Company     string `json:"company,omitempty"`
	Role        string `json:"role,omitempty"`
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
}

// IsZero reports whether no hint was extracted.
func (m ChunkMetadata) IsZero() bool {
	return m == ChunkMetadata{}
}

// Chunk is a bounded span of CV text used as a retrieval unit.
// StartChar and EndChar are rune offsets into the line-ending-normalized CV text.
type Chunk struct {
	CandidateID string        `json:"candidate_id"`
	Text        string        `json:"text"`
	Index       int           `json:"index"`
	SectionType SectionType   `json:"section_type"`
	StartChar   int           `json:"start_char"`
	EndChar     int           `json:"end_char"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.EndChar - c.StartChar
}

// RetrievedChunk is a chunk paired with its relevance to a query.
type RetrievedChunk struct {
	Chunk
	RelevanceScore float64 `json:"relevance_score"`
}

// UnrankedScore marks a chunk returned without a real ranking.
const UnrankedScore = 1.0
