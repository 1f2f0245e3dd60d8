package vectorstore

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[+#.][\p{L}\p{N}+#]*)?`)

type memoryEntry struct {
	chunk domain.Chunk
	terms map[string]float64
	norm  float64
}

// Memory is an in-process term-frequency cosine store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]memoryEntry)}
}

func (m *Memory) Upsert(_ context.Context, candidateID string, chunks []domain.Chunk) error {
	entries := make([]memoryEntry, 0, len(chunks))
	for _, c := range chunks {
		terms := termFrequencies(c.Text)
		entries = append(entries, memoryEntry{chunk: c, terms: terms, norm: norm(terms)})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(entries) == 0 {
		delete(m.entries, candidateID)
		return nil
	}
	m.entries[candidateID] = entries
	return nil
}

func (m *Memory) Search(_ context.Context, candidateID, query string, topK int) ([]domain.RetrievedChunk, error) {
	m.mu.RLock()
	entries := m.entries[candidateID]
	m.mu.RUnlock()

	if len(entries) == 0 {
		return nil, domain.ErrIndexNotFound
	}

	q := termFrequencies(query)
	qNorm := norm(q)

	results := make([]domain.RetrievedChunk, 0, len(entries))
	for _, e := range entries {
		results = append(results, domain.RetrievedChunk{
			Chunk:          e.chunk,
			RelevanceScore: cosine(q, qNorm, e.terms, e.norm),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (m *Memory) Delete(_ context.Context, candidateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, candidateID)
	return nil
}

func termFrequencies(text string) map[string]float64 {
	tf := make(map[string]float64)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if tok = strings.TrimRight(tok, "."); tok != "" {
			tf[tok]++
		}
	}
	return tf
}

func norm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func cosine(a map[string]float64, aNorm float64, b map[string]float64, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, x := range a {
		dot += x * b[term]
	}
	return clampUnit(dot / (aNorm * bNorm))
}
