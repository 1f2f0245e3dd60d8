package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// DefaultFallbackTopK caps fallback results when the caller gives no limit.
const DefaultFallbackTopK = 5

// VectorStore is the external chunk index. Implementations may fail in any
// way; RetrievalService absorbs every error.
type VectorStore interface {
	Upsert(ctx context.Context, candidateID string, chunks []domain.Chunk) error
	Search(ctx context.Context, candidateID, query string, topK int) ([]domain.RetrievedChunk, error)
	Delete(ctx context.Context, candidateID string) error
}

// ChunkSnapshotRepository keeps the audit copy of each candidate's chunk set.
type ChunkSnapshotRepository interface {
	Save(ctx context.Context, candidateID string, chunks []domain.Chunk) error
	Get(ctx context.Context, candidateID string) ([]domain.Chunk, error)
}

// RetrievalService indexes chunk sets and retrieves the ones relevant to a
// query, degrading to raw chunk order when the vector store is unavailable.
type RetrievalService struct {
	store     VectorStore
	snapshots ChunkSnapshotRepository
	logger    *zap.Logger

	mu    sync.RWMutex
	local map[string][]domain.Chunk
}

// NewRetrievalService creates a RetrievalService. store and snapshots may be
// nil; a nil store always takes the fallback path.
func NewRetrievalService(store VectorStore, snapshots ChunkSnapshotRepository, log *zap.Logger) *RetrievalService {
	return &RetrievalService{
		store:     store,
		snapshots: snapshots,
		logger:    logger.OrNop(log),
		local:     make(map[string][]domain.Chunk),
	}
}

// Index upserts chunks into the vector store. Store failures are logged and
// leave the candidate on the fallback path.
func (s *RetrievalService) Index(ctx context.Context, candidateID string, chunks []domain.Chunk) {
	s.mu.Lock()
	s.local[candidateID] = chunks
	s.mu.Unlock()

	if s.store == nil {
		s.logger.Warn("vector store not configured, skipping index", logger.Candidate(candidateID))
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Index", telemetry.SpanAttributes{CandidateID: candidateID})
	defer span.End()

	if err := s.store.Upsert(ctx, candidateID, chunks); err != nil {
		s.logger.Warn("vector store upsert failed",
			logger.Candidate(candidateID),
			zap.Int("chunks", len(chunks)),
			zap.Error(err),
		)
		telemetry.AddBreadcrumb(ctx, "retrieval", "index failed: "+err.Error())
	}
}

// Retrieve returns up to topK chunks ranked by relevance to query. When the
// store cannot answer, the first topK local chunks are returned with
// domain.UnrankedScore. A topK of zero or less means DefaultFallbackTopK.
func (s *RetrievalService) Retrieve(ctx context.Context, candidateID, query string, topK int) []domain.RetrievedChunk {
	if topK <= 0 {
		topK = DefaultFallbackTopK
	}

	if s.store != nil {
		ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{CandidateID: candidateID})
		results, err := s.store.Search(ctx, candidateID, query, topK)
		span.End()

		switch {
		case err != nil:
			s.logger.Warn("vector search failed, using chunk order", logger.Candidate(candidateID), zap.Error(err))
			telemetry.AddBreadcrumb(ctx, "retrieval", "search failed: "+err.Error())
		case len(results) == 0:
			s.logger.Warn("vector search returned nothing, using chunk order", logger.Candidate(candidateID))
		default:
			if len(results) > topK {
				results = results[:topK]
			}
			return results
		}
	}

	return s.fallback(ctx, candidateID, topK)
}

// Forget drops the candidate from the store and the local cache.
func (s *RetrievalService) Forget(ctx context.Context, candidateID string) {
	s.mu.Lock()
	delete(s.local, candidateID)
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, candidateID); err != nil {
		s.logger.Warn("vector store delete failed", logger.Candidate(candidateID), zap.Error(err))
	}
}

func (s *RetrievalService) fallback(ctx context.Context, candidateID string, topK int) []domain.RetrievedChunk {
	chunks := s.localChunks(ctx, candidateID)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	out := make([]domain.RetrievedChunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.RetrievedChunk{Chunk: c, RelevanceScore: domain.UnrankedScore}
	}
	return out
}

func (s *RetrievalService) localChunks(ctx context.Context, candidateID string) []domain.Chunk {
	s.mu.RLock()
	chunks, ok := s.local[candidateID]
	s.mu.RUnlock()
	if ok || s.snapshots == nil {
		return chunks
	}

	chunks, err := s.snapshots.Get(ctx, candidateID)
	if err != nil {
		s.logger.Warn("chunk snapshot unavailable", logger.Candidate(candidateID), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.local[candidateID] = chunks
	s.mu.Unlock()
	return chunks
}
