package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// Segmenter splits CV text into chunks.
type Segmenter interface {
	ChunkCV(rawText, candidateID string) []domain.Chunk
}

// Indexer is the write side of RetrievalService.
type Indexer interface {
	Index(ctx context.Context, candidateID string, chunks []domain.Chunk)
}

// IndexingService turns a stored CV into an indexed chunk set. The background
// worker calls it for every index job.
type IndexingService struct {
	candidates CandidateRepository
	snapshots  ChunkSnapshotRepository
	segmenter  Segmenter
	indexer    Indexer
	archive    Archiver
	logger     *zap.Logger
}

// NewIndexingService creates an IndexingService. archive may be nil.
func NewIndexingService(
	candidates CandidateRepository,
	snapshots ChunkSnapshotRepository,
	segmenter Segmenter,
	indexer Indexer,
	archive Archiver,
	log *zap.Logger,
) *IndexingService {
	return &IndexingService{
		candidates: candidates,
		snapshots:  snapshots,
		segmenter:  segmenter,
		indexer:    indexer,
		archive:    archive,
		logger:     logger.OrNop(log),
	}
}

// IndexCandidate segments the candidate's CV, stores the chunk snapshot and
// pushes the chunks to the vector index. Only snapshot and status writes can
// fail the call; index and archive problems are logged.
func (s *IndexingService) IndexCandidate(ctx context.Context, candidateID string) error {
	ctx, span := telemetry.StartSpan(ctx, "IndexingService.IndexCandidate", telemetry.SpanAttributes{
		CandidateID: candidateID,
		Operation:   "index",
	})
	defer span.End()

	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return err
	}

	chunks := s.segmenter.ChunkCV(candidate.CVText, candidate.ID)
	if err := s.snapshots.Save(ctx, candidate.ID, chunks); err != nil {
		span.SetError(err)
		return fmt.Errorf("save chunk snapshot: %w", err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("chunks/%s.json", candidate.ID)
		if err := s.archive.PutJSON(ctx, key, chunks); err != nil {
			s.logger.Warn("archive chunk set", logger.Candidate(candidate.ID), zap.Error(err))
		}
	}

	s.indexer.Index(ctx, candidate.ID, chunks)

	if candidate.Status != domain.CandidateStatusEvaluated {
		if err := s.candidates.UpdateStatus(ctx, candidate.ID, domain.CandidateStatusIndexed); err != nil {
			return fmt.Errorf("mark candidate indexed: %w", err)
		}
	}

	s.logger.Info("candidate indexed", logger.Candidate(candidate.ID), zap.Int("chunks", len(chunks)))
	return nil
}

// MarkFailed records that indexing gave up on the candidate.
func (s *IndexingService) MarkFailed(ctx context.Context, candidateID string) error {
	return s.candidates.UpdateStatus(ctx, candidateID, domain.CandidateStatusFailed)
}
