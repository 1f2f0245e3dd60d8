package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type fixedSegmenter struct {
	chunks []domain.Chunk
	gotCV  string
}

func (s *fixedSegmenter) ChunkCV(rawText, _ string) []domain.Chunk {
	s.gotCV = rawText
	return s.chunks
}

type recordingIndexer struct {
	candidateID string
	chunks      []domain.Chunk
}

func (r *recordingIndexer) Index(_ context.Context, candidateID string, chunks []domain.Chunk) {
	r.candidateID = candidateID
	r.chunks = chunks
}

type mapArchive struct {
	objects map[string]any
	err     error
}

func (a *mapArchive) PutJSON(_ context.Context, key string, v any) error {
	if a.err != nil {
		return a.err
	}
	if a.objects == nil {
		a.objects = make(map[string]any)
	}
	a.objects[key] = v
	return nil
}

func TestIndexingService_IndexCandidate(t *testing.T) {
	candidates := new(MockCandidateRepository)
	snapshots := new(MockSnapshotRepository)
	seg := &fixedSegmenter{chunks: sampleChunks(3)}
	idx := &recordingIndexer{}
	archive := &mapArchive{}

	candidates.On("GetByID", mock.Anything, "cand-1").Return(&domain.Candidate{
		ID: "cand-1", CVText: "the cv", Status: domain.CandidateStatusUploaded,
	}, nil)
	snapshots.On("Save", mock.Anything, "cand-1", seg.chunks).Return(nil)
	candidates.On("UpdateStatus", mock.Anything, "cand-1", domain.CandidateStatusIndexed).Return(nil)

	svc := NewIndexingService(candidates, snapshots, seg, idx, archive, zap.NewNop())
	require.NoError(t, svc.IndexCandidate(context.Background(), "cand-1"))

	assert.Equal(t, "the cv", seg.gotCV)
	assert.Equal(t, "cand-1", idx.candidateID)
	assert.Len(t, idx.chunks, 3)
	assert.Contains(t, archive.objects, "chunks/cand-1.json")
	candidates.AssertExpectations(t)
	snapshots.AssertExpectations(t)
}

func TestIndexingService_KeepsEvaluatedStatus(t *testing.T) {
	candidates := new(MockCandidateRepository)
	snapshots := new(MockSnapshotRepository)
	candidates.On("GetByID", mock.Anything, "cand-1").Return(&domain.Candidate{
		ID: "cand-1", CVText: "cv", Status: domain.CandidateStatusEvaluated,
	}, nil)
	snapshots.On("Save", mock.Anything, "cand-1", mock.Anything).Return(nil)

	svc := NewIndexingService(candidates, snapshots, &fixedSegmenter{}, &recordingIndexer{}, nil, nil)
	require.NoError(t, svc.IndexCandidate(context.Background(), "cand-1"))
	candidates.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexingService_SnapshotFailure(t *testing.T) {
	candidates := new(MockCandidateRepository)
	snapshots := new(MockSnapshotRepository)
	idx := &recordingIndexer{}
	candidates.On("GetByID", mock.Anything, "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv"}, nil)
	snapshots.On("Save", mock.Anything, "cand-1", mock.Anything).Return(errors.New("disk full"))

	svc := NewIndexingService(candidates, snapshots, &fixedSegmenter{}, idx, nil, nil)
	err := svc.IndexCandidate(context.Background(), "cand-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save chunk snapshot")
	assert.Empty(t, idx.candidateID)
}

func TestIndexingService_ArchiveFailureIsIgnored(t *testing.T) {
	candidates := new(MockCandidateRepository)
	snapshots := new(MockSnapshotRepository)
	candidates.On("GetByID", mock.Anything, "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv", Status: domain.CandidateStatusUploaded}, nil)
	snapshots.On("Save", mock.Anything, "cand-1", mock.Anything).Return(nil)
	candidates.On("UpdateStatus", mock.Anything, "cand-1", domain.CandidateStatusIndexed).Return(nil)

	svc := NewIndexingService(candidates, snapshots, &fixedSegmenter{}, &recordingIndexer{}, &mapArchive{err: errors.New("no bucket")}, nil)
	assert.NoError(t, svc.IndexCandidate(context.Background(), "cand-1"))
}

func TestIndexingService_MarkFailed(t *testing.T) {
	candidates := new(MockCandidateRepository)
	candidates.On("UpdateStatus", mock.Anything, "cand-1", domain.CandidateStatusFailed).Return(nil)

	svc := NewIndexingService(candidates, nil, nil, nil, nil, nil)
	require.NoError(t, svc.MarkFailed(context.Background(), "cand-1"))
	candidates.AssertExpectations(t)
}
