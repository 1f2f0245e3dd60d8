package service

import "context"

type testTxRepos struct {
	candidates  CandidateRepository
	evaluations EvaluationRepository
	indexJobs   IndexJobRepository
}

func (t *testTxRepos) Candidates() CandidateRepository {
	return t.candidates
}

func (t *testTxRepos) Evaluations() EvaluationRepository {
	return t.evaluations
}

func (t *testTxRepos) IndexJobs() IndexJobRepository {
	return t.indexJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
