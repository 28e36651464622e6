package rag

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/ingest"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/rerank"
	"github.com/akolanti/DocQA/internal/rag/retrieval"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

/*
The worker and the handlers only see Service. The private service struct
holds the index, the model clients and the ledger so tests can swap any of
them through NewService without touching callers.
*/

const (
	NoDocumentsAnswer = "Could not access your documents to answer the question."
	SetupErrorAnswer  = "An error occurred while setting up the QA process."
	InvokeErrorAnswer = "An error occurred while trying to find an answer."
)

type Service interface {
	Ingest(ctx context.Context, filePaths []string, user string) (int, error)
	AnswerContext(ctx context.Context, user string, question string, k int) ([]commonModels.Candidate, error)
	Rerank(ctx context.Context, answer string, candidates []commonModels.Candidate) ([]commonModels.Snippet, error)
	DeleteSource(ctx context.Context, user string, filename string) error
	ListSources(ctx context.Context, user string) ([]string, error)
	ProcessedFiles(ctx context.Context, user string) ([]commonModels.ProcessedRecord, error)
	Ask(ctx context.Context, user string, question string) (string, []commonModels.Snippet)

	// job forms used by the worker pool
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	index       *vectorDB.UserIndex
	ledger      commonModels.LedgerStore
	ingestor    *ingest.Ingestor
	retriever   *retrieval.Retriever
	reranker    *rerank.Reranker
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// NewService wires the pipeline. tables may be nil to disable table extraction helpers.
func NewService(index *vectorDB.UserIndex, ledger commonModels.LedgerStore, llmProvider llm.Provider, em embedding.Embedder, tables *ingest.TableExtractor) Service {
	return &service{
		index:       index,
		ledger:      ledger,
		ingestor:    ingest.NewIngestor(index, em, ledger, tables),
		retriever:   retrieval.NewRetriever(index, em),
		reranker:    rerank.NewReranker(em),
		llmProvider: llmProvider,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ingest(ctx context.Context, filePaths []string, user string) (int, error) {
	return s.ingestor.Ingest(ctx, filePaths, user)
}

func (s *service) AnswerContext(ctx context.Context, user string, question string, k int) ([]commonModels.Candidate, error) {
	return s.retriever.Retrieve(ctx, user, question, k)
}

func (s *service) Rerank(ctx context.Context, answer string, candidates []commonModels.Candidate) ([]commonModels.Snippet, error) {
	return s.reranker.Rerank(ctx, answer, candidates)
}

// DeleteSource removes the file's chunks and forgets it was processed so it can be uploaded again.
func (s *service) DeleteSource(ctx context.Context, user string, filename string) error {
	source := filepath.Base(filename)
	if _, err := s.index.DeleteBySource(ctx, user, source); err != nil {
		return err
	}
	return s.ledger.Forget(ctx, user, source)
}

func (s *service) ListSources(ctx context.Context, user string) ([]string, error) {
	return s.index.ListSources(ctx, user)
}

func (s *service) ProcessedFiles(ctx context.Context, user string) ([]commonModels.ProcessedRecord, error) {
	return s.ledger.List(ctx, user)
}

// Ask answers question from the user's documents. Failures become user facing answers with no sources.
func (s *service) Ask(ctx context.Context, user string, question string) (string, []commonModels.Snippet) {
	job := jobModel.Job{JobPayload: jobModel.JobPayload{UserId: user, Question: question}}
	log := s.logger.WithTrace(ctx).With("user", user)

	answer, sources, failure, err := s.runQA(ctx, log, &job)
	if err != nil {
		log.Error(failure, "error", err)
		if failure == retrievalFailure {
			return SetupErrorAnswer, []commonModels.Snippet{}
		}
		return InvokeErrorAnswer, []commonModels.Snippet{}
	}
	return answer, sources
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx).With("JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	answer, sources, failure, err := s.runQA(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, failure, true)
	}
	return returnOutput(jobt, answer, sources)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	ingestContext, cancel := context.WithTimeout(ctx, config.IngestJobTimeout)
	defer cancel()

	job.CurrentStep = jobModel.IngestProcessing
	n, err := s.Ingest(ingestContext, job.JobPayload.IngestFilePaths, job.JobPayload.UserId)
	if err != nil {
		canRetry := !errors.Is(err, context.Canceled)
		return s.jobError(job, err, "INGESTION_FAILURE", canRetry)
	}
	job.JobPayload.ChunksWritten = n
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}
