package rag

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/retrieval"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const (
	retrievalFailure = "RETRIEVAL_FAILURE"
	llmFailure       = "LLM_GENERATION_FAILURE"
)

func returnOutput(job jobModel.Job, ans string, sources []commonModels.Snippet) jobModel.Job {
	job.JobPayload.Answer = ans
	job.JobPayload.Sources = sources
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err, "JobId", job.Id)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.CurrentStep = jobModel.Error
	job.Status = jobModel.JobStatusError
	return job
}

// runQA is retrieve, answer, rerank. A user with no index gets NoDocumentsAnswer
// and no error. Reranking failures drop the sources but keep the answer.
func (s *service) runQA(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (string, []commonModels.Snippet, string, error) {
	user := job.JobPayload.UserId
	question := job.JobPayload.Question
	log.Info("Received question", "user", user, "question", question)

	candidates, err := s.executeRetrievalStep(ctx, log, job)
	if errors.Is(err, retrieval.ErrNoRetriever) {
		log.Warn("No retriever found; vector store may be empty.")
		return NoDocumentsAnswer, []commonModels.Snippet{}, "", nil
	}
	if err != nil {
		return "", nil, retrievalFailure, err
	}

	answer, err := s.executeLLMStep(ctx, log, job, candidates)
	if err != nil {
		return "", nil, llmFailure, err
	}

	sources, err := s.executeRerankStep(ctx, log, job, answer, candidates)
	if err != nil {
		log.Error("Reranking failed, answering without sources", "error", err)
		sources = []commonModels.Snippet{}
	}
	if llm.IsNotFoundAnswer(answer) {
		sources = []commonModels.Snippet{}
	}

	log.Info("Answer ready", "answerLength", len(answer), "sources", len(sources))
	return answer, sources, "", nil
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]commonModels.Candidate, error) {
	*job = logOutput(*job, jobModel.RetrievalCall, log)
	return s.AnswerContext(ctx, job.JobPayload.UserId, job.JobPayload.Question, config.QuestionTopK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, candidates []commonModels.Candidate) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, stuffContext(candidates))
}

func (s *service) executeRerankStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, answer string, candidates []commonModels.Candidate) ([]commonModels.Snippet, error) {
	*job = logOutput(*job, jobModel.RerankCall, log)
	return s.Rerank(ctx, answer, candidates)
}

// stuffContext joins every retrieved passage into one context block
func stuffContext(candidates []commonModels.Candidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}
