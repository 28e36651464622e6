package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// Service owns the job queue shared by the handlers and the worker pool.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// NewQueryJob builds a queued question job for user.
func NewQueryJob(id, traceId, userId, question string) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobModel.JobTypeQuery,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.UserQueryInit,
		JobPayload:  jobModel.JobPayload{UserId: userId, Question: question},
	}
}

// NewIngestJob builds a queued ingestion job over the stored uploads.
func NewIngestJob(id, traceId, userId string, filePaths []string) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
		JobPayload:  jobModel.JobPayload{UserId: userId, IngestFilePaths: filePaths},
	}
}

// Submit records the queued job and hands it to the pool. The send blocks
// while the buffer is full so bursts cannot overwhelm the workers.
func (s *Service) Submit(ctx context.Context, job jobModel.Job) {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)

	// queued state is visible to status polls before a worker picks the job up
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Could not save queued job", "error", err)
	}

	metrics.IncrementJobsInQueue()
	s.JobChannel <- job
	log.Info("Queued job")

	// a new worker every RequestsPerNewWorkerCount requests, and one per ingestion
	// since parsing, OCR and embedding hold a worker for long. Idle workers retire.
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount()
		select {
		case s.DispatcherChannel <- true:
			log.Debug("Signalled dispatcher", "requestCount", count)
		default:
			// a signal is already pending
		}
	}
}

func (s *Service) Status(ctx context.Context, jobId string) (jobModel.Job, bool) {
	if jobId == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, jobId)
}
