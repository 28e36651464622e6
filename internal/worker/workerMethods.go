package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	jobmodel "github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	timeout := config.QueryJobTimeout
	if job.JobType == jobmodel.JobTypeIngest {
		timeout = config.IngestJobTimeout
	}
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, timeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "jobType", job.JobType)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	job = runJob(ctx, job)
	if job.JobType == jobmodel.JobTypeIngest {
		log.Info("Ingestion finished", "chunks", job.JobPayload.ChunksWritten, "step", job.CurrentStep)
	}

	job.EndTime = time.Now()
	finalStatus := jobmodel.JobStatusComplete
	if job.Status == jobmodel.JobStatusError {
		finalStatus = jobmodel.JobStatusError
	}
	// the job context may have expired, the final state must still land
	saveJobState(context.WithoutCancel(ctx), job, finalStatus)
}

// runJob hands the job to the rag service. A panic fails the job instead of the worker.
func runJob(ctx context.Context, job jobmodel.Job) (result jobmodel.Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "jobId", job.Id, "panic", r)
			result = job
			result.Error = jobmodel.JobError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}
			result.CurrentStep = jobmodel.Error
			result.Status = jobmodel.JobStatusError
		}
	}()

	if job.JobType == jobmodel.JobTypeIngest {
		job.CurrentStep = jobmodel.IngestProcessing
		return _ragService.IngestDocument(ctx, job)
	}
	job.CurrentStep = jobmodel.RetrievalCall
	return _ragService.ProcessRequest(ctx, job)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	count := atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job state", "err", err, "jobId", job.Id)
	}
}
