package handlers

import (
	"context"
	"sync"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/job"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service    *job.Service
	ragService rag.Service
}

func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, ragService: ragService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.Info("Creating new job", "traceId", newJob.traceId, "jobId", newJob.id, "user", newJob.userId)

	var j jobModel.Job
	if newJob.isDocumentIngest {
		j = job.NewIngestJob(newJob.id, newJob.traceId, newJob.userId, newJob.documentPaths)
	} else {
		j = job.NewQueryJob(newJob.id, newJob.traceId, newJob.userId, newJob.message)
	}
	handlerInstance.service.Submit(traceContext(newJob.traceId), j)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.Status(traceContext(traceId), id)
	}
	return result, false
}

// traceContext detaches job bookkeeping from the request so a client hanging up does not drop it
func traceContext(traceId string) context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
}
