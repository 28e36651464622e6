package job

import (
	"context"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
)

func newTestService(buffer int) *Service {
	return InitJobService(ServiceConfig{
		JobChannel:        make(chan jobModel.Job, buffer),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
}

func TestSubmit_QueryJob(t *testing.T) {
	s := newTestService(1)
	ctx := context.Background()

	s.Submit(ctx, NewQueryJob("q1", "trace", "alice", "what?"))

	queued := <-s.JobChannel
	if queued.JobType != jobModel.JobTypeQuery || queued.JobPayload.Question != "what?" || queued.CurrentStep != jobModel.UserQueryInit {
		t.Errorf("unexpected job %+v", queued)
	}
	saved, found := s.Status(ctx, "q1")
	if !found || saved.Status != jobModel.JobStatusQueued {
		t.Errorf("queued job not visible: %+v %v", saved, found)
	}
	select {
	case <-s.DispatcherChannel:
		t.Error("a single query should not add a worker")
	default:
	}
}

func TestSubmit_SignalsDispatcher(t *testing.T) {
	s := newTestService(int(config.RequestsPerNewWorkerCount) + 2)
	ctx := context.Background()

	s.Submit(ctx, NewIngestJob("i1", "trace", "alice", []string{"a.pdf"}))
	if len(s.DispatcherChannel) != 1 {
		t.Fatal("ingestion should signal the dispatcher")
	}
	<-s.DispatcherChannel

	// the pending signal is not duplicated when the dispatcher lags
	for i := int64(1); i < config.RequestsPerNewWorkerCount; i++ {
		s.Submit(ctx, NewQueryJob("q", "trace", "alice", "q"))
	}
	s.Submit(ctx, NewIngestJob("i2", "trace", "alice", []string{"b.pdf"}))
	if len(s.DispatcherChannel) != 1 {
		t.Errorf("expected one pending signal, got %d", len(s.DispatcherChannel))
	}
}

func TestStatus_EmptyId(t *testing.T) {
	if _, found := newTestService(1).Status(context.Background(), ""); found {
		t.Error("empty id should not be found")
	}
}
