package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/job"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	IngestedCount  int32
	OnProcess      func(j jobModel.Job) jobModel.Job
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(j)
	}
	j.JobPayload.Answer = "answer"
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.IngestedCount, 1)
	j.JobPayload.ChunksWritten = 3
	return j
}

type MockJobStore struct {
	mu    sync.Mutex
	saved map[string][]jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.saved[jobId]
	if len(history) == 0 {
		return jobModel.Job{}, false
	}
	return history[len(history)-1], true
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, jobID)
}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]jobModel.Job)
	}
	m.saved[j.Id] = append(m.saved[j.Id], j)
	return nil
}

func (m *MockJobStore) statuses(id string) []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved[id] {
		out = append(out, j.Status)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerPool_Flow(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store,
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) >= 2 })
	})

	t.Run("Worker processes a query job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "q-1", JobType: jobModel.JobTypeQuery}

		waitFor(t, func() bool {
			s := store.statuses("q-1")
			return len(s) == 2
		})
		if got := store.statuses("q-1"); got[0] != jobModel.JobStatusRunning || got[1] != jobModel.JobStatusComplete {
			t.Errorf("unexpected status history %v", got)
		}
		final, _ := store.GetJob(context.Background(), "q-1")
		if final.JobPayload.Answer != "answer" || final.EndTime.IsZero() {
			t.Errorf("final job not saved: %+v", final)
		}
	})

	t.Run("Worker keeps the ingestion result", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "i-1", JobType: jobModel.JobTypeIngest}

		waitFor(t, func() bool { return len(store.statuses("i-1")) == 2 })
		final, _ := store.GetJob(context.Background(), "i-1")
		if final.JobPayload.ChunksWritten != 3 || final.Status != jobModel.JobStatusComplete {
			t.Errorf("ingestion result lost: %+v", final)
		}
	})

	t.Run("Failed job stays in error", func(t *testing.T) {
		mockRag.OnProcess = func(j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.CurrentStep = jobModel.Error
			return j
		}
		defer func() { mockRag.OnProcess = nil }()
		jobSvc.JobChannel <- jobModel.Job{Id: "q-err", JobType: jobModel.JobTypeQuery}

		waitFor(t, func() bool { return len(store.statuses("q-err")) == 2 })
		if got := store.statuses("q-err"); got[1] != jobModel.JobStatusError {
			t.Errorf("unexpected status history %v", got)
		}
	})

	t.Run("Panicking job fails without killing the worker", func(t *testing.T) {
		mockRag.OnProcess = func(j jobModel.Job) jobModel.Job { panic("boom") }
		defer func() { mockRag.OnProcess = nil }()
		before := atomic.LoadInt64(&currentWorkerCount)
		jobSvc.JobChannel <- jobModel.Job{Id: "q-panic", JobType: jobModel.JobTypeQuery}

		waitFor(t, func() bool { return len(store.statuses("q-panic")) == 2 })
		final, _ := store.GetJob(context.Background(), "q-panic")
		if final.Status != jobModel.JobStatusError || final.Error.Code != 500 {
			t.Errorf("unexpected final job %+v", final)
		}
		if atomic.LoadInt64(&currentWorkerCount) != before {
			t.Error("worker count changed after panic")
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	idleWorkerTimeout = 50 * time.Millisecond
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()

	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 0 })
	wg.Wait()
}
