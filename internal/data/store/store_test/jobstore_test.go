package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		JobType: jobModel.JobTypeQuery,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			UserId:   "alice@example.com",
			Question: "What is the warranty period?",
			Sources: []commonModels.Snippet{{
				Snippet:  "Two years.",
				Metadata: map[string]any{"source": "terms.pdf", "page": 3},
				Score:    0.8,
			}},
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.Question != testJob.JobPayload.Question {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.Question, testJob.JobPayload.Question)
		}
		if len(retrievedJob.JobPayload.Sources) != 1 || retrievedJob.JobPayload.Sources[0].Metadata["source"] != "terms.pdf" {
			t.Errorf("Sources mismatch: %+v", retrievedJob.JobPayload.Sources)
		}
	})

	t.Run("Job expires", func(t *testing.T) {
		if ttl := mr.TTL("job:"+jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("TTL got %v, want %v", ttl, config.RedisJobStoreTTL)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt Job", func(t *testing.T) {
		_ = mr.Set("job:broken", "{not json")
		if _, found := jobStore.GetJob(ctx, "broken"); found {
			t.Error("Expected found=false for unreadable job")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists("job:"+jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job lost under concurrent writes")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	jobStore := store.InitInMemoryJobStore()

	_ = jobStore.SaveJob(ctx, jobModel.Job{Id: "j1", Status: jobModel.JobStatusQueued})
	got, found := jobStore.GetJob(ctx, "j1")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("got %+v %v", got, found)
	}
	jobStore.DeleteJob(ctx, "j1")
	if _, found := jobStore.GetJob(ctx, "j1"); found {
		t.Error("job should be deleted")
	}
}
