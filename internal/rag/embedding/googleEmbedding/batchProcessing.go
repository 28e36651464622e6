package googleEmbedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// doRetry reports whether err is a rate limit worth one retry
func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit! ", "error", err)
		return true
	}
	if strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") || strings.Contains(err.Error(), "429") {
		log.Warn("Rate limit hit! ", "error", err)
		return true
	}
	return false
}

func getInlinedBatchRequests(chunks []string) *genai.EmbedContentBatch {
	conf := genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"}
	return &genai.EmbedContentBatch{
		Config:   &conf,
		Contents: getContent(chunks),
	}
}

func (c *client) pollForAnswer(ctx context.Context, batchJobName string, log *logger_i.Logger) (*genai.BatchJob, error) {
	ticker := time.NewTicker(config.HugeBatchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Error("pollForAnswer cancelled", "error:", ctx.Err())
			return nil, ctx.Err()

		case <-ticker.C:
			bJob, err := c.genAi.Batches.Get(ctx, batchJobName, nil)
			if err != nil {
				log.Warn("Error getting batch job", "error", err)
				continue
			}

			//https://pkg.go.dev/google.golang.org/genai@v1.41.1#JobState
			switch bJob.State {
			case "JOB_STATE_SUCCEEDED":
				log.Debug("batch job succeeded")
				return bJob, nil
			case "JOB_STATE_FAILED":
				msg := ""
				if bJob.Error != nil {
					msg = bJob.Error.Message
				}
				return nil, fmt.Errorf("batch job failed: %s", msg)
			case "JOB_STATE_CANCELLED", "JOB_STATE_EXPIRED", "JOB_STATE_PARTIALLY_SUCCEEDED":
				return nil, fmt.Errorf("batch job ended early: %s", bJob.State)
			}
		}
	}
}

// a single failed embedding fails the whole batch so vectors stay aligned with chunks
func downloadAnswerFromClient(answer *genai.BatchJob, log *logger_i.Logger) ([][]float32, error) {
	if answer.Dest == nil || len(answer.Dest.InlinedEmbedContentResponses) == 0 {
		return [][]float32{}, nil
	}
	res := answer.Dest.InlinedEmbedContentResponses

	results := make([][]float32, 0, len(res))
	for i, r := range res {
		if r == nil || r.Error != nil || r.Response == nil || r.Response.Embedding == nil {
			log.Error("Error with a particular result in batch embedding", "index", i)
			return nil, fmt.Errorf("batch embedding result %d failed", i)
		}
		results = append(results, r.Response.Embedding.Values)
	}
	return results, nil
}
