package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
)

func indexExists(ctx context.Context, name string) (bool, error) { return true, nil }

func newService(e *MockEmbedder, v *MockVectorDB, l *MockLLM, ledger *MockLedger) rag.Service {
	return rag.NewService(vectorDB.NewUserIndex(v), ledger, l, e, nil)
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		setupMocks      func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStep    jobModel.InternalStatus
		expectedStatus  jobModel.JobStatus
		expectedAnswer  string
		expectedSources int
		expectedErr     string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					if contextText != "default context" {
						return "", errors.New("unexpected context " + contextText)
					}
					return "final answer", nil
				}
			},
			expectedStep:    jobModel.Complete,
			expectedStatus:  jobModel.JobStatusQueued,
			expectedAnswer:  "final answer",
			expectedSources: 1,
		},
		{
			name:            "No_Index_For_User",
			setupMocks:      func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {},
			expectedStep:    jobModel.Complete,
			expectedStatus:  jobModel.JobStatusQueued,
			expectedAnswer:  rag.NoDocumentsAnswer,
			expectedSources: 0,
		},
		{
			name: "Vector_Search_Failure_Means_No_Retriever",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				v.OnSearch = func(ctx context.Context, name string, v []float32, k int) ([]commonModels.Candidate, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStep:    jobModel.Complete,
			expectedStatus:  jobModel.JobStatusQueued,
			expectedAnswer:  rag.NoDocumentsAnswer,
			expectedSources: 0,
		},
		{
			name: "Answer_Not_Found_Drops_Sources",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					return "I couldn't find the answer in the documents.", nil
				}
			},
			expectedStep:    jobModel.Complete,
			expectedStatus:  jobModel.JobStatusQueued,
			expectedAnswer:  "I couldn't find the answer in the documents.",
			expectedSources: 0,
		},
		{
			name: "Rerank_Failure_Keeps_Answer",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				e.OnBatchEmbedding = func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
					return nil, errors.New("quota")
				}
			},
			expectedStep:    jobModel.Complete,
			expectedStatus:  jobModel.JobStatusQueued,
			expectedAnswer:  "mocked llm response",
			expectedSources: 0,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "RETRIEVAL_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnCollectionExists = indexExists
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newService(mEmbed, mVec, mLLM, NewMockLedger())

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:     "test-job",
				Status: jobModel.JobStatusQueued,
				JobPayload: jobModel.JobPayload{
					UserId:   "alice@example.com",
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}

			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if tt.expectedErr == "" && len(result.JobPayload.Sources) != tt.expectedSources {
				t.Errorf("Sources got %d, want %d", len(result.JobPayload.Sources), tt.expectedSources)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestAsk_ErrorAnswers(t *testing.T) {
	ctx := context.Background()

	e := &MockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("api limit")
	}}
	answer, sources := newService(e, &MockVectorDB{OnCollectionExists: indexExists}, &MockLLM{}, NewMockLedger()).Ask(ctx, "u", "q")
	if answer != rag.SetupErrorAnswer || len(sources) != 0 {
		t.Errorf("got %q %v", answer, sources)
	}

	l := &MockLLM{OnGenerate: func(ctx context.Context, q string, contextText string) (string, error) {
		return "", errors.New("provider down")
	}}
	answer, sources = newService(&MockEmbedder{}, &MockVectorDB{OnCollectionExists: indexExists}, l, NewMockLedger()).Ask(ctx, "u", "q")
	if answer != rag.InvokeErrorAnswer || len(sources) != 0 {
		t.Errorf("got %q %v", answer, sources)
	}

	answer, sources = newService(&MockEmbedder{}, &MockVectorDB{OnCollectionExists: indexExists}, &MockLLM{}, NewMockLedger()).Ask(ctx, "u", "q")
	if answer != "mocked llm response" || len(sources) != 1 {
		t.Fatalf("got %q %v", answer, sources)
	}
	if sources[0].Metadata["source"] != "doc.pdf" {
		t.Errorf("unexpected source metadata %v", sources[0].Metadata)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	dir := t.TempDir()
	dummyFile := filepath.Join(dir, "test_ingest.txt")
	if err := os.WriteFile(dummyFile, []byte("test content for ingestion"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedStatus jobModel.JobStatus
		expectedChunks int
		expectedErr    string
	}{
		{
			name: "Ingestion_Success",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
					if coll != vectorDB.CollectionName("alice@example.com") {
						return errors.New("wrong collection " + coll)
					}
					return nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedChunks: 1,
		},
		{
			name: "Already_Indexed_Source",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCollectionExists = indexExists
				v.OnListSources = func(ctx context.Context, name string) ([]string, error) {
					return []string{"test_ingest.txt"}, nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedChunks: 0,
		},
		{
			name: "Failure_Collection_Creation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return errors.New("connection refused")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				e.OnBatchEmbedding = func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
					return nil, errors.New("quota")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}

			tt.setupMocks(mEmbed, mVec)

			ledger := NewMockLedger()
			s := newService(mEmbed, mVec, &MockLLM{}, ledger)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			job := jobModel.Job{
				Id: "ingest-job-1",
				JobPayload: jobModel.JobPayload{
					UserId:          "alice@example.com",
					IngestFilePaths: []string{dummyFile},
				},
			}

			result := s.IngestDocument(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if result.JobPayload.ChunksWritten != tt.expectedChunks {
				t.Errorf("Chunks got %d, want %d", result.JobPayload.ChunksWritten, tt.expectedChunks)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
			if tt.expectedErr != "" && ledger.IsProcessed(ctx, "alice@example.com", "test_ingest.txt") {
				t.Error("failed ingestion must not mark the file processed")
			}
		})
	}
}

func TestDeleteSource(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	_ = ledger.MarkProcessed(ctx, commonModels.ProcessedRecord{UserId: "u", FileName: "report.pdf", Status: commonModels.StatusProcessed})

	var deleted string
	v := &MockVectorDB{
		OnCollectionExists: indexExists,
		OnDeleteBySource: func(ctx context.Context, name string, source string) (int, error) {
			deleted = source
			return 3, nil
		},
	}
	s := newService(&MockEmbedder{}, v, &MockLLM{}, ledger)

	if err := s.DeleteSource(ctx, "u", "uploads/u/report.pdf"); err != nil {
		t.Fatalf("DeleteSource failed: %v", err)
	}
	if deleted != "report.pdf" {
		t.Errorf("deleted source %q, want report.pdf", deleted)
	}
	if ledger.IsProcessed(ctx, "u", "report.pdf") {
		t.Error("deleted file should be forgotten by the ledger")
	}

	v.OnDeleteBySource = func(ctx context.Context, name string, source string) (int, error) {
		return 0, errors.New("unavailable")
	}
	if err := s.DeleteSource(ctx, "u", "report.pdf"); err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Errorf("expected backend error, got %v", err)
	}
}
