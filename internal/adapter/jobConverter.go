package adapter

import (
	"fmt"
	"sort"
	"time"

	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
	}
	if job.JobType == jobModel.JobTypeIngest {
		result.IngestResponse = ToIngestResponse(job)
	} else {
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	sources := make([]api.Source, 0, len(ragData.Sources))
	for _, s := range ragData.Sources {
		sources = append(sources, api.Source{Snippet: s.Snippet, Metadata: s.Metadata, Score: s.Score})
	}
	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Sources:  sources,
	}
}

// ToIngestResponse is nil until the job finished
func ToIngestResponse(job jobModel.Job) *api.IngestResponse {
	if job.Status != jobModel.JobStatusComplete {
		return nil
	}
	return &api.IngestResponse{
		Files:         job.JobPayload.IngestFilePaths,
		ChunksWritten: job.JobPayload.ChunksWritten,
	}
}

// ToDocumentsResponse merges what the index holds with the ledger records.
func ToDocumentsResponse(userId string, sources []string, records []commonModels.ProcessedRecord) api.DocumentsResponse {
	byName := make(map[string]*api.DocumentInfo, len(sources)+len(records))
	for _, s := range sources {
		byName[s] = &api.DocumentInfo{FileName: s, Indexed: true}
	}
	for _, r := range records {
		info, ok := byName[r.FileName]
		if !ok {
			info = &api.DocumentInfo{FileName: r.FileName}
			byName[r.FileName] = info
		}
		processedAt := r.ProcessedAt
		info.Status = string(r.Status)
		info.Chunks = r.Chunks
		info.ProcessedAt = &processedAt
	}

	docs := make([]api.DocumentInfo, 0, len(byName))
	for _, info := range byName {
		docs = append(docs, *info)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FileName < docs[j].FileName })
	return api.DocumentsResponse{UserId: userId, Documents: docs}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
