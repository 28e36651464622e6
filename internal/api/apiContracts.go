package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	JobType   string            `json:"job_type,omitempty" example:"Query"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Source struct {
	Snippet  string         `json:"snippet" example:"The warranty lasts two years."`
	Metadata map[string]any `json:"metadata"`
	Score    float32        `json:"score" example:"0.82"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

type IngestResponse struct {
	Files         []string `json:"files"`
	ChunksWritten int      `json:"chunks_written"`
}

type Result struct {
	Status              string          `json:"status"`
	Step                string          `json:"step,omitempty"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentInfo struct {
	FileName    string     `json:"file_name" example:"report.pdf"`
	Indexed     bool       `json:"indexed"`
	Status      string     `json:"status,omitempty" example:"processed"`
	Chunks      int        `json:"chunks,omitempty" example:"12"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type DocumentsResponse struct {
	UserId    string         `json:"user_id"`
	Documents []DocumentInfo `json:"documents"`
}

type DeleteDocumentResponse struct {
	UserId   string `json:"user_id"`
	FileName string `json:"file_name"`
	Deleted  bool   `json:"deleted"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" example:"What is the warranty period?"`
	UserID  string `json:"user_id" validate:"required" example:"alice@example.com"`
}
