package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD               = false
	LOG_LEVEL_PROD        = slog.LevelInfo
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 2
	BURST_RATE_LIMIT      = 5

	EmbeddingOutputDimensionality int32 = 1536
	//rows of a detected table that go into one chunk
	TableRowsPerChunk  = 10
	EmbeddingBatchSize = 100
	//chunks above this count go through the async batch embedding job
	HugeDataSetThreshold  = 1000000
	HugeBatchPollInterval = 30 * time.Second

	//retrieval
	DefaultTopK  = 4
	QuestionTopK = 15

	//reranker
	MaxSnippets         = 4
	FallbackSnippets    = 2
	SnippetFallbackSize = 200

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestJobTimeout                = 10 * time.Minute
	QueryJobTimeout                 = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//job requests buffer limit
	BufferLimit = 100

	//multipart upload limit
	MaxUploadSize = 64 << 20

	//vectorDB
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1                //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout = 30 * time.Second //5 * time.Minute for prod maybe- fine tune for performance
	QdrantScrollPageSize   = 256

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIChatModel      = "gpt-4o-mini-2024-07-18"
	OpenAIEmbeddingModel = "text-embedding-3-large"

	ModelTemperature float32 = 0.1

	//ocr
	OCRRasterDPI   = 200
	OCRPageTimeout = 2 * time.Minute
	PDFPageTimeout = 10 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisJobStore    = 0
	RedisLedgerStore = 2

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
)
