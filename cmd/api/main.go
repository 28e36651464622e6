// @title           Document QA API
// @version         1.0
// @description     Upload documents per user, ask questions answered from them asynchronously, and manage the indexed files.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	jobmodel "github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/handlers"
	"github.com/akolanti/DocQA/internal/job"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocQA/internal/rag/ingest"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/llm/gemini"
	"github.com/akolanti/DocQA/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/internal/rag/vectorDB/localDB"
	"github.com/akolanti/DocQA/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocQA/internal/server"
	"github.com/akolanti/DocQA/internal/worker"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	var ledger commonModels.LedgerStore
	redisJobs, jobErr := store.NewRedisJobStore(serviceContext)
	redisLedger, ledgerErr := store.NewRedisLedgerStore(serviceContext)
	if err := errors.Join(jobErr, ledgerErr); err != nil {
		logger.Error("Redis stores are offline, using in-memory stores", "error", err)
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		ledger = store.InitInMemoryLedgerStore()
	} else {
		serviceConfig.JobStore = redisJobs
		ledger = redisLedger
	}
	service := job.InitJobService(serviceConfig)

	backend := vectorBackend(serviceContext, logger)
	embeddingService, err := newEmbedder(serviceContext)
	if err != nil {
		logger.Error("Embedding service failed to initialize. Shutting down.", "provider", config.EmbeddingProvider, "error", err)
		return
	}
	llmProvider, err := newLLM(serviceContext)
	if err != nil {
		logger.Error("LLM provider failed to initialize. Shutting down.", "provider", config.LLMProvider, "error", err)
		return
	}

	tables := ingest.NewTableExtractor(ingest.NewPopplerRasterizer(), ingest.NewTesseractRecognizer())
	ragService := rag.NewService(vectorDB.NewUserIndex(backend), ledger, llmProvider, embeddingService, tables)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// vectorBackend prefers qdrant and falls back to the file persisted store
func vectorBackend(ctx context.Context, logger *logger_i.Logger) vectorDB.DataProcessor {
	client, err := qdrantDB.NewClient(ctx)
	if err == nil {
		logger.Info("Using qdrant vector store", "host", config.QdrantHost)
		return client
	}
	logger.Warn("Qdrant unavailable, using local vector store", "error", err, "dir", config.VectorDataDir)
	return localDB.New(config.VectorDataDir)
}

func newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	switch config.EmbeddingProvider {
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	case "google":
		return googleEmbedding.NewGoogleEmbedder(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", config.EmbeddingProvider)
}

func newLLM(ctx context.Context) (llm.Provider, error) {
	switch config.LLMProvider {
	case "openai":
		return openaiLLM.NewOpenAIClient(config.OpenAIChatModel, config.OpenAIAPIKey)
	case "gemini":
		return gemini.NewGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey)
	}
	return nil, fmt.Errorf("unknown llm provider %q", config.LLMProvider)
}
