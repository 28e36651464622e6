package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// runtime settings, overridable from the environment or a .env file
var (
	ServerListenAddr = ":3000"

	AuthToken    = ""
	NoAuthBypass = false

	QdrantHost   = ""
	QdrantPort   = QdrantGrpcPort
	QdrantAPIKey = ""

	RedisAddr     = "127.0.0.1:6379"
	RedisPassword = ""

	GoogleAPIKey = ""
	OpenAIAPIKey = ""

	// google | openai
	EmbeddingProvider = "google"
	// gemini | openai
	LLMProvider = "gemini"

	VectorDataDir = "vector_store"
	UploadDir     = "uploaded_files"

	OCRRasterizerBin = "pdftoppm"
	OCRRecognizerBin = "tesseract"
)

// Load reads an optional .env file and applies environment overrides.
func Load() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return err
		}
	}

	ServerListenAddr = getEnv("LISTEN_ADDR", ServerListenAddr)
	AuthToken = getEnv("AUTH_TOKEN", AuthToken)
	NoAuthBypass = getEnvBool("NO_AUTH_BYPASS", NoAuthBypass)

	QdrantHost = getEnv("QDRANT_HOST", QdrantHost)
	QdrantPort = getEnvInt("QDRANT_PORT", QdrantPort)
	QdrantAPIKey = getEnv("QDRANT_API_KEY", QdrantAPIKey)

	RedisAddr = getEnv("REDIS_ADDR", RedisAddr)
	RedisPassword = getEnv("REDIS_PASSWORD", RedisPassword)

	GoogleAPIKey = getEnv("GOOGLE_API_KEY", GoogleAPIKey)
	OpenAIAPIKey = getEnv("OPENAI_API_KEY", OpenAIAPIKey)
	EmbeddingProvider = getEnv("EMBEDDING_PROVIDER", EmbeddingProvider)
	LLMProvider = getEnv("LLM_PROVIDER", LLMProvider)

	VectorDataDir = getEnv("VECTOR_DATA_DIR", VectorDataDir)
	UploadDir = getEnv("UPLOAD_DIR", UploadDir)

	OCRRasterizerBin = getEnv("OCR_RASTERIZER_BIN", OCRRasterizerBin)
	OCRRecognizerBin = getEnv("OCR_RECOGNIZER_BIN", OCRRecognizerBin)
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
