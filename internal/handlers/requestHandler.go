package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocQA/internal/adapter"
	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id               string
	userId           string
	message          string
	traceId          string
	isDocumentIngest bool
	documentPaths    []string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question about your documents
// @Description  Accepts a question and a user id, queues a QA job over that user's documents and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question and user id"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader", "error", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !validateChatRequest(requestData) {

			logRH.Warn("Bad Chat Request", "error", err, "traceId", traceId(request.Context()))
			WriteErrorResponse(w, http.StatusBadRequest, "", "message and user_id are required")
			return
		}
		processNewJobData(request, w, requestData.UserID, requestData.Message, nil)
		return
	}
	logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
}

func validateChatRequest(chatReq api.ChatRequest) bool {
	return strings.TrimSpace(chatReq.Message) != "" && strings.TrimSpace(chatReq.UserID) != ""
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a query or ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, traceId(r.Context()))

		logRH.Debug("Get Status Request", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler handles the uploading of documents for ingestion.
// @Summary      Upload documents for ingestion
// @Description  Receives one or more files via multipart/form-data, saves them in the user's upload folder, and queues one ingestion job for all of them.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        user_id   formData  string  true  "Owner of the documents"
// @Param        document  formData  file    true  "PDF, DOCX, TXT, RTF, ODT or XLSX file, repeatable"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	userId := strings.TrimSpace(r.FormValue("user_id"))
	if userId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "user_id is required")
		return
	}
	files := r.MultipartForm.File["document"]
	if len(files) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "at least one document is required")
		return
	}

	targetDir, errString := getTargetDirectory(userId)
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	paths := make([]string, 0, len(files))
	for _, fileMetadata := range files {
		name, ok := cleanFileName(fileMetadata.Filename)
		if !ok {
			WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Invalid file name")
			return
		}
		path := filepath.Join(targetDir, name)
		if err := saveUpload(fileMetadata, path); err != nil {
			logRH.Error("Could not store upload", "file", name, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, name, "Write error")
			return
		}
		paths = append(paths, path)
	}

	logRH.Info("Stored uploads", "user", userId, "files", len(paths), "traceId", traceId(r.Context()))
	processNewJobData(r, w, userId, "", paths)
}

func saveUpload(fileMetadata *multipart.FileHeader, path string) error {
	fileReader, err := fileMetadata.Open()
	if err != nil {
		return err
	}
	defer fileReader.Close()

	destinationFileWriter, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		destinationFileWriter.Close()
		return err
	}
	return destinationFileWriter.Close()
}
