package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocQA/internal/adapter"
	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/api"
)

// ListDocumentsHandler godoc
// @Summary      List a user's documents
// @Description  Returns the sources present in the user's index together with their processing records.
// @Tags         Documents
// @Produce      json
// @Param        user_id  query     string  true  "Owner of the documents"
// @Success      200      {object}  api.DocumentsResponse
// @Failure      400      {object}  api.JobResponse "user_id missing"
// @Failure      500      {object}  api.JobResponse "Index unavailable"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userId := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "user_id is required")
		return
	}

	sources, err := handlerInstance.ragService.ListSources(r.Context(), userId)
	if err != nil {
		logRH.Error("Could not list sources", "user", userId, "error", err, "traceId", traceId(r.Context()))
		WriteErrorResponse(w, http.StatusInternalServerError, userId, "Could not list documents")
		return
	}
	records, err := handlerInstance.ragService.ProcessedFiles(r.Context(), userId)
	if err != nil {
		// the index listing alone is still a valid answer
		logRH.Warn("Could not read processing records", "user", userId, "error", err)
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentsResponse(userId, sources, records))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes every chunk of the file from the user's index, forgets its processing record and deletes the uploaded copy.
// @Tags         Documents
// @Produce      json
// @Param        filename  path      string  true  "File name as uploaded"
// @Param        user_id   query     string  true  "Owner of the document"
// @Success      200       {object}  api.DeleteDocumentResponse
// @Failure      400       {object}  api.JobResponse "user_id or filename missing"
// @Failure      500       {object}  api.JobResponse "Index unavailable"
// @Router       /documents/{filename} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userId := strings.TrimSpace(r.URL.Query().Get("user_id"))
	fileName, ok := cleanFileName(utils.GetChiURLParam(r, "filename"))
	if userId == "" || !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "", "user_id and filename are required")
		return
	}

	if err := handlerInstance.ragService.DeleteSource(r.Context(), userId, fileName); err != nil {
		logRH.Error("Could not delete source", "user", userId, "file", fileName, "error", err, "traceId", traceId(r.Context()))
		WriteErrorResponse(w, http.StatusInternalServerError, fileName, "Could not delete document")
		return
	}

	targetDir, errString := getTargetDirectory(userId)
	if errString == "" {
		err := os.Remove(filepath.Join(targetDir, fileName))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logRH.Warn("Could not remove uploaded file", "file", fileName, "error", err)
		}
	}

	logRH.Info("Deleted document", "user", userId, "file", fileName)
	writeJsonResponse(w, http.StatusOK, api.DeleteDocumentResponse{UserId: userId, FileName: fileName, Deleted: true})
}
