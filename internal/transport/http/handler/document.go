package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/extract"
	"docuchat/internal/transport/http/response"
)

// maxUploadBytes caps a single document upload.
const maxUploadBytes = 32 << 20

type DocumentHandler struct {
	ingestService *app.IngestService
}

func NewDocumentHandler(ingestService *app.IngestService) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	email, ok := ownerEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}

	doc, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		OwnerEmail: email,
		FileName:   fileHeader.Filename,
		MediaType:  fileHeader.Header.Get("Content-Type"),
		Data:       data,
	})
	if err != nil {
		var embedErr *ai.EmbeddingError
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrOwnerNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, extract.ErrUnsupportedFormat):
			response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedFormat, err.Error())
		case errors.As(err, &embedErr):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamModel, "embedding backend failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"id":           doc.ID,
		"file_name":    doc.OriginalFileName,
		"blob_locator": doc.BlobLocator,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	email, ok := ownerEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	docs, err := h.ingestService.ListDocuments(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, app.ErrOwnerNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	items := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		items = append(items, gin.H{
			"id":         d.ID,
			"file_name":  d.OriginalFileName,
			"created_at": d.CreatedAt,
		})
	}
	response.OK(c, gin.H{"documents": items})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	email, ok := ownerEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.ingestService.DeleteDocument(c.Request.Context(), email, uint(id)); err != nil {
		switch {
		case errors.Is(err, app.ErrOwnerNotFound), errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted": id})
}
