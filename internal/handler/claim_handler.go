package handler

import (
	"bytes"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimflow/internal/domain"
	"claimflow/internal/middleware"
	"claimflow/internal/report"
	"claimflow/internal/service"
)

// filesField is the multipart field carrying claim documents.
const filesField = "files"

// ClaimHandler handles claim processing endpoints.
type ClaimHandler struct {
	claimService service.ClaimService
	maxFiles     int
	maxFileSize  int64
}

// NewClaimHandler creates a new ClaimHandler.
// Non-positive limits disable the corresponding check.
func NewClaimHandler(claimService service.ClaimService, maxFiles int, maxFileSize int64) *ClaimHandler {
	return &ClaimHandler{claimService: claimService, maxFiles: maxFiles, maxFileSize: maxFileSize}
}

// Process handles POST /api/v1/claims/process-claim
// @Summary Process a claim
// @Description Upload the documents of one claim (PDF, JPG, PNG or TXT). Each document is classified and extracted, the set is cross-validated and a decision is returned.
// @Tags claims
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Claim documents (repeat the field for each file)"
// @Success 200 {object} Response{data=domain.ProcessedClaim} "Processed claim"
// @Failure 400 {object} ErrorResponseBody "No files, too many files or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Processing failed"
// @Security BearerAuth
// @Router /claims/process-claim [post]
func (h *ClaimHandler) Process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form with a files field is required")
		return
	}
	headers := form.File[filesField]
	if len(headers) == 0 {
		HandleError(c, domain.ErrNoDocuments)
		return
	}
	if h.maxFiles > 0 && len(headers) > h.maxFiles {
		HandleError(c, domain.ErrTooManyFiles)
		return
	}

	for _, fh := range headers {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			HandleError(c, fmt.Errorf("%s: %w", fh.Filename, domain.ErrFileTooLarge))
			return
		}
	}

	files := make([]service.UploadedFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", fmt.Sprintf("could not read %s", fh.Filename))
			return
		}
		opened = append(opened, file)
		files = append(files, service.UploadedFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     file,
		})
	}

	claim, err := h.claimService.Submit(c.Request.Context(), service.SubmitInput{Files: files})
	if err != nil {
		HandleError(c, err)
		return
	}

	log.Printf("claimHandler.Process: claim %s decided %s (%d documents, caller %q)",
		claim.ID, claim.Decision.Status, len(files), middleware.GetSubject(c))
	RespondOK(c, claim)
}

// List handles GET /api/v1/claims
// @Summary List processed claims
// @Tags claims
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Param status query string false "Filter by decision status" Enums(approved, rejected, pending)
// @Success 200 {object} Response{data=[]domain.ClaimRecord,meta=PagMeta} "Stored claims, newest first"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /claims [get]
func (h *ClaimHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	var status domain.DecisionStatus
	if raw := c.Query("status"); raw != "" {
		var err error
		if status, err = domain.ParseDecisionStatus(raw); err != nil {
			HandleError(c, err)
			return
		}
	}

	records, total, err := h.claimService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/claims/:id
// @Summary Get a processed claim
// @Tags claims
// @Produce json
// @Param id path string true "Claim ID (UUID)"
// @Success 200 {object} Response{data=domain.ProcessedClaim} "Processed claim"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Claim not found"
// @Security BearerAuth
// @Router /claims/{id} [get]
func (h *ClaimHandler) GetByID(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	claim, err := h.claimService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, claim)
}

// Reprocess handles POST /api/v1/claims/:id/reprocess
// @Summary Reprocess a claim
// @Description Runs the pipeline again over the archived documents of a stored claim and overwrites its result.
// @Tags claims
// @Produce json
// @Param id path string true "Claim ID (UUID)"
// @Success 200 {object} Response{data=domain.ProcessedClaim} "Reprocessed claim"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Claim not found"
// @Failure 409 {object} ErrorResponseBody "Claim documents were not archived"
// @Security BearerAuth
// @Router /claims/{id}/reprocess [post]
func (h *ClaimHandler) Reprocess(c *gin.Context) {
	id, ok := parseClaimID(c)
	if !ok {
		return
	}

	claim, err := h.claimService.Reprocess(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, claim)
}

// Export handles GET /api/v1/claims/export
// @Summary Export claim decisions
// @Tags claims
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Decision export"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Security BearerAuth
// @Router /claims/export [get]
func (h *ClaimHandler) Export(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.claimService.Export(c.Request.Context(), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := report.BuildFilename("claims", format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// SupportedDocumentTypes handles GET /api/v1/claims/supported-document-types
// @Summary List supported document types
// @Tags claims
// @Produce json
// @Success 200 {object} Response{data=map[string]string} "Document type descriptions"
// @Router /claims/supported-document-types [get]
func (h *ClaimHandler) SupportedDocumentTypes(c *gin.Context) {
	RespondOK(c, domain.SupportedDocumentTypes)
}

func parseClaimID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid claim ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
