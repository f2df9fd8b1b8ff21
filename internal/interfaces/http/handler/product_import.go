package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
	"github.com/shopforge/backend/internal/interfaces/http/dto"
)

const (
	// ImportFormField is the multipart field carrying the CSV file
	ImportFormField = "file"
	maxImportSize   = 10 << 20
)

// ProductImporter bulk-creates products from CSV
type ProductImporter interface {
	Import(ctx context.Context, storeID uuid.UUID, r io.Reader, dryRun bool) (*catalogapp.ImportResult, error)
}

// ProductImportHandler handles CSV product imports
type ProductImportHandler struct {
	BaseHandler
	importer ProductImporter
}

// NewProductImportHandler creates a new ProductImportHandler
func NewProductImportHandler(importer ProductImporter) *ProductImportHandler {
	return &ProductImportHandler{importer: importer}
}

// ImportQuery holds the import options
type ImportQuery struct {
	DryRun bool `form:"dry_run"`
}

// Import validates a CSV upload and, unless dry_run is set, creates its
// products. Row problems come back in the result, not as an error status.
// POST /stores/:storeId/products/import
func (h *ProductImportHandler) Import(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var query ImportQuery
	if !h.bindQuery(c, &query) {
		return
	}

	fileHeader, err := c.FormFile(ImportFormField)
	if err != nil {
		h.BadRequest(c, "Missing CSV file in form field \""+ImportFormField+"\"")
		return
	}
	if fileHeader.Size > maxImportSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "CSV file exceeds the 10MB limit")
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); !csvContentType(ct) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "File must be a CSV file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable CSV file")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), storeID, io.LimitReader(file, maxImportSize), query.DryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// csvContentType accepts what browsers and spreadsheet tools send for .csv
func csvContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	switch ct {
	case "", "text/csv", "text/plain", "application/csv", "application/octet-stream", "application/vnd.ms-excel":
		return true
	}
	return false
}
