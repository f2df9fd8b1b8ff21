package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/csvimport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductImporter records the uploaded CSV as a string
type MockProductImporter struct {
	mock.Mock
}

func (m *MockProductImporter) Import(ctx context.Context, storeID uuid.UUID, r io.Reader, dryRun bool) (*catalogapp.ImportResult, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, storeID, string(data), dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImportResult), args.Error(1)
}

func setupImportRouter(importer *MockProductImporter) *gin.Engine {
	h := NewProductImportHandler(importer)
	r := gin.New()
	r.POST("/stores/:storeId/products/import", h.Import)
	return r
}

func multipartCSV(t *testing.T, field, contentType, data string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="products.csv"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestProductImportHandler_Import(t *testing.T) {
	storeID := uuid.New()
	path := "/stores/" + storeID.String() + "/products/import"
	csv := "product,sku,price\nMug,MUG-1,9.50\n"

	send := func(importer *MockProductImporter, url, field, contentType string) *httptest.ResponseRecorder {
		body, ct := multipartCSV(t, field, contentType, csv)
		req := httptest.NewRequest(http.MethodPost, url, body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupImportRouter(importer).ServeHTTP(w, req)
		return w
	}

	t.Run("dry run", func(t *testing.T) {
		importer := new(MockProductImporter)
		importer.On("Import", mock.Anything, storeID, csv, true).
			Return(&catalogapp.ImportResult{DryRun: true, TotalRows: 1, ValidRows: 1, Products: 1}, nil)

		w := send(importer, path+"?dry_run=true", ImportFormField, "text/csv")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["dry_run"])
		assert.Equal(t, float64(1), data["valid_rows"])
		importer.AssertExpectations(t)
	})

	t.Run("row errors are a successful response", func(t *testing.T) {
		importer := new(MockProductImporter)
		importer.On("Import", mock.Anything, storeID, csv, false).Return(&catalogapp.ImportResult{
			TotalRows: 1, ErrorRows: 1, TotalErrors: 1,
			Errors: []csvimport.RowError{{Row: 2, Column: "sku", Code: csvimport.CodeAlreadyExists, Message: "taken"}},
		}, nil)

		w := send(importer, path, ImportFormField, "text/csv; charset=utf-8")

		assert.Equal(t, http.StatusOK, w.Code)
		errs := decodeResponse(t, w).Data.(map[string]any)["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "ALREADY_EXISTS", errs[0].(map[string]any)["code"])
	})

	t.Run("missing file field", func(t *testing.T) {
		importer := new(MockProductImporter)

		w := send(importer, path, "upload", "text/csv")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not a csv", func(t *testing.T) {
		importer := new(MockProductImporter)

		w := send(importer, path, ImportFormField, "image/png")

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad file", func(t *testing.T) {
		importer := new(MockProductImporter)
		importer.On("Import", mock.Anything, storeID, csv, false).
			Return(nil, shared.NewDomainError("INVALID_IMPORT_FILE", "Missing required columns: sku"))

		w := send(importer, path, ImportFormField, "text/csv")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_VALIDATION", decodeResponse(t, w).Error.Code)
	})
}

func TestCSVContentType(t *testing.T) {
	for _, ct := range []string{"", "text/csv", "TEXT/CSV; charset=utf-8", "application/vnd.ms-excel", "application/octet-stream"} {
		assert.True(t, csvContentType(ct), ct)
	}
	for _, ct := range []string{"image/png", "application/json"} {
		assert.False(t, csvContentType(ct), ct)
	}
}
