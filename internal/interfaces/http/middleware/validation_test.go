package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopforge/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createThingRequest struct {
	Name  string `json:"name" binding:"required,min=2"`
	Slug  string `json:"slug" binding:"omitempty,slug"`
	Email string `json:"email" binding:"omitempty,email"`
}

func bindRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.POST("/things", func(c *gin.Context) {
		var req createThingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestFormatValidationErrors(t *testing.T) {
	require.NoError(t, SetupValidator())
	router := bindRouter()

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/things", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var resp dto.Response
		if rec.Body.Len() > 0 {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		}
		return rec, resp
	}

	t.Run("valid", func(t *testing.T) {
		rec, _ := post(`{"name":"Lamp","slug":"desk-lamp"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		rec, resp := post(`{"name":"L","slug":"Not A Slug","email":"nope"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)

		fields := make(map[string]string)
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at least 2 characters", fields["name"])
		assert.Equal(t, "Must contain only lowercase letters, digits and dashes", fields["slug"])
		assert.Equal(t, "Invalid email format", fields["email"])
	})

	t.Run("malformed json", func(t *testing.T) {
		rec, resp := post(`{"name":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}
