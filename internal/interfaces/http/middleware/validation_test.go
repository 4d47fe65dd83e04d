package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/backend/internal/interfaces/http/dto"
)

type validationProbe struct {
	ClientOpID string `json:"client_op_id" binding:"required,max=8"`
	BranchID   string `json:"branch_id" binding:"omitempty,uuid"`
}

func bindProbe(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var probe validationProbe
	return c.ShouldBindJSON(&probe)
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	err := bindProbe(t, `{"branch_id": "not-a-uuid"}`)
	require.Error(t, err)

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
	}
	assert.Contains(t, fields, "client_op_id")
	assert.Contains(t, fields, "branch_id")
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	err := bindProbe(t, `{"client_op_id": "way-too-long-for-the-limit"}`)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "client_op_id", resp.Error.Details[0].Field)
	assert.Contains(t, resp.Error.Details[0].Message, "at most 8")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	err := bindProbe(t, `{"client_op_id": not-json`)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Set("request_id", "req-42")

	var probe validationProbe
	err := c.ShouldBindJSON(&probe)
	require.Error(t, err)

	HandleValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "req-42")
}
