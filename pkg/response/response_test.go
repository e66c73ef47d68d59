package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONEnvelope(t *testing.T) {
	c, rec := newTestContext()
	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1}, map[string]interface{}{"cache_hit": false})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":["a"],"pagination":{"page":1,"page_size":10,"total_count":1},"meta":{"cache_hit":false}}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	c, rec := newTestContext()
	Error(c, appErrors.Clone(appErrors.ErrNotFound, "user not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"user not found","status":404}}`, rec.Body.String())
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsInternalCause(t *testing.T) {
	c, rec := newTestContext()
	Error(c, errors.New("mongo down"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrInternal.Code, body.Error.Code)
	require.Len(t, c.Errors, 1)
	assert.EqualError(t, c.Errors[0].Err, "mongo down")
}

func TestCreatedEmpty(t *testing.T) {
	c, rec := newTestContext()
	CreatedEmpty(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
