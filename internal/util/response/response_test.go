package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginatedRecorder(t *testing.T, page, perPage int, total int64) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Paginated(ctx, []string{}, page, perPage, total)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) Envelope {
	var envelope Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func Test_Paginated_PerPageZero_DoesNotPanic(t *testing.T) {
	recorder := paginatedRecorder(t, 1, 0, 7)

	assert.Equal(t, http.StatusOK, recorder.Code)

	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 1, envelope.Meta.PerPage)
	assert.Equal(t, 7, envelope.Meta.TotalPages)
}

func Test_Paginated_NegativePage_ClampedToFirst(t *testing.T) {
	recorder := paginatedRecorder(t, -3, 10, 25)

	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 1, envelope.Meta.CurrentPage)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
}

func Test_Paginated_ExactMultiple_NoExtraPage(t *testing.T) {
	recorder := paginatedRecorder(t, 1, 10, 30)

	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
}
