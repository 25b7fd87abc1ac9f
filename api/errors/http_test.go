package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailerrors "github.com/customeros/mailagent/internal/errors"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{mailerrors.Validation("op", "bad"), http.StatusBadRequest},
		{mailerrors.Lookup("op", assert.AnError), http.StatusUnprocessableEntity},
		{mailerrors.Parse("op", assert.AnError), http.StatusBadGateway},
		{mailerrors.Transport("op", assert.AnError), http.StatusBadGateway},
		{mailerrors.Connection("op", assert.AnError), http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
		{NewMultiErrors(), http.StatusBadRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestRespondWithError_KindAndDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, mailerrors.Connection("imap.dial", assert.AnError))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "connection error", body["error"])
	assert.Contains(t, body["details"], "imap.dial")
}

func TestRespondWithError_MultiErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	errs := NewMultiErrors()
	errs.Add("query", "query is required", nil)
	RespondWithError(c, errs)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request","details":{"query":["query is required"]}}`, w.Body.String())
}
