package common

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHttpErrorDefaults(t *testing.T) {
	tests := []struct {
		err    *HttpError
		status int
		msg    string
	}{
		{HTTPErrorBadRequest(""), http.StatusBadRequest, "Bad request"},
		{HTTPErrorNotFound("no route"), http.StatusNotFound, "no route"},
		{HTTPErrorUnprocessable(""), http.StatusUnprocessableEntity, "Unprocessable request"},
		{HTTPErrorTooManyRequests(""), http.StatusTooManyRequests, "Rate limit exceeded"},
		{HTTPErrorInternalError("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode)
		assert.Equal(t, tt.msg, tt.err.Message)
		assert.Contains(t, tt.err.Error(), tt.msg)
	}
}
