package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoErrOk(t *testing.T) {
	expected := &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        1,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data: map[string]any{
				"testkey": "testvalue",
			},
		},
	}

	result := NoErrOK(1, map[string]any{
		"testkey": "testvalue",
	})

	assert.NotNil(t, result, "expected result to be non-nil")
	assert.NotNil(t, result.Response, "expected response to be non-nil")
	assert.Equal(t, expected.Id, result.Id, "expected Id to match")
	assert.WithinDuration(t, expected.Timestamp, result.Timestamp, time.Duration(time.Second), "expected Timestamp to be within 1 second")
	assert.Equal(t, expected.Response.ResponseCode, result.Response.ResponseCode, "expected ResponseCode to match")
	assert.Equal(t, expected.Response.Data, result.Response.Data, "expected Data to match")
}

func TestErrorResponses(t *testing.T) {
	tcases := []struct {
		name         string
		msg          *ServerMessage
		expectedCode int
	}{
		{
			name:         "room not found",
			msg:          ErrRoomNotFound(1),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "room full",
			msg:          ErrRoomFull(1),
			expectedCode: http.StatusConflict,
		},
		{
			name:         "session not found",
			msg:          ErrSessionNotFound(1),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "internal error",
			msg:          ErrInternalError(1),
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "service unavailable",
			msg:          ErrServiceUnavailable(1),
			expectedCode: http.StatusServiceUnavailable,
		},
		{
			name:         "invalid message",
			msg:          ErrInvalidMessage(1),
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotNil(t, tc.msg.Response, "expected response to be non-nil")
			assert.Equal(t, 1, tc.msg.Id, "expected Id to match")
			assert.Equal(t, tc.expectedCode, tc.msg.Response.ResponseCode, "expected ResponseCode to match")
			assert.NotEmpty(t, tc.msg.Response.Error, "expected error string to be set")
		})
	}
}

func TestErrInvalidMessageWithoutId(t *testing.T) {
	msg := ErrInvalidMessage(-1)
	assert.Equal(t, 0, msg.Id, "expected no Id when the request id is unknown")
	assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode, "expected bad request response")
}
