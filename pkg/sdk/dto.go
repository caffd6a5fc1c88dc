package sdk

import (
	"encoding/json"
	"net/http"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/essaychat/pkg/transcript"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return NewResponse(http.StatusOK, message, data)
}

// NewResponse creates a successful response with a custom 2xx code
func NewResponse[T any](code int, message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewFailResponse creates a response for requests the client can fix (validation, conflicts)
func NewFailResponse(code int, message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusFail,
		Code:    code,
		Message: message,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	if e, ok := err.(error); ok {
		err = e.Error()
	}

	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Answering service */

// QueryRequest is the body sent to the answering service
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the body returned by the answering service. Response is a pointer so a
// missing field can be told apart from an empty answer
type QueryResponse struct {
	Response *string `json:"response"`
}

// HealthResponse is returned by the answering service health endpoint
type HealthResponse struct {
	Status         string `json:"status"`
	RagInitialized bool   `json:"rag_initialized"`
}

/** Chat API */

// PostMessageRequest represents the request body for submitting a user turn
type PostMessageRequest struct {
	Content string `json:"content"`
}

// PostMessageResponse is returned once a submission has been accepted
type PostMessageResponse struct {
	Accepted bool `json:"accepted"`
	Pending  bool `json:"pending"`
}

// TranscriptResponse is a snapshot of the conversation
type TranscriptResponse struct {
	Turns   []transcript.Turn `json:"turns"`
	Pending bool              `json:"pending"`
}

// BackendStatus is the readiness of the answering service as last observed
type BackendStatus struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	Ready     bool   `json:"ready"`
	CheckedAt string `json:"checked_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthStatusResponse is returned by the chat API health endpoint
type HealthStatusResponse struct {
	Status  string        `json:"status"`
	Backend BackendStatus `json:"backend"`
}
