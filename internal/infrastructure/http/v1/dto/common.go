// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import "recaudo/internal/core/id"

// DataResponse wraps a result with a status line.
type DataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// NewDataResponse creates an ok response with payload.
func NewDataResponse(message string, data any) DataResponse {
	return DataResponse{Status: "ok", Message: message, Data: data}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
