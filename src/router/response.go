package router

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type errorResponse struct {
	Type  string `json:"type"`
	Msg   string `json:"message"`
	Error string `json:"error"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type:  errType,
		Msg:   message,
		Error: message,
	}
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("SetResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}
