package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/foodbank/internal/apperr"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// envelope wraps user, volunteer and client payloads.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func envelopeResponse(w http.ResponseWriter, status int, data any, message string) {
	jsonResponse(w, status, envelope{Success: true, Data: data, Message: message})
}

// errorBody is the uniform error envelope. Status is "fail" for client
// errors and "error" for server errors.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handlerFunc is an HTTP handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc and is the single place where errors become
// HTTP responses.
func handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	})
}

// writeError translates err into a status code and error envelope. Only
// *apperr.Error messages reach the client; anything else becomes a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("unhandled error", "request_id", RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "error", err)
		jsonResponse(w, http.StatusInternalServerError, errorBody{Status: "error", Message: "Internal server error"})
		return
	}

	status := "fail"
	if e.Status >= http.StatusInternalServerError {
		status = "error"
	}
	if e.Err != nil {
		slog.Error(e.Message, "request_id", RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "status", e.Status, "error", e.Err)
	}
	jsonResponse(w, e.Status, errorBody{Status: status, Message: e.Message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
