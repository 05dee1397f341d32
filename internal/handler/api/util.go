package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, msg string, err error) {
	ctx := context.Background()
	if err != nil {
		logger.Errorf(ctx, "❌  %s: %v", msg, err)
	} else {
		logger.Error(ctx, "❌  "+msg)
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, status, ErrorResponse{Error: msg})
}

// WriteJobError renders a *joberr.Error using its own HTTP status and error
// code, per spec.md §4.G's `{error, code, details?}` error body shape. Any
// other error is treated as internal.
func WriteJobError(w http.ResponseWriter, err error) {
	ctx := context.Background()
	jerr, ok := joberr.As(err)
	if !ok {
		logger.Errorf(ctx, "❌  unhandled error: %v", err)
		w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
		RespondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: string(joberr.KindInternal)})
		return
	}
	logger.Errorf(ctx, "❌  %s: %s", jerr.Kind, jerr.Message)
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, jerr.HTTPStatus(), ErrorResponse{Error: jerr.Message, Code: string(jerr.Kind), Details: jerr.Details})
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to encode JSON response: %v", err)
	}
}

func RespondRawJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to write JSON payload: %v", err)
	}
}
