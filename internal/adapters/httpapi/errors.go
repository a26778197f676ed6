package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/personal-report/organizer-api/internal/app/books"
	"github.com/personal-report/organizer-api/internal/app/targets"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er errorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps application-layer errors onto the wire envelope.
// Anything that is not an app error is a 500 and gets logged.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var tErr *targets.Error
	if errors.As(err, &tErr) {
		if tErr.Status >= 500 {
			slog.Error("request failed", "code", tErr.Code, "error", err)
		}
		writeError(w, r, tErr.Status, tErr.Code, tErr.Message, tErr.Details)
		return
	}
	var bErr *books.Error
	if errors.As(err, &bErr) {
		if bErr.Status >= 500 {
			slog.Error("request failed", "code", bErr.Code, "error", err)
		}
		writeError(w, r, bErr.Status, bErr.Code, bErr.Message, bErr.Details)
		return
	}

	slog.Error("unhandled error", "error", err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
