package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/validator"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// respondData writes a success envelope {data: ...}.
func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

// respondRaw writes the payload without the data envelope, for documented
// shapes like {exists} and {token}.
func respondRaw(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// respondError maps err to the HTTP taxonomy and writes the error
// envelope. Validation failures carry per-field details; internal errors
// are logged and masked.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	httpErr := mapError(err)

	detail := errorDetail{Code: httpErr.Code, Message: httpErr.Message}
	if ve := validator.Extract(err); len(ve) > 0 {
		detail.Details = ve.Fields()
	}
	if httpErr.Status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}

	writeJSON(w, httpErr.Status, errorEnvelope{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
