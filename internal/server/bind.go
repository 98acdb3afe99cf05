package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

var errInvalidJSON = NewHTTPError(http.StatusBadRequest, "invalid_json", "request body is not valid JSON")

// decodeJSON binds a JSON request body into v. Unknown fields and trailing
// data are rejected so malformed payloads fail loudly.
func decodeJSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}
