package handler

import (
	"encoding/json"
	"io"
	"net/http"
)

func encodeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// jsonResponse writes any value as JSON without the envelope.
type jsonResponse struct {
	status int
	value  any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return encodeJSON(w, j.value)
}

// JSON writes v as-is, for endpoints that must not use the envelope
// (health checks, third-party callbacks).
func JSON(v any, status int) Response {
	if status == 0 {
		status = http.StatusOK
	}
	return jsonResponse{status: status, value: v}
}
