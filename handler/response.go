package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard JSON body for successful API responses.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// envelopeResponse writes an Envelope with the same status on the wire.
type envelopeResponse struct {
	body Envelope
}

func (e envelopeResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if e.body.Status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.body.Status)
	return json.NewEncoder(w).Encode(e.body)
}

// Success wraps data into the {status, message, data} envelope.
// A zero status means 200 and an empty message falls back to the status text.
// The status is reflected both in the envelope and in the HTTP status code;
// 204 writes no body at all.
//
//	return handler.Success(posts, "Posts loaded", http.StatusOK)
func Success(data any, message string, status int) Response {
	if status == 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return envelopeResponse{body: Envelope{Status: status, Message: message, Data: data}}
}

// OK is Success with status 200.
func OK(data any, message string) Response {
	return Success(data, message, http.StatusOK)
}

// Created is Success with status 201.
func Created(data any, message string) Response {
	return Success(data, message, http.StatusCreated)
}

// Message returns an envelope without data.
func Message(message string, status int) Response {
	return Success(nil, message, status)
}

// NoContent responds 204 with an empty body.
func NoContent() Response {
	return envelopeResponse{body: Envelope{Status: http.StatusNoContent}}
}

// errorResponse renders the error envelope for err.
type errorResponse struct {
	err error
}

func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	WriteError(w, r, e.err, nil)
	return nil
}

// Error responds with the error envelope. Taxonomy errors keep their status
// and message; any other error becomes a generic 500.
//
//	if post == nil {
//		return handler.Error(httperror.NotFound("post not found"))
//	}
func Error(err error) Response {
	return errorResponse{err: err}
}
