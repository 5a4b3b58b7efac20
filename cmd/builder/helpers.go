package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/storage"
)

const maxBodyBytes = 1 << 20

// showMessage builds the HX-Trigger payload the builder UI turns into a
// toast.
func showMessage(message, kind string) string {
	payload, _ := json.Marshal(map[string]any{
		"showMessage": map[string]string{"message": message, "type": kind},
	})
	return string(payload)
}

func (app *builderApplication) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Error writing JSON response", "error", err)
	}
}

func (app *builderApplication) writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(body)); err != nil {
		app.logger.Error("Error writing HTML response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, componentmanager.ErrBuiltinReadOnly):
		return http.StatusForbidden
	case errors.Is(err, componentmanager.ErrInvalidCode):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// errorJSON logs err and writes it as {"error": ...}. Server errors hide
// the detail from the client.
func (app *builderApplication) errorJSON(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		app.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	} else {
		app.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	app.writeJSON(w, status, map[string]string{"error": msg})
}

func (app *builderApplication) fail(w http.ResponseWriter, r *http.Request, err error) {
	app.errorJSON(w, r, statusFor(err), err)
}

// htmxError reports a failed fragment request as a toast and leaves the
// current markup in place.
func (app *builderApplication) htmxError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("HX-Trigger", showMessage(message, "error"))
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(status)
}
