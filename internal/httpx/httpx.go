// Package httpx holds the JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// errorEnvelope is the error body shape: {"errors": ["..."]}.
type errorEnvelope struct {
	Errors []string `json:"errors"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes the error envelope with one entry per message.
func Error(w http.ResponseWriter, status int, messages ...string) {
	JSON(w, status, errorEnvelope{Errors: messages})
}

// Decode reads the request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("malformed JSON at offset %d", syntaxErr.Offset)
		}
		return err
	}
	return nil
}
