// Package respond writes the JSON bodies of the read API.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"
)

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// Envelope wraps every successful gold payload.
type Envelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta describes a paged list.
type Meta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Encode marshals v inside an Envelope. Nil slices render as [].
func Encode(v any, meta *Meta) ([]byte, error) {
	if v == nil {
		v = []any{}
	} else if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
		v = []any{}
	}
	data, err := json.Marshal(Envelope{Data: v, Meta: meta})
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

// WriteJSON writes encoded bytes with cache and ETag headers.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("ETag", etag)
	h.Set("Vary", "Accept-Encoding")
	if cacheHit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	maxAge := int(ttl.Seconds())
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends a structured JSON error. detail is optional.
func WriteError(w http.ResponseWriter, status int, code, message string, detail ...string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	if len(detail) > 0 {
		resp.Error.Detail = detail[0]
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	WriteJSONObject(w, status, resp)
}

// WriteJSONObject marshals a Go value and writes it uncached. Used for
// health and meta endpoints.
func WriteJSONObject(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
