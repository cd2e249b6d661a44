package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/common"
	"github.com/villaresmetals/console/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, l logging.Logger, err error) {
	status := statusFor(err)
	if status >= 500 {
		l.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		l.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, b)
}

func writeRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeRecord[T any](w http.ResponseWriter, r *http.Request, l logging.Logger, schema models.Schema[T], v T) {
	b, err := schema.Encode(v)
	if err != nil {
		writeError(w, r, l, err)
		return
	}
	writeRaw(w, http.StatusOK, b)
}

func writeList[T any](w http.ResponseWriter, r *http.Request, l logging.Logger, schema models.Schema[T], items []T) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range items {
		b, err := schema.Encode(v)
		if err != nil {
			writeError(w, r, l, err)
			return
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	writeRaw(w, http.StatusOK, buf.Bytes())
}
