// This file implements helpers for reading path values, query strings and
// bodies of API requests.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"
)

// maxJSONBody bounds small JSON payloads such as category edits and goals.
const maxJSONBody = 64 << 10

// multipartMemory is how much of an upload is buffered before spilling to
// temporary files.
const multipartMemory = 8 << 20

// UploadField is the multipart field carrying statement files.
const UploadField = "files"

// requestError is a client mistake reported verbatim with a 400.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// pathKind reads the {kind} path value.
func pathKind(r *http.Request) (core.Kind, error) {
	return core.ParseKind(r.PathValue("kind"))
}

// parseQuery reads the dashboard query from the URL.
func parseQuery(r *http.Request) (dashboard.Query, error) {
	return dashboard.ParseQuery(r.URL.Query())
}

// confirmed reports whether the request carries confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}

// uploadedSources opens every file of the multipart upload. The returned
// closer releases the files and any temporary storage.
func uploadedSources(w http.ResponseWriter, r *http.Request, limit int64) ([]ingest.Source, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(min(limit, multipartMemory)); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, err
		}
		return nil, nil, badRequest("invalid multipart upload: %v", err)
	}
	headers := r.MultipartForm.File[UploadField]
	if len(headers) == 0 {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, badRequest("no files in field %q", UploadField)
	}

	files := make([]multipart.File, 0, len(headers))
	release := func() {
		for _, f := range files {
			f.Close()
		}
		_ = r.MultipartForm.RemoveAll()
	}
	sources := make([]ingest.Source, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("open %s: %w", h.Filename, err)
		}
		files = append(files, f)
		sources = append(sources, ingest.Source{Name: h.Filename, Reader: io.Reader(f)})
	}
	return sources, release, nil
}
