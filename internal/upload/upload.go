// Package upload implements the document upload service.
package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var allowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"pptx": {},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// AllowedExtension reports whether the lower-cased suffix after the last dot is accepted.
// Names without a dot are rejected.
func AllowedExtension(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

// SecureFilename reduces filename to a flat ASCII name that is safe to join onto a directory.
// It may return an empty string.
func SecureFilename(filename string) string {
	decomposed := norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// Handler stores uploaded documents in a single directory.
type Handler struct {
	dir      string
	maxBytes int64
	logger   *log.Logger
}

// NewHandler returns a handler writing into dir and accepting request bodies up to maxBytes.
func NewHandler(dir string, maxBytes int64, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{dir: dir, maxBytes: maxBytes, logger: logger}
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP accepts a multipart form with a single "file" part. Parts are streamed
// in order; the first "file" part that carries a filename parameter is stored.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		h.respondTooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	reader, err := r.MultipartReader()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "No file part in the request")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "No file part in the request")
			return
		}
		if err != nil {
			h.respondReadError(w, err)
			return
		}

		filename, isFile := partFilename(part)
		if part.FormName() != "file" || !isFile {
			// Plain form values, including one named "file", are not file parts.
			continue
		}
		h.store(w, filename, part)
		return
	}
}

func (h *Handler) store(w http.ResponseWriter, filename string, src io.Reader) {
	if filename == "" {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "No file selected for uploading")
		return
	}
	if !AllowedExtension(filename) {
		h.respondError(w, http.StatusBadRequest, "UNSUPPORTED_TYPE", "File type not supported")
		return
	}
	name := SecureFilename(filename)
	if name == "" {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid file name")
		return
	}

	written, err := h.save(name, src)
	if err != nil {
		var readErr *sourceError
		if errors.As(err, &readErr) {
			h.respondReadError(w, readErr.err)
			return
		}
		h.logger.Printf("save upload %s: %v", name, err)
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store file")
		return
	}

	h.logger.Printf("stored upload %s (%d bytes)", name, written)
	h.respondJSON(w, http.StatusOK, uploadResponse{
		Message:  fmt.Sprintf("File '%s' uploaded successfully!", name),
		Filename: name,
	})
}

// partFilename returns the raw filename parameter of a part and whether it was present at all.
func partFilename(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}

// sourceError marks a failure reading the request body, as opposed to writing the file.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return "read upload: " + e.err.Error() }

func (e *sourceError) Unwrap() error { return e.err }

type sourceReader struct {
	r io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = &sourceError{err: err}
	}
	return n, err
}

// save writes src to a temporary file in the upload directory and renames it over name,
// so an existing file is only replaced by a complete upload.
func (h *Handler) save(name string, src io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(h.dir, ".upload-*")
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, sourceReader{r: src})
	if err != nil {
		_ = tmp.Close()
		return written, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(h.dir, name)); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}

func (h *Handler) respondReadError(w http.ResponseWriter, err error) {
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		h.respondTooLarge(w)
		return
	}
	h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed multipart request")
}

func (h *Handler) respondTooLarge(w http.ResponseWriter) {
	h.respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", fmt.Sprintf("File exceeds the %d byte limit", h.maxBytes))
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Printf("failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, errorResponse{Code: code, Message: message})
}
