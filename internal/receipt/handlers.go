package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// maxTextSize bounds the body accepted by the text extraction endpoint
const maxTextSize = int64(1 << 20)

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeDetail writes an error response in the {"detail": ...} shape
func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// handleRoot reports service status and the configured engine
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "receipt-ocr",
		"engine":  s.service.EngineName(),
	})
}

// handleHealth is a liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleOCR recognizes an uploaded receipt image and returns the extracted fields
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB.")
			return
		}
		writeDetail(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeDetail(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	contentType := uploadContentType(header.Header.Get("Content-Type"), header.Filename)
	if !strings.HasPrefix(contentType, "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeDetail(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	result, err := s.service.Scan(r.Context(), header.Filename, data, contentType)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "OCR processing failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleExtract runs field extraction on a plain text body
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Text is too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, "Error reading body")
		return
	}

	writeJSON(w, http.StatusOK, s.service.ExtractText(string(body)))
}

// uploadContentType normalizes the declared content type, falling back to the file extension
func uploadContentType(declared, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".gif":
		return "image/gif"
	default:
		return contentType
	}
}
