// Package server implements the image upload endpoint. The chat core never
// touches the stored files; it only ever sees the public URL handed back here.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadBytes caps image uploads at 5MB.
const maxUploadBytes = 5 << 20

var (
	allowedImageExtensions = map[string]struct{}{
		".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}, ".webp": {},
	}
	allowedImageMIMETypes = map[string]struct{}{
		"image/jpeg": {}, "image/png": {}, "image/gif": {}, "image/webp": {},
	}
)

// uploadResponse is the body of a successful upload reply.
type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// UploadHandler accepts a single multipart image of an allowed format, stores
// it under a fresh random name, and returns its public URL.
func (a *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		writeUploadError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	_, extOK := allowedImageExtensions[ext]
	_, mimeOK := allowedImageMIMETypes[header.Header.Get("Content-Type")]
	if !extOK || !mimeOK {
		writeUploadError(w, http.StatusBadRequest, "only image files are allowed")
		return
	}

	name := uuid.NewString() + ext
	path := filepath.Join(a.cfg.UploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		log.Printf("Error creating upload file %s: %v", path, err)
		writeUploadError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Error writing upload file %s: %v", path, err)
		_ = os.Remove(path)
		writeUploadError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := uploadResponse{Success: true, Filename: name, URL: "/uploads/" + name}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding upload response: %v", err)
	}
}

func writeUploadError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Printf("Error encoding upload error response: %v", err)
	}
}
