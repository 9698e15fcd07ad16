package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type DocumentDTO struct {
	Id          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type SignedURLDTO struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}

type Handler struct {
	service Service
	signer  *URLSigner
}

func NewHandler(service Service, signer *URLSigner) *Handler {
	return &Handler{service: service, signer: signer}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log.Debug("Uploading document")
	w.Header().Set("Content-Type", "application/json")

	// the multipart reader itself is capped one byte past the limit; the
	// service rejects anything that actually exceeds it
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	switch {
	case errors.Is(err, ErrNotPDF):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	case errors.Is(err, ErrTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(doc)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	docs, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]DocumentDTO, 0, len(docs))
	for _, doc := range docs {
		dtos = append(dtos, toDTO(doc))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SignedURL answers a time-limited download link for a document the current
// tenant owns.
func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if _, err := h.service.Get(r.Context(), id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	expires, signature := h.signer.Sign(id)
	dto := SignedURLDTO{
		URL:       fmt.Sprintf("/api/document/%s/download?expires=%d&signature=%s", id, expires, signature),
		ExpiresAt: expires,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Download verifies the link signature before streaming the binary.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expiry", http.StatusBadRequest)
		return
	}

	if err := h.signer.Verify(id, expires, r.URL.Query().Get("signature")); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	doc, content, err := h.service.Open(r.Context(), id)
	if errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrFileNotFound) {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if _, err := io.Copy(w, content); err != nil {
		log.Errorf("could not stream document %s: %v", id, err)
	}
}

func toDTO(doc Document) DocumentDTO {
	return DocumentDTO{
		Id:          doc.Id,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		UploadedAt:  doc.UploadedAt,
	}
}
