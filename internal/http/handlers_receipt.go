package http

import (
	"net/http"

	"fintrack/internal/apperr"
	"fintrack/internal/services"
)

// requireReceipts fails the request when no object store is configured.
func (s *Server) requireReceipts(w http.ResponseWriter, r *http.Request) bool {
	if s.receipts == nil {
		respondError(r.Context(), w, apperr.InvalidState("receipt storage is not configured"))
		return false
	}
	return true
}

// handleUploadReceipt accepts a multipart form with a single "receipt" file
// and attaches it to the transaction. Re-uploading replaces the previous
// receipt; the old object is cleaned up asynchronously.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireReceipts(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxReceiptSize+(1<<16))
	if err := r.ParseMultipartForm(services.MaxReceiptSize); err != nil {
		respondError(r.Context(), w, apperr.Validation("invalid multipart form or file too large"))
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		respondError(r.Context(), w, apperr.Validation("missing receipt file"))
		return
	}
	defer func() { _ = file.Close() }()

	key, err := s.receipts.Upload(
		r.Context(),
		r.PathValue("id"),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, map[string]string{"receiptFile": key})
}

func (s *Server) handleReceiptURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireReceipts(w, r) {
		return
	}

	url, err := s.receipts.PresignedURL(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !s.requireReceipts(w, r) {
		return
	}

	if err := s.receipts.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}
