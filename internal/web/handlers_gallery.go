package web

import (
	"net/http"

	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/JonMunkholm/leavetrack/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handleGalleryPage renders the gallery with a fresh uploader.
func (s *Server) handleGalleryPage(w http.ResponseWriter, r *http.Request) {
	images, err := s.service.ListGallery(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	info, err := s.service.CreateUploader(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.GalleryPage(templates.UploaderCard(info.ID, info.MaxSizeMB, info.AcceptedTypes), images)
	if err := page.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// handleListGallery returns every image, newest first.
func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	images, err := s.service.ListGallery(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.GalleryGrid(images).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// handleSelectImage returns one image with its "Selected image" notice.
func (s *Server) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	sel, err := s.service.SelectImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.Notice(string(upload.NoticeInfo), sel.Message).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleClearGallery discards the whole collection.
func (s *Server) handleClearGallery(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearGallery(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
