package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/JonMunkholm/leavetrack/internal/web/templates"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
)

// sseHeartbeat keeps idle event streams open through proxies.
const sseHeartbeat = 15 * time.Second

// handleCreateUploader registers a new Idle uploader.
func (s *Server) handleCreateUploader(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.CreateUploader(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_ = templates.UploaderCard(info.ID, info.MaxSizeMB, info.AcceptedTypes).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleUploaderStatus returns a snapshot of one uploader.
func (s *Server) handleUploaderStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.UploaderStatus(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUploadsStatus reports how many uploaders exist and the shared slots.
func (s *Server) handleUploadsStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uploaders": s.service.UploaderCount(),
		"limiter":   s.service.UploadLimiterStatus(),
	})
}

// handleSelectFile reads the multipart "file" part and starts the simulated
// upload. At most the size limit plus one byte is buffered, which is enough
// for the validator to reject an oversize file.
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, err := readFilePart(r, s.cfg.Upload.MaxBytes())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.SelectFile(r.Context(), id, f); err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.service.UploaderStatus(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// readFilePart streams the request until the "file" part and buffers at
// most limit+1 bytes of it. A part without a specific Content-Type gets
// its type sniffed from the content.
func readFilePart(r *http.Request, limit int64) (upload.File, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return upload.File{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return upload.File{}, errNoFile
		}
		if err != nil {
			return upload.File{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, limit+1))
		part.Close()
		if err != nil {
			return upload.File{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}

		mediaType := part.Header.Get("Content-Type")
		if mediaType == "" || mediaType == "application/octet-stream" {
			mediaType, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
		}
		return upload.NewFile(part.FileName(), mediaType, data), nil
	}
}

// handleResetUploader returns the uploader to Idle.
func (s *Server) handleResetUploader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.ResetUploader(id); err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.service.UploaderStatus(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleRemoveUploader forgets an uploader, closing its event streams.
func (s *Server) handleRemoveUploader(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveUploader(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploaderEvents streams uploader events via Server-Sent Events.
//
// The first event is a "status" snapshot. Each later event is named after
// its type (state, progress, preview, notice). When the uploader is removed
// the stream ends with a "closed" event.
func (s *Server) handleUploaderEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	events, unsubscribe, err := s.service.SubscribeUploader(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer unsubscribe()

	st, err := s.service.UploaderStatus(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	send := func(name string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	log := logging.WithFields(r.Context(), "uploader_id", id)
	if err := send("status", st); err != nil {
		log.Warn("sse: streaming not supported", "error", err)
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = send("closed", struct{}{})
				return
			}
			if err := send(string(ev.Type), ev); err != nil {
				log.Debug("sse: client gone", "error", err)
				return
			}

		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
