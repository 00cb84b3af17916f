package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/google/uuid"
)

// ErrUploaderNotFound is returned for an unknown or evicted uploader id.
var ErrUploaderNotFound = errors.New("uploader not found")

// galleryReadTimeout bounds the re-read of a completed file.
const galleryReadTimeout = 30 * time.Second

// UploaderInfo describes a newly created uploader.
type UploaderInfo struct {
	ID            string        `json:"id"`
	MaxSizeMB     float64       `json:"maxSizeMB"`
	AcceptedTypes []string      `json:"acceptedTypes"`
	Status        upload.Status `json:"status"`
}

// UploadOptions returns the acceptance rules applied to every selection.
func (s *Service) UploadOptions() upload.Options {
	return s.uploadOpts.WithDefaults()
}

// CreateUploader registers a new Idle uploader whose completed files are
// added to the gallery.
func (s *Service) CreateUploader(ctx context.Context) (UploaderInfo, error) {
	id := uuid.NewString()
	log := logging.WithFields(ctx, "uploader_id", id)

	u := upload.New(upload.Config{
		Simulator: s.sim,
		Reader:    s.reader,
		Limiter:   s.limiter,
		Clock:     s.clock,
		Logger:    s.logger.With("uploader_id", id),
		Hooks: upload.Hooks{
			OnComplete: func(f upload.File) { s.addToGallery(id, f) },
		},
	})

	s.mu.Lock()
	s.uploaders[id] = &uploaderEntry{id: id, u: u, created: s.clock.Now()}
	count := len(s.uploaders)
	s.mu.Unlock()

	log.Debug("uploader created", "uploaders", count)

	opts := s.UploadOptions()
	return UploaderInfo{
		ID:            id,
		MaxSizeMB:     opts.MaxSizeMB,
		AcceptedTypes: opts.AcceptedTypes,
		Status:        u.Status(),
	}, nil
}

// SelectFile hands f to the uploader. Validation failures come back as
// *upload.ValidationError and leave the uploader unchanged.
func (s *Service) SelectFile(ctx context.Context, id string, f upload.File) error {
	u, err := s.uploader(id)
	if err != nil {
		return err
	}

	if err := u.SelectFile(ctx, f, s.uploadOpts); err != nil {
		return fmt.Errorf("select %s: %w", f.Name, err)
	}

	logging.WithFields(ctx, "uploader_id", id).Info("file selected",
		"file", f.Name,
		"size", f.Size,
		"media_type", f.MediaType,
	)
	return nil
}

// ResetUploader returns the uploader to Idle from any state.
func (s *Service) ResetUploader(id string) error {
	u, err := s.uploader(id)
	if err != nil {
		return err
	}
	u.Reset()
	return nil
}

// UploaderStatus returns a snapshot of the uploader.
func (s *Service) UploaderStatus(id string) (upload.Status, error) {
	u, err := s.uploader(id)
	if err != nil {
		return upload.Status{}, err
	}
	return u.Status(), nil
}

// SubscribeUploader streams the uploader's events. The returned function
// unsubscribes and must be called when the caller stops reading.
func (s *Service) SubscribeUploader(id string) (<-chan upload.Event, func(), error) {
	u, err := s.uploader(id)
	if err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := u.Subscribe()
	return ch, unsubscribe, nil
}

// RemoveUploader resets the uploader, closes its subscribers and forgets it.
func (s *Service) RemoveUploader(id string) error {
	s.mu.Lock()
	e, ok := s.uploaders[id]
	delete(s.uploaders, id)
	s.mu.Unlock()

	if !ok {
		return ErrUploaderNotFound
	}
	e.u.Close()
	return nil
}

// UploaderCount returns the number of registered uploaders.
func (s *Service) UploaderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploaders)
}

// ActiveUploadCount returns the number of running simulations.
func (s *Service) ActiveUploadCount() int {
	return s.limiter.ActiveCount()
}

// UploadLimiterStatus returns the shared limiter state.
func (s *Service) UploadLimiterStatus() upload.LimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until no simulation is running or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) uploader(id string) (*upload.Uploader, error) {
	s.mu.RLock()
	e, ok := s.uploaders[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUploaderNotFound, id)
	}
	return e.u, nil
}

// addToGallery reads the completed file again and stores it. Failures are
// logged; the upload itself already succeeded.
func (s *Service) addToGallery(uploaderID string, f upload.File) {
	ctx, cancel := context.WithTimeout(context.Background(), galleryReadTimeout)
	defer cancel()

	log := s.logger.With("uploader_id", uploaderID, "file", f.Name)

	src, err := s.reader.Read(ctx, f)
	if err != nil {
		log.Warn("gallery read failed", "error", err)
		return
	}

	rec, err := s.gallery.Add(ctx, gallery.Image{
		Name:      f.Name,
		Size:      f.Size,
		MediaType: f.MediaType,
		SourceURI: src,
	})
	if err != nil {
		log.Error("gallery add failed", "error", err)
		return
	}
	log.Info("image added to gallery", "image_id", rec.ID)
}
