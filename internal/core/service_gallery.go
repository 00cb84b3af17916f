package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/logging"
)

// Selection is the result of picking a gallery image.
type Selection struct {
	Image   gallery.Record `json:"image"`
	Message string         `json:"message"`
}

// ListGallery returns every stored image, newest first.
func (s *Service) ListGallery(ctx context.Context) ([]gallery.Record, error) {
	recs, err := s.gallery.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return recs, nil
}

// SelectImage looks up one image and returns the acknowledgement to show.
func (s *Service) SelectImage(ctx context.Context, id string) (Selection, error) {
	rec, err := s.gallery.Get(ctx, id)
	if err != nil {
		return Selection{}, fmt.Errorf("select image %s: %w", id, err)
	}
	return Selection{Image: rec, Message: gallery.SelectionMessage(rec)}, nil
}

// ClearGallery discards the whole collection.
func (s *Service) ClearGallery(ctx context.Context) error {
	if err := s.gallery.Clear(ctx); err != nil {
		return fmt.Errorf("clear gallery: %w", err)
	}
	logging.FromContext(ctx).Info("gallery cleared", RequestMetaFrom(ctx).logArgs()...)
	return nil
}
