// Package gallery keeps the images produced by completed uploads.
//
// Records are immutable once added. There is no per-record delete; the whole
// collection is discarded with Clear. List returns the newest record first.
package gallery

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("image not found")

// Image is what a consumer hands to Add.
type Image struct {
	Name      string
	Size      int64
	MediaType string
	SourceURI string
}

// Record is a stored image. IDs are unique and sort in insertion order.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MediaType string    `json:"mediaType"`
	SourceURI string    `json:"src"`
	AddedAt   time.Time `json:"addedAt"`
}

// Store persists gallery records.
type Store interface {
	Add(ctx context.Context, img Image) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Clear(ctx context.Context) error
}

// SelectionMessage is the acknowledgement shown when a record is picked.
func SelectionMessage(r Record) string {
	return "Selected image: " + r.Name
}
