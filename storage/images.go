package storage

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/image/webp"

	"stellargather/models"
)

// MaxImageBytes caps uploads before they are decoded.
const MaxImageBytes = 5 << 20

// ImageSpec describes what an uploaded picture must look like.
// A zero Width/Height accepts any size.
type ImageSpec struct {
	Prefix string
	Width  int
	Height int
}

var (
	UserImage      = ImageSpec{Prefix: "user"}
	EventImage     = ImageSpec{Prefix: "event", Width: 600, Height: 400}
	OrganizerImage = ImageSpec{Prefix: "organizer", Width: 200, Height: 200}
)

// Key is the object key for the owner's picture.
func (s ImageSpec) Key(id int64) string {
	return fmt.Sprintf("%s/%d.webp", s.Prefix, id)
}

// Validate checks that data is a webp image with the expected dimensions.
// Failures are *models.RuleError so handlers answer 400.
func (s ImageSpec) Validate(data []byte) error {
	if len(data) == 0 {
		return models.Rule("image is empty")
	}
	if len(data) > MaxImageBytes {
		return models.Rule("image is larger than %d bytes", MaxImageBytes)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.Rule("image must be a webp file")
	}
	if s.Width > 0 && (cfg.Width != s.Width || cfg.Height != s.Height) {
		return models.Rule("image must be %dx%d, got %dx%d", s.Width, s.Height, cfg.Width, cfg.Height)
	}
	return nil
}

// Blobs stores uploaded objects.
type Blobs interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Images validates pictures and writes them to a blob store.
type Images struct {
	blobs Blobs
}

func NewImages(b Blobs) *Images { return &Images{blobs: b} }

// Save validates data against spec and stores it under spec.Key(id).
func (im *Images) Save(ctx context.Context, spec ImageSpec, id int64, data []byte) (string, error) {
	if err := spec.Validate(data); err != nil {
		return "", err
	}
	key := spec.Key(id)
	if err := im.blobs.Put(ctx, key, data, "image/webp"); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return key, nil
}
