package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

// fallbackMediaType is used in data URIs when the file declares no type.
const fallbackMediaType = "application/octet-stream"

// PreviewReader produces a displayable data URI for a file.
type PreviewReader interface {
	// Read converts f synchronously.
	Read(ctx context.Context, f File) (string, error)

	// ReadAsync converts f on another goroutine and calls done exactly once.
	ReadAsync(ctx context.Context, f File, done func(preview string, err error))
}

// DataURIReader encodes file content as a base64 data URI.
//
// When MaxWidth is positive, PNG and JPEG images wider than MaxWidth are
// scaled down and re-encoded as JPEG before encoding.
type DataURIReader struct {
	MaxWidth int
}

// NewDataURIReader returns a reader that scales previews to maxWidth pixels.
// Zero disables scaling.
func NewDataURIReader(maxWidth int) *DataURIReader {
	return &DataURIReader{MaxWidth: maxWidth}
}

// Read returns the data URI for f or a *ReadError.
func (r *DataURIReader) Read(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ReadError{Name: f.Name, Err: err}
	}

	rc, err := f.Open()
	if err != nil {
		return "", &ReadError{Name: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", &ReadError{Name: f.Name, Err: err}
	}

	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = fallbackMediaType
	}

	if r.MaxWidth > 0 {
		if scaled, ok := scaleDown(mediaType, data, r.MaxWidth); ok {
			data = scaled
			mediaType = "image/jpeg"
		}
	}

	return EncodeDataURI(mediaType, data), nil
}

// ReadAsync runs Read on its own goroutine.
func (r *DataURIReader) ReadAsync(ctx context.Context, f File, done func(string, error)) {
	go func() {
		done(r.Read(ctx, f))
	}()
}

// EncodeDataURI formats data as "data:<mediaType>;base64,<payload>".
func EncodeDataURI(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// scaleDown shrinks PNG and JPEG images wider than width. It reports false
// when the image is left as is (other types, undecodable, already narrow).
func scaleDown(mediaType string, data []byte, width int) ([]byte, bool) {
	var (
		src image.Image
		err error
	)

	switch mediaType {
	case "image/png":
		src, err = png.Decode(bytes.NewReader(data))
	case "image/jpeg":
		src, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	srcX := src.Bounds().Dx()
	srcY := src.Bounds().Dy()
	if srcX <= width {
		return nil, false
	}

	ratio := float64(width) / float64(srcX)
	y := max(int(float64(srcY)*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, width, y))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, false
	}
	return out.Bytes(), true
}
