// Package templates holds the HTML components rendered by the web server.
//
// Components are plain templ.Components so handlers can render them with
// templ.Handler or directly into a response writer. Every dynamic value is
// escaped with templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/a-h/templ"
)

// ErrorAlert renders an error fragment for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// Notice renders a one-line notification such as "Selected image: cat.png".
func Notice(level, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="notice notice-%s" role="status">%s</div>`,
			templ.EscapeString(level), templ.EscapeString(message))
		return err
	})
}

// UploaderCard renders the drop zone for one uploader instance.
func UploaderCard(id string, maxSizeMB float64, accepted []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="uploader" id="uploader-%[1]s" data-uploader-id="%[1]s" data-events="/api/uploaders/%[1]s/events">`+
			`<form hx-post="/api/uploaders/%[1]s/file" hx-encoding="multipart/form-data" hx-target="#uploader-%[1]s-notice">`+
			`<input type="file" name="file" accept="%[2]s">`+
			`<p class="hint">Up to %[3]gMB. Accepted: %[4]s</p>`+
			`</form>`+
			`<progress max="100" value="0"></progress>`+
			`<div id="uploader-%[1]s-notice"></div>`+
			`<button type="button" hx-post="/api/uploaders/%[1]s/reset">Reset</button>`+
			`</section>`,
			templ.EscapeString(id),
			templ.EscapeString(strings.Join(accepted, ",")),
			maxSizeMB,
			templ.EscapeString(strings.Join(accepted, ", ")),
		)
		return err
	})
}

// GalleryGrid renders the stored images, newest first.
func GalleryGrid(images []gallery.Record) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(images) == 0 {
			_, err := io.WriteString(w, `<p class="gallery-empty">No images uploaded yet</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<ul class="gallery-grid">`); err != nil {
			return err
		}
		for _, img := range images {
			_, err := fmt.Fprintf(w,
				`<li><button type="button" hx-get="/api/gallery/%[1]s" hx-target="#gallery-notice">`+
					`<img src="%[2]s" alt="%[3]s"></button><span>%[3]s</span></li>`,
				templ.EscapeString(img.ID),
				templ.EscapeString(img.SourceURI),
				templ.EscapeString(img.Name),
			)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// GalleryPage is the full gallery document with one uploader and the grid.
func GalleryPage(uploader templ.Component, images []gallery.Record) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<title>Image Gallery</title></head><body><main><h1>Image Gallery</h1>`); err != nil {
			return err
		}
		if err := uploader.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="gallery-notice"></div>`); err != nil {
			return err
		}
		if err := GalleryGrid(images).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
