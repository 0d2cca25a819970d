package cli

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/netx"
)

func (a *App) sendText(ctx context.Context, text string) {
	if text == "" {
		a.printf("Usage: text <message>\n")
		return
	}

	entry, err := a.api.CreateTextEntry(ctx, text)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.printf("Saved text entry %s\n", entry.ID)
}

// sendFiles uploads each file through a presigned slot and confirms the
// completed ones as a single entry. A batch is not atomic: a file whose
// direct upload fails is reported and skipped, the rest still go through.
func (a *App) sendFiles(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		a.printf("Usage: file <path> [path...]\n")
		return
	}

	var uploads []api.FileUpload
	var payloads [][]byte
	for _, p := range paths {
		payload, err := os.ReadFile(p)
		if err != nil {
			a.printf("Error reading %s: %v\n", p, err)
			return
		}

		uploads = append(uploads, api.FileUpload{
			Name: filepath.Base(p),
			Size: int64(len(payload)),
			Mime: detectMime(p, payload),
		})
		payloads = append(payloads, payload)
	}

	slots, err := a.api.PresignUploads(ctx, uploads)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}

	// Slots come back one per file in request order. Filenames are not
	// unique within a batch, so they cannot be used to match.
	if len(slots) != len(uploads) {
		a.printf("Error: server returned %d slots for %d files\n", len(slots), len(uploads))
		return
	}

	var confirmed []api.FileRef
	for i, slot := range slots {
		u := uploads[i]

		if err := netx.UploadToPresignedURL(ctx, a.http, slot.UploadURL, u.Mime, payloads[i]); err != nil {
			a.printf("Upload failed for %s: %v\n", u.Name, err)
			continue
		}

		a.printf("Uploaded %s (%d bytes)\n", u.Name, u.Size)
		confirmed = append(confirmed, api.FileRef{
			Name:       u.Name,
			Size:       u.Size,
			Mime:       u.Mime,
			StorageKey: slot.StorageKey,
		})
	}

	if len(confirmed) == 0 {
		a.printf("No files uploaded, nothing to save\n")
		return
	}

	entry, err := a.api.CreateFileEntry(ctx, confirmed)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.printf("Saved file entry %s (%d file(s))\n", entry.ID, len(confirmed))
}

func detectMime(path string, payload []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(payload)
}
