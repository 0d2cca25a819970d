// Package api implements the HTTP client for the drop-service REST API.
// It mirrors the wire JSON and knows nothing about how entries are stored.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FileUpload is the metadata sent when requesting upload slots.
type FileUpload struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// FileRef is the metadata confirmed after a successful direct upload.
type FileRef struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Mime       string `json:"mime"`
	StorageKey string `json:"storageKey"`
}

// UploadSlot is one presigned upload grant returned by the server.
type UploadSlot struct {
	Name       string `json:"name"`
	StorageKey string `json:"storageKey"`
	UploadURL  string `json:"uploadUrl"`
	ExpiresIn  int64  `json:"expiresIn"`
}

// Entry echoes the server's persisted entry.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Files     []FileRef `json:"files,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListRow is one display row; file entries repeat their id per file.
type ListRow struct {
	EntryID    string    `json:"id"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text,omitempty"`
	Name       string    `json:"name,omitempty"`
	StorageKey string    `json:"storageKey,omitempty"`
	FileCount  int       `json:"fileCount,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DownloadLink is a presigned GET URL with its lifetime in seconds.
type DownloadLink struct {
	URL       string `json:"downloadUrl"`
	ExpiresIn int64  `json:"expiresIn"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// PresignUploads asks the server for one upload slot per file.
func (c *Client) PresignUploads(ctx context.Context, files []FileUpload) ([]UploadSlot, error) {
	var resp struct {
		Uploads []UploadSlot `json:"uploads"`
	}
	err := c.do(ctx, http.MethodPost, "/api/entries/upload-slots",
		map[string]any{"files": files}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Uploads, nil
}

// CreateTextEntry records a text snippet.
func (c *Client) CreateTextEntry(ctx context.Context, text string) (*Entry, error) {
	var resp struct {
		Entry *Entry `json:"entry"`
	}
	err := c.do(ctx, http.MethodPost, "/api/entries",
		map[string]any{"type": "text", "text": text}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Entry, nil
}

// CreateFileEntry confirms completed uploads as one file-group entry.
func (c *Client) CreateFileEntry(ctx context.Context, files []FileRef) (*Entry, error) {
	var resp struct {
		Entry *Entry `json:"entry"`
	}
	err := c.do(ctx, http.MethodPost, "/api/entries",
		map[string]any{"type": "file", "files": files}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Entry, nil
}

// ListEntries fetches display rows, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]ListRow, error) {
	var rows []ListRow
	if err := c.do(ctx, http.MethodGet, "/api/entries", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DownloadURL requests a presigned GET URL for one of an entry's files.
func (c *Client) DownloadURL(ctx context.Context, entryID, storageKey string) (*DownloadLink, error) {
	var body any
	if storageKey != "" {
		body = map[string]string{"storageKey": storageKey}
	}
	var link DownloadLink
	err := c.do(ctx, http.MethodPost, "/api/entries/"+entryID+"/download-url", body, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteEntry removes an entry and its stored objects.
func (c *Client) DeleteEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+entryID, nil, nil)
}
