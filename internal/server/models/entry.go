// Package models defines server-side data models persisted in the database
// and the projections returned over the REST API.
package models

import "time"

// Entry kinds. An entry is either a text snippet or a group of files.
const (
	KindText = "text"
	KindFile = "file"
)

// Entry is the unit of persisted content. Entries are immutable once
// created: there is no update path, only delete-and-recreate.
//
// Exactly one of Text/Files is populated, consistent with Kind.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Files     []FileRef `json:"files,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListRow is a denormalized, per-display-unit projection of an Entry.
// A text entry yields one row; a file entry yields one row per file, all
// sharing the owning entry's ID. FileCount lets a client warn that deleting
// one row removes the whole group.
type ListRow struct {
	EntryID    string    `json:"id"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text,omitempty"`
	Name       string    `json:"name,omitempty"`
	StorageKey string    `json:"storageKey,omitempty"`
	FileCount  int       `json:"fileCount,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
