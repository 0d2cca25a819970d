package models

// FileUpload describes one file a client intends to upload. It carries the
// client-declared metadata only; no storage key exists yet.
type FileUpload struct {
	// Name is the original client-supplied filename (display only).
	Name string `json:"name"`
	// Size is the declared byte count.
	Size int64 `json:"size"`
	// Mime is the client-declared content type.
	Mime string `json:"mime"`
}

// FileRef is the persisted metadata for one uploaded file, embedded within
// an entry. The bytes themselves live in object storage under StorageKey.
type FileRef struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
	// StorageKey is server-generated and never client-chosen, so repeated
	// uploads of the same filename cannot collide or overwrite.
	StorageKey string `json:"storageKey"`
}

// UploadSlot is a one-file grant for a client-direct PUT: the key the bytes
// must land under and a presigned URL honored until ExpiresIn elapses.
type UploadSlot struct {
	Name       string `json:"name"`
	StorageKey string `json:"storageKey"`
	UploadURL  string `json:"uploadUrl"`
	// ExpiresIn is the URL lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// DownloadLink is a presigned GET URL for a stored object.
type DownloadLink struct {
	URL string `json:"downloadUrl"`
	// ExpiresIn is the URL lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// ObjectDeleteOutcome records the result of one best-effort object deletion.
type ObjectDeleteOutcome struct {
	StorageKey string
	Err        error
}

// DeleteResult describes what happened while deleting an entry. The overall
// operation succeeds even when individual object deletions fail; such
// objects are orphaned garbage, not a fatal error.
type DeleteResult struct {
	EntryID string
	Objects []ObjectDeleteOutcome
}

// Failed returns the outcomes for objects that could not be deleted.
func (r *DeleteResult) Failed() []ObjectDeleteOutcome {
	var failed []ObjectDeleteOutcome
	for _, o := range r.Objects {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
