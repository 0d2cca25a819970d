// Package services implements the upload orchestration and entry lifecycle
// logic: issuing presigned upload slots, recording entries once uploads are
// confirmed, listing, download links and best-effort deletion.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/dbx"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	sc "github.com/dmitrijs2005/filedrop/internal/server/config"
	"github.com/dmitrijs2005/filedrop/internal/server/models"
	"github.com/dmitrijs2005/filedrop/internal/server/objectstore"
	"github.com/dmitrijs2005/filedrop/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type EntryService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  objectstore.ObjectStore
	config *sc.Config
	logger logging.Logger
}

func NewEntryService(db *sql.DB, repos repomanager.RepositoryManager, store objectstore.ObjectStore, config *sc.Config, logger logging.Logger) *EntryService {
	return &EntryService{
		db:     db,
		repos:  repos,
		store:  store,
		config: config,
		logger: logger.With("module", "entry_service"),
	}
}

// RequestUploadSlots validates the whole batch first and only then issues
// presigned PUT URLs, one per file. A single invalid file rejects the batch
// before any slot is issued. Nothing is written to the entry store here;
// metadata appears only once the client confirms the upload.
func (s *EntryService) RequestUploadSlots(ctx context.Context, files []models.FileUpload) ([]models.UploadSlot, error) {

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", common.ErrorValidation)
	}

	for _, f := range files {
		if f.Name == "" || f.Size == 0 || f.Mime == "" {
			return nil, fmt.Errorf("%w: each file needs name, size, mime", common.ErrorValidation)
		}
		if f.Size < 0 {
			return nil, fmt.Errorf("%w: file %s has negative size", common.ErrorValidation, f.Name)
		}
		if f.Size > s.config.MaxUploadSize {
			return nil, fmt.Errorf("%w: file %s exceeds %d byte limit", common.ErrorValidation, f.Name, s.config.MaxUploadSize)
		}
	}

	expiry := s.config.UploadURLExpiry

	slots := make([]models.UploadSlot, 0, len(files))
	for _, f := range files {
		key := NewStorageKey(f.Name)

		url, err := s.store.PresignPut(ctx, key, f.Mime, expiry)
		if err != nil {
			return nil, fmt.Errorf("error presigning upload for %s: %w", f.Name, err)
		}

		slots = append(slots, models.UploadSlot{
			Name:       f.Name,
			StorageKey: key,
			UploadURL:  url,
			ExpiresIn:  int64(expiry.Seconds()),
		})
	}

	return slots, nil
}

// ConfirmTextEntry persists a text entry and returns it.
func (s *EntryService) ConfirmTextEntry(ctx context.Context, text string) (*models.Entry, error) {

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text required", common.ErrorValidation)
	}

	entry := &models.Entry{
		ID:        uuid.NewString(),
		Kind:      models.KindText,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	repo := s.repos.Entries(s.db)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}

	return entry, nil
}

// ConfirmFileEntry records one file-group entry for uploads the client
// reports as complete. Every storage key is verified against the object
// store before anything is written, so an entry can never reference an
// object that was never uploaded. A key can be claimed by at most one
// entry; confirming a key some entry already references is rejected.
// The entry and all its file rows are inserted in a single transaction.
func (s *EntryService) ConfirmFileEntry(ctx context.Context, files []models.FileRef) (*models.Entry, error) {

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: files array required", common.ErrorValidation)
	}

	for _, f := range files {
		if f.StorageKey == "" {
			return nil, fmt.Errorf("%w: file %s is missing a storage key", common.ErrorValidation, f.Name)
		}
	}

	repo := s.repos.Entries(s.db)
	for _, f := range files {
		used, err := repo.StorageKeyExists(ctx, f.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error checking storage key %s: %w", f.StorageKey, err)
		}
		if used {
			return nil, fmt.Errorf("%w: storage key for %s is already attached to an entry", common.ErrorValidation, f.Name)
		}
	}

	for _, f := range files {
		ok, err := s.store.Exists(ctx, f.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error checking object %s: %w", f.StorageKey, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: no uploaded object found for %s", common.ErrorValidation, f.Name)
		}
	}

	entry := &models.Entry{
		ID:        uuid.NewString(),
		Kind:      models.KindFile,
		Files:     files,
		CreatedAt: time.Now().UTC(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Entries(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}

	return entry, nil
}

// ListEntries returns display rows, newest entry first. A text entry maps
// to one row; a file entry maps to one row per file, each row repeating
// the owning entry's id and the group's file count.
func (s *EntryService) ListEntries(ctx context.Context) ([]models.ListRow, error) {

	repo := s.repos.Entries(s.db)

	entries, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error selecting entries: %w", err)
	}

	rows := make([]models.ListRow, 0, len(entries))
	for _, e := range entries {
		if e.Kind == models.KindText {
			rows = append(rows, models.ListRow{
				EntryID:   e.ID,
				Kind:      e.Kind,
				Text:      e.Text,
				CreatedAt: e.CreatedAt,
			})
			continue
		}
		for _, f := range e.Files {
			rows = append(rows, models.ListRow{
				EntryID:    e.ID,
				Kind:       e.Kind,
				Name:       f.Name,
				StorageKey: f.StorageKey,
				FileCount:  len(e.Files),
				CreatedAt:  e.CreatedAt,
			})
		}
	}

	return rows, nil
}

// RequestDownloadURL issues a presigned GET URL for one stored object.
// The key must belong to the given entry; for a single-file entry the key
// may be omitted. Unknown entries and untracked keys yield
// common.ErrorNotFound, so no URL is ever signed for an object this
// service does not know about.
func (s *EntryService) RequestDownloadURL(ctx context.Context, entryID string, storageKey string) (*models.DownloadLink, error) {

	repo := s.repos.Entries(s.db)

	entry, err := repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Kind != models.KindFile {
		return nil, fmt.Errorf("%w: entry has no files", common.ErrorNotFound)
	}

	if storageKey == "" {
		if len(entry.Files) != 1 {
			return nil, fmt.Errorf("%w: storageKey required for multi-file entries", common.ErrorValidation)
		}
		storageKey = entry.Files[0].StorageKey
	} else {
		found := false
		for _, f := range entry.Files {
			if f.StorageKey == storageKey {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: key does not belong to entry", common.ErrorNotFound)
		}
	}

	expiry := s.config.DownloadURLExpiry

	url, err := s.store.PresignGet(ctx, storageKey, expiry)
	if err != nil {
		return nil, fmt.Errorf("error presigning download for %s: %w", storageKey, err)
	}

	return &models.DownloadLink{URL: url, ExpiresIn: int64(expiry.Seconds())}, nil
}

// DeleteEntry removes an entry. Object payloads are deleted best-effort
// first: a failed object deletion is logged and recorded but never aborts
// the operation. The metadata row is always deleted last, so a crash
// mid-way leaves orphaned objects (recoverable garbage) rather than a
// dangling reference to missing bytes.
func (s *EntryService) DeleteEntry(ctx context.Context, id string) (*models.DeleteResult, error) {

	repo := s.repos.Entries(s.db)

	entry, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.DeleteResult{EntryID: id}

	for _, f := range entry.Files {
		err := s.store.Delete(ctx, f.StorageKey)
		if err != nil {
			s.logger.Warn(ctx, "delete object failed", "storage_key", f.StorageKey, "error", err.Error())
		}
		result.Objects = append(result.Objects, models.ObjectDeleteOutcome{StorageKey: f.StorageKey, Err: err})
	}

	if err := repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("error deleting entry: %w", err)
	}

	return result, nil
}
