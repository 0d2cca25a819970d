package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/dbx"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/config"
	"github.com/dmitrijs2005/filedrop/internal/server/models"
	"github.com/dmitrijs2005/filedrop/internal/server/repositories/entries"
	"github.com/dmitrijs2005/filedrop/internal/server/repositories/repomanager"
)

// -------- test fakes --------

type fakeEntriesRepo struct {
	entries.Repository

	created   []*models.Entry
	createErr error

	byID   *models.Entry
	getErr error

	all    []*models.Entry
	allErr error

	deleted   []string
	deleteErr error

	keyExists map[string]bool
	keyErr    error
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEntriesRepo) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID, nil
}

func (f *fakeEntriesRepo) SelectAll(ctx context.Context) ([]*models.Entry, error) {
	return f.all, f.allErr
}

func (f *fakeEntriesRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEntriesRepo) StorageKeyExists(ctx context.Context, key string) (bool, error) {
	if f.keyErr != nil {
		return false, f.keyErr
	}
	return f.keyExists[key], nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	e *fakeEntriesRepo
}

func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository { return m.e }

type fakeStore struct {
	putURL  string
	putErr  error
	putKeys []string

	getURL  string
	getErr  error
	getKeys []string

	deleteErrs map[string]error
	deleted    []string

	exists    map[string]bool
	existsErr error
}

func (f *fakeStore) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return f.putURL + key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.getKeys = append(f.getKeys, key)
	return f.getURL + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErrs != nil {
		return f.deleteErrs[key]
	}
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.exists == nil {
		return true, nil
	}
	return f.exists[key], nil
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newService(t *testing.T, db *sql.DB, m *fakeRepoManager, store *fakeStore) *EntryService {
	t.Helper()
	cfg := &config.Config{
		MaxUploadSize:     100 << 20,
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 24 * time.Hour,
	}
	return NewEntryService(db, m, store, cfg, logging.NewNop())
}

// -------- tests --------

func TestRequestUploadSlots_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := &fakeStore{putURL: "https://s3.example/"}
	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{}}, store)

	files := []models.FileUpload{
		{Name: "report.pdf", Size: 1024, Mime: "application/pdf"},
		{Name: "report.pdf", Size: 2048, Mime: "application/pdf"},
	}

	slots, err := s.RequestUploadSlots(context.Background(), files)
	if err != nil {
		t.Fatalf("RequestUploadSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("want 2 slots, got %d", len(slots))
	}
	// same filename must still yield distinct keys
	if slots[0].StorageKey == slots[1].StorageKey {
		t.Fatalf("duplicate storage keys: %q", slots[0].StorageKey)
	}
	for i, slot := range slots {
		if slot.Name != files[i].Name {
			t.Fatalf("slot %d name: %q", i, slot.Name)
		}
		if slot.UploadURL != "https://s3.example/"+slot.StorageKey {
			t.Fatalf("slot %d url: %q", i, slot.UploadURL)
		}
		if slot.ExpiresIn != int64((15 * time.Minute).Seconds()) {
			t.Fatalf("slot %d expiry: %d", i, slot.ExpiresIn)
		}
	}
}

func TestRequestUploadSlots_RejectsWholeBatch(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := &fakeStore{}
	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{}}, store)

	tests := []struct {
		name  string
		files []models.FileUpload
	}{
		{"empty batch", nil},
		{"missing name", []models.FileUpload{
			{Name: "ok.txt", Size: 1, Mime: "text/plain"},
			{Size: 1, Mime: "text/plain"},
		}},
		{"missing mime", []models.FileUpload{
			{Name: "ok.txt", Size: 1},
		}},
		{"negative size", []models.FileUpload{
			{Name: "ok.txt", Size: 1, Mime: "text/plain"},
			{Name: "bad.txt", Size: -1, Mime: "text/plain"},
		}},
		{"over limit", []models.FileUpload{
			{Name: "ok.txt", Size: 1, Mime: "text/plain"},
			{Name: "big.bin", Size: (100 << 20) + 1, Mime: "application/octet-stream"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RequestUploadSlots(context.Background(), tt.files)
			if !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}

	// one bad file means no slot was issued for the good ones either
	if len(store.putKeys) != 0 {
		t.Fatalf("slots issued despite rejection: %v", store.putKeys)
	}
}

func TestRequestUploadSlots_PresignError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := &fakeStore{putErr: errBoom{}}
	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{}}, store)

	_, err := s.RequestUploadSlots(context.Background(), []models.FileUpload{
		{Name: "a.txt", Size: 1, Mime: "text/plain"},
	})
	if err == nil || !strings.Contains(err.Error(), "error presigning upload") {
		t.Fatalf("want wrapped presign error, got %v", err)
	}
}

func TestConfirmTextEntry(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeEntriesRepo{}
	s := newService(t, db, &fakeRepoManager{e: repo}, &fakeStore{})

	entry, err := s.ConfirmTextEntry(context.Background(), "  hello world  ")
	if err != nil {
		t.Fatalf("ConfirmTextEntry error: %v", err)
	}
	if entry.Kind != models.KindText || entry.Text != "hello world" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatalf("id/timestamp not set: %+v", entry)
	}
	if len(repo.created) != 1 || repo.created[0] != entry {
		t.Fatalf("unexpected create calls: %+v", repo.created)
	}

	_, err = s.ConfirmTextEntry(context.Background(), "   ")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error for blank text, got %v", err)
	}
}

func TestConfirmFileEntry_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeEntriesRepo{}
	store := &fakeStore{exists: map[string]bool{"uploads/1-a-x.txt": true}}
	s := newService(t, db, &fakeRepoManager{e: repo}, store)

	files := []models.FileRef{
		{Name: "x.txt", Size: 3, Mime: "text/plain", StorageKey: "uploads/1-a-x.txt"},
	}
	entry, err := s.ConfirmFileEntry(context.Background(), files)
	if err != nil {
		t.Fatalf("ConfirmFileEntry error: %v", err)
	}
	if entry.Kind != models.KindFile || len(entry.Files) != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(repo.created) != 1 {
		t.Fatalf("unexpected create calls: %+v", repo.created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestConfirmFileEntry_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeEntriesRepo{}
	store := &fakeStore{exists: map[string]bool{}}
	s := newService(t, db, &fakeRepoManager{e: repo}, store)

	_, err := s.ConfirmFileEntry(context.Background(), nil)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error for empty files, got %v", err)
	}

	_, err = s.ConfirmFileEntry(context.Background(), []models.FileRef{{Name: "x.txt"}})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error for missing key, got %v", err)
	}

	// the reported key has no object behind it
	_, err = s.ConfirmFileEntry(context.Background(), []models.FileRef{
		{Name: "x.txt", StorageKey: "uploads/ghost"},
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error for missing object, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("entry created despite rejection: %+v", repo.created)
	}
}

func TestConfirmFileEntry_RejectsReusedKey(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// the key is already attached to an existing entry
	repo := &fakeEntriesRepo{keyExists: map[string]bool{"uploads/1-a-x.txt": true}}
	store := &fakeStore{exists: map[string]bool{"uploads/1-a-x.txt": true}}
	s := newService(t, db, &fakeRepoManager{e: repo}, store)

	_, err := s.ConfirmFileEntry(context.Background(), []models.FileRef{
		{Name: "x.txt", StorageKey: "uploads/1-a-x.txt"},
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error for reused key, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("entry created despite rejection: %+v", repo.created)
	}
}

func TestConfirmFileEntry_TxRollbackOnCreateError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeEntriesRepo{createErr: errBoom{}}
	s := newService(t, db, &fakeRepoManager{e: repo}, &fakeStore{})

	_, err := s.ConfirmFileEntry(context.Background(), []models.FileRef{
		{Name: "x.txt", StorageKey: "uploads/1-a-x.txt"},
	})
	if err == nil || !strings.Contains(err.Error(), "error creating entry:") {
		t.Fatalf("want wrapped tx error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestListEntries_Denormalizes(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	now := time.Now().UTC()
	repo := &fakeEntriesRepo{all: []*models.Entry{
		{ID: "e2", Kind: models.KindFile, CreatedAt: now, Files: []models.FileRef{
			{Name: "a.txt", StorageKey: "uploads/1-a"},
			{Name: "b.txt", StorageKey: "uploads/1-b"},
		}},
		{ID: "e1", Kind: models.KindText, Text: "hi", CreatedAt: now.Add(-time.Hour)},
	}}
	s := newService(t, db, &fakeRepoManager{e: repo}, &fakeStore{})

	rows, err := s.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	// both file rows carry the same entry id and the group size
	if rows[0].EntryID != "e2" || rows[1].EntryID != "e2" {
		t.Fatalf("file rows ids: %q %q", rows[0].EntryID, rows[1].EntryID)
	}
	if rows[0].FileCount != 2 || rows[1].FileCount != 2 {
		t.Fatalf("file counts: %d %d", rows[0].FileCount, rows[1].FileCount)
	}
	if rows[0].Name != "a.txt" || rows[1].Name != "b.txt" {
		t.Fatalf("file row names: %q %q", rows[0].Name, rows[1].Name)
	}
	if rows[2].EntryID != "e1" || rows[2].Text != "hi" || rows[2].FileCount != 0 {
		t.Fatalf("text row: %+v", rows[2])
	}
}

func TestRequestDownloadURL(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	entry := &models.Entry{ID: "e1", Kind: models.KindFile, Files: []models.FileRef{
		{Name: "a.txt", StorageKey: "uploads/1-a"},
		{Name: "b.txt", StorageKey: "uploads/1-b"},
	}}
	store := &fakeStore{getURL: "https://s3.example/"}
	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{byID: entry}}, store)

	link, err := s.RequestDownloadURL(context.Background(), "e1", "uploads/1-b")
	if err != nil {
		t.Fatalf("RequestDownloadURL error: %v", err)
	}
	if link.URL != "https://s3.example/uploads/1-b" {
		t.Fatalf("unexpected url: %q", link.URL)
	}
	if link.ExpiresIn != int64((24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected expiry: %d", link.ExpiresIn)
	}

	// a key the entry does not track must never be signed
	_, err = s.RequestDownloadURL(context.Background(), "e1", "uploads/other")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found for foreign key, got %v", err)
	}

	// multi-file entries require an explicit key
	_, err = s.RequestDownloadURL(context.Background(), "e1", "")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error without key, got %v", err)
	}
}

func TestRequestDownloadURL_SingleFileDefaultsKey(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	entry := &models.Entry{ID: "e1", Kind: models.KindFile, Files: []models.FileRef{
		{Name: "a.txt", StorageKey: "uploads/1-a"},
	}}
	store := &fakeStore{getURL: "https://s3.example/"}
	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{byID: entry}}, store)

	link, err := s.RequestDownloadURL(context.Background(), "e1", "")
	if err != nil {
		t.Fatalf("RequestDownloadURL error: %v", err)
	}
	if link.URL != "https://s3.example/uploads/1-a" {
		t.Fatalf("unexpected url: %q", link.URL)
	}
}

func TestRequestDownloadURL_NotFoundCases(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{getErr: common.ErrorNotFound}}, &fakeStore{})
	_, err := s.RequestDownloadURL(context.Background(), "missing", "")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found for unknown entry, got %v", err)
	}

	textEntry := &models.Entry{ID: "e1", Kind: models.KindText, Text: "hi"}
	s2 := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{byID: textEntry}}, &fakeStore{})
	_, err = s2.RequestDownloadURL(context.Background(), "e1", "")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found for text entry, got %v", err)
	}
}

func TestDeleteEntry_BestEffortObjects(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	entry := &models.Entry{ID: "e1", Kind: models.KindFile, Files: []models.FileRef{
		{Name: "a.txt", StorageKey: "uploads/1-a"},
		{Name: "b.txt", StorageKey: "uploads/1-b"},
	}}
	repo := &fakeEntriesRepo{byID: entry}
	store := &fakeStore{deleteErrs: map[string]error{"uploads/1-a": errBoom{}}}
	s := newService(t, db, &fakeRepoManager{e: repo}, store)

	result, err := s.DeleteEntry(context.Background(), "e1")
	if err != nil {
		t.Fatalf("DeleteEntry error: %v", err)
	}

	// object failure does not block deleting the record
	if len(repo.deleted) != 1 || repo.deleted[0] != "e1" {
		t.Fatalf("record not deleted: %+v", repo.deleted)
	}
	if len(store.deleted) != 2 {
		t.Fatalf("want both objects attempted, got %v", store.deleted)
	}
	failed := result.Failed()
	if len(failed) != 1 || failed[0].StorageKey != "uploads/1-a" {
		t.Fatalf("unexpected failed outcomes: %+v", failed)
	}
}

func TestDeleteEntry_UnknownID(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newService(t, db, &fakeRepoManager{e: &fakeEntriesRepo{getErr: common.ErrorNotFound}}, &fakeStore{})

	_, err := s.DeleteEntry(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestDeleteEntry_RecordDeleteError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	entry := &models.Entry{ID: "e1", Kind: models.KindText, Text: "hi"}
	repo := &fakeEntriesRepo{byID: entry, deleteErr: errBoom{}}
	s := newService(t, db, &fakeRepoManager{e: repo}, &fakeStore{})

	_, err := s.DeleteEntry(context.Background(), "e1")
	if err == nil || !strings.Contains(err.Error(), "error deleting entry:") {
		t.Fatalf("want wrapped error, got %v", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
