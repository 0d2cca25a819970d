package entries

import (
	"context"

	"github.com/dmitrijs2005/filedrop/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	SelectAll(ctx context.Context) ([]*models.Entry, error)
	Delete(ctx context.Context, id string) error
	StorageKeyExists(ctx context.Context, key string) (bool, error)
}
