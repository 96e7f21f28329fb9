package providers

import "rld/internal/models"

func NewStoreProvider() *models.Store {
	return models.NewStore(models.DefaultLockWait)
}
