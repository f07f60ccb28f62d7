package providers

import (
	"beelandr/internal/storage"
	"beelandr/internal/structures"
)

func NewStoreProvider(conf *structures.Config) storage.StoreInterface {
	return storage.NewStore(conf.Storage.QuotaBytes)
}
