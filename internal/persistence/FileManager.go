package persistence

import (
	"beelandr/internal/persistence/interfaces"
	"beelandr/internal/providers"
	"beelandr/internal/storage"
	"errors"
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	"time"
)

const snapshotVersion = 1

// Snapshot is the on-disk envelope of the key-value store.
type Snapshot struct {
	Version int                        `json:"version"`
	SavedAt time.Time                  `json:"saved_at"`
	Data    map[string]json.RawMessage `json:"data"`
}

type FileManager struct {
	store      storage.StoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store storage.StoreInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := Snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Data:    f.store.Snapshot(),
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err == nil && snapshot.Version > 0 {
		if snapshot.Data == nil {
			snapshot.Data = make(map[string]json.RawMessage)
		}
		f.store.Replace(snapshot.Data)
		return nil
	}

	// Files written before the envelope existed hold the bare key map.
	f.logger.Warnf(providers.TypeApp, "Store file without version envelope, trying bare key map")
	var bare map[string]json.RawMessage
	if err := json.Unmarshal(decompressedData, &bare); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	if bare == nil {
		return errors.New("store file holds no key map")
	}
	f.store.Replace(bare)
	f.logger.Warnf(providers.TypeApp, "Migration from bare key map successful")
	return nil
}
