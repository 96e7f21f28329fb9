package staking

import (
	"fmt"
	"os"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/staking/interfaces"

	json "github.com/goccy/go-json"
)

// FileManager moves the whole store through the zstd-compressed JSON
// state file. Writes go to a tmp file first and are renamed into place,
// so a crash mid-save never corrupts the last good state.
type FileManager struct {
	store      *models.Store
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *models.Store, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.store.Export()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
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

	var storage models.StorageV1
	if err := json.Unmarshal(decompressedData, &storage); err != nil {
		return fmt.Errorf("cannot decode state file: %w", err)
	}
	if storage.Version != models.StorageVersion {
		return fmt.Errorf("unsupported state file version %d", storage.Version)
	}

	f.store.Import(&storage)
	f.logger.Infof(providers.TypeApp, "Restored state: %d accounts, %d snapshots",
		f.store.CountAccounts(), f.store.CountSnapshots())
	return nil
}
