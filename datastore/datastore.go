// Package datastore is a small JSON-file key-value store with periodic
// auto-save, atomic writes and rotating backups. Values are stored as-is in
// memory and marshalled on save, so callers that need typed records marshal
// through JSON on read.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Config holds tuning options for a DataStore.
type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	BackupCount      int
	Logger           *log.Logger
}

// DefaultConfig returns the stock configuration for the given file.
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           log.New(os.Stderr, "[datastore] ", log.LstdFlags),
	}
}

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]any
	file         string
	config       *Config
	lastChecksum string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool
}

// New creates a DataStore with the default configuration.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig creates a DataStore, loading existing data from disk when the
// file is present and creating an empty one when it is not.
func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil || config.FilePath == "" {
		return nil, fmt.Errorf("datastore: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("datastore: failed to create directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds := &DataStore{
		data:   make(map[string]any),
		file:   config.FilePath,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := os.Stat(config.FilePath); os.IsNotExist(err) {
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			cancel()
			return nil, fmt.Errorf("datastore: failed to create empty file: %w", err)
		}
	} else if err == nil {
		if err := ds.loadFromFile(); err != nil {
			cancel()
			return nil, fmt.Errorf("datastore: failed to load: %w", err)
		}
	} else {
		cancel()
		return nil, err
	}

	ds.wg.Add(1)
	go ds.autoSave()
	return ds, nil
}

// Add stores a value under key, replacing any previous value.
func (ds *DataStore) Add(key string, value any) {
	if ds.isClosed() {
		return
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
}

// Get retrieves the value stored under key.
func (ds *DataStore) Get(key string) (any, bool) {
	if ds.isClosed() {
		return nil, false
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	value, exists := ds.data[key]
	return value, exists
}

// Delete removes the value stored under key.
func (ds *DataStore) Delete(key string) {
	if ds.isClosed() {
		return
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.data, key)
}

// Keys returns all stored keys.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]string, 0, len(ds.data))
	for k := range ds.data {
		out = append(out, k)
	}
	return out
}

// SaveToFile forces an immediate save to disk.
func (ds *DataStore) SaveToFile() error {
	if ds.isClosed() {
		return fmt.Errorf("datastore is closed")
	}
	return ds.saveToFile()
}

// Close stops the auto-save routine and performs a final save.
func (ds *DataStore) Close() error {
	ds.closeMu.Lock()
	if ds.closed {
		ds.closeMu.Unlock()
		return nil
	}
	ds.closed = true
	ds.closeMu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.saveToFile()
}

func (ds *DataStore) isClosed() bool {
	ds.closeMu.RLock()
	defer ds.closeMu.RUnlock()
	return ds.closed
}

// saveToFile writes the whole map to disk atomically. An unchanged checksum
// skips the write so the auto-save ticker does not churn the disk.
func (ds *DataStore) saveToFile() error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	data, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: failed to marshal: %w", err)
	}

	checksum := checksumOf(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.config.Logger.Printf("Failed to create backup: %v", err)
		}
	}
	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	ds.lastChecksum = checksum
	return nil
}

func (ds *DataStore) loadFromFile() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := os.ReadFile(ds.file)
	if err != nil {
		return err
	}
	var temp map[string]any
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	ds.data = temp
	ds.lastChecksum = checksumOf(data)
	return nil
}

// writeFileAtomic writes through a temp file, fsyncs and renames into place.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	f, err := os.OpenFile(tmpFile, os.O_RDWR, 0644)
	if err != nil {
		os.Remove(tmpFile)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return err
	}
	f.Close()

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}

// createBackup copies the current file aside with a timestamp suffix and
// trims old backups beyond BackupCount.
func (ds *DataStore) createBackup() error {
	if _, err := os.Stat(ds.file); os.IsNotExist(err) {
		return nil
	}

	backupFile := fmt.Sprintf("%s.backup.%s", ds.file, time.Now().Format("20060102_150405"))
	src, err := os.Open(ds.file)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.cleanupOldBackups()
	return nil
}

func (ds *DataStore) cleanupOldBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}
	// The timestamp suffix sorts lexically, oldest first.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-ds.config.BackupCount] {
		os.Remove(path)
	}
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ds.ctx.Done():
			return
		case <-ticker.C:
			if err := ds.saveToFile(); err != nil {
				ds.config.Logger.Printf("Auto-save error: %v", err)
			}
		}
	}
}

func checksumOf(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
