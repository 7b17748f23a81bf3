// Package store provides the durable cache backends for the assistant's
// persisted envelope. Every backend writes the envelope as one atomic blob
// under a fixed key; saves are best-effort and never a source of truth.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"lekha-gateway/internal/pkg/logger"
	"lekha-gateway/pkg/assistant"
)

// StorageKey is the fixed key the envelope lives under, across all backends.
const StorageKey = "lekha-chat-state"

// FileStore persists the envelope as a JSON file. Writes go through a temp
// file plus rename so a crash mid-write never leaves a torn blob.
type FileStore struct {
	path string
	log  logger.ILogger
}

func NewFileStore(dir string, log logger.ILogger) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, StorageKey+".json"),
		log:  log,
	}
}

func (s *FileStore) Save(env *assistant.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		s.log.Warn("store", "failed to encode state", map[string]interface{}{"error": err.Error()})
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.log.Warn("store", "failed to write state", map[string]interface{}{"path": tmp, "error": err.Error()})
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn("store", "failed to replace state", map[string]interface{}{"path": s.path, "error": err.Error()})
	}
}

func (s *FileStore) Load() (*assistant.Envelope, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("store", "failed to read state", map[string]interface{}{"path": s.path, "error": err.Error()})
		}
		return nil, false
	}

	var env assistant.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Warn("store", "state file is corrupt, ignoring", map[string]interface{}{"path": s.path, "error": err.Error()})
		return nil, false
	}
	return &env, true
}
