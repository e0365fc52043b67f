package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"contribledger/storage"
)

// Manager provides a typed key-value view over the raw storage backend. All
// values are JSON encoded; list keys hold string slices used as enumeration
// indexes by the reward engines.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// KVGet decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	raw, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut encodes value and stores it under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(key, raw)
}

// KVDelete removes a key. Deleting an absent key is not an error.
func (m *Manager) KVDelete(key []byte) error {
	return m.db.Delete(key)
}

// KVAppend adds member to the string list stored under key, skipping
// duplicates so indexes stay free of repeated entries.
func (m *Manager) KVAppend(key []byte, member string) error {
	var list []string
	if _, err := m.KVGet(key, &list); err != nil {
		return err
	}
	for _, existing := range list {
		if existing == member {
			return nil
		}
	}
	list = append(list, member)
	return m.KVPut(key, list)
}

// KVGetList decodes the list stored under key into out. Absent keys decode to
// an empty list.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	_, err := m.KVGet(key, out)
	return err
}
