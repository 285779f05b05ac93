package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Mirror is the durable local copy used for crash/reload resilience.
// Keys are scoped per session (kind + job + round + candidate) so no two
// sessions ever write the same entry.
type Mirror interface {
	Save(key string, v interface{}) error
	// Load unmarshals into v. A missing key is not an error; v is left
	// untouched and ok is false.
	Load(key string, v interface{}) (ok bool, err error)
}

// SessionKey builds the mirror key for one candidate's pass at one round.
func SessionKey(kind, jobID, roundID, candidateID string) string {
	return fmt.Sprintf("%s_%s_%s_%s", kind, jobID, roundID, candidateID)
}

// FileMirror stores one JSON document per key under a base directory.
type FileMirror struct{ base string }

func NewFileMirror(base string) (*FileMirror, error) {
	if base == "" {
		base = "./data/sessions"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FileMirror{base: base}, nil
}

func (m *FileMirror) path(key string) string {
	return filepath.Join(m.base, filepath.Clean(key)+".json")
}

func (m *FileMirror) Save(key string, v interface{}) error {
	if key == "" {
		return fmt.Errorf("empty mirror key")
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path(key), buf, 0o644)
}

func (m *FileMirror) Load(key string, v interface{}) (bool, error) {
	buf, err := os.ReadFile(m.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return false, err
	}
	return true, nil
}

// NopMirror discards writes. Used when durability is disabled.
type NopMirror struct{}

func (NopMirror) Save(string, interface{}) error         { return nil }
func (NopMirror) Load(string, interface{}) (bool, error) { return false, nil }
