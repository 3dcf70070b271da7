// Package audit persists every accepted user input as a JSON array on disk.
//
// Writes are full-file read-modify-write with no file locking. Two
// concurrent writers can race and the slower one may drop the faster one's
// append; the deployment is single-process so this is accepted.
package audit

import (
	"encoding/json"
	"os"
	"sync"
)

type Record struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type Log struct {
	mu   sync.Mutex
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append reads the current file, appends the record, and rewrites the whole
// file. A missing or unreadable file starts a fresh array.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var records []Record
	if data, err := os.ReadFile(l.path); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			records = nil
		}
	}

	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
