package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mnemon/mnemon/pkg/models"
)

// Tier file names, per conversation directory.
const (
	activeFile   = "tactical.json"
	memoryFile   = "archive.json"
	rawFile      = "raw_context.json"
	metadataFile = "data.json"
)

// writeJSONFile replaces the file at path with the JSON encoding of v. The
// write goes through a temp file in the same directory followed by a rename,
// so a crash mid-write never leaves a truncated tier behind.
func writeJSONFile(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tier-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) readMessages(id, file string) ([]models.Message, error) {
	var messages []models.Message
	if err := readJSONFile(s.convPath(id, file), &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *Store) readSummaries(id string) ([]models.Summary, error) {
	var summaries []models.Summary
	if err := readJSONFile(s.convPath(id, memoryFile), &summaries); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	return summaries, nil
}
