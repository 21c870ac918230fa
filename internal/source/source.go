// Package source reads the file-backed inputs of a build: entity records,
// GitHub activity counters, manual tag overrides and the previous run's ids.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/repodex/schema"
)

// maxLineBytes bounds a single JSON Lines record.
const maxLineBytes = 16 << 20

// LoadEntities reads entity records from a JSON array file, or from a JSON Lines
// file when the extension is .jsonl or .ndjson.
func LoadEntities(path string) ([]schema.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entities: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return parseEntityLines(data)
	}

	var entities []schema.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("parsing entities %s: %w", path, err)
	}
	return entities, nil
}

func parseEntityLines(data []byte) ([]schema.Entity, error) {
	var entities []schema.Entity
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var e schema.Entity
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, fmt.Errorf("parsing entity on line %d: %w", line, err)
		}
		entities = append(entities, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning entities: %w", err)
	}
	return entities, nil
}

// previousRun is the subset of projects.json needed to diff runs.
type previousRun struct {
	Projects []struct {
		ID string `json:"id"`
	} `json:"projects"`
}

// LoadPreviousIDs returns the entity ids of a previous projects.json.
// A missing file means there was no previous run and yields no ids.
func LoadPreviousIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading previous projects: %w", err)
	}
	var prev previousRun
	if err := json.Unmarshal(data, &prev); err != nil {
		return nil, fmt.Errorf("parsing previous projects %s: %w", path, err)
	}
	ids := make([]string, 0, len(prev.Projects))
	for _, p := range prev.Projects {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
