package storage

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/graphkeep/graphkeep/internal/models"
)

// FileStore maps a whole knowledge graph to and from one line-delimited JSON
// file. The path is fixed at construction; FileStore holds no open handle and
// no cached state between calls.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path. The file does
// not need to exist: an absent file reads as an empty graph, and the first
// Save creates it.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the backing file and decodes it into a graph. Malformed lines
// are skipped, not fatal; the second return value is the number of lines
// dropped that way. A missing file is not an error and yields an empty graph.
func (f *FileStore) Load() (*models.KnowledgeGraph, int, error) {
	graph := &models.KnowledgeGraph{
		Entities:  []models.Entity{},
		Relations: []models.Relation{},
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return graph, 0, nil
		}
		return nil, 0, &StoreIOError{Op: "read", Path: f.path, Err: err}
	}

	skipped := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		entity, relation, err := decodeLine(line)
		if err != nil {
			skipped++
			continue
		}
		if entity != nil {
			graph.Entities = append(graph.Entities, *entity)
		} else {
			graph.Relations = append(graph.Relations, *relation)
		}
	}
	return graph, skipped, nil
}

// Save re-encodes the whole graph, entities first, and replaces the backing
// file atomically: the content is written to a temp file in the same
// directory and renamed over the target, so a crash mid-write leaves either
// the old or the new file, never a mix.
func (f *FileStore) Save(graph *models.KnowledgeGraph) error {
	var buf bytes.Buffer
	for _, e := range graph.Entities {
		line, err := encodeEntity(e)
		if err != nil {
			return &StoreIOError{Op: "encode", Path: f.path, Err: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	for _, r := range graph.Relations {
		line, err := encodeRelation(r)
		if err != nil {
			return &StoreIOError{Op: "encode", Path: f.path, Err: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return &StoreIOError{Op: "write", Path: f.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreIOError{Op: "write", Path: f.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StoreIOError{Op: "write", Path: f.path, Err: err}
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return &StoreIOError{Op: "replace", Path: f.path, Err: err}
	}
	return nil
}
