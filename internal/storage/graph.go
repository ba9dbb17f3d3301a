package storage

import (
	"log/slog"
	"sync"

	"github.com/graphkeep/graphkeep/internal/models"
)

// GraphStore owns one bank's knowledge graph. Every operation reloads the
// graph from disk, computes against it, and (for mutations) persists the
// result before returning. A single RWMutex serializes mutations against the
// backing file so concurrent calls cannot lose updates; read-only operations
// share the read lock. The store assumes it is the sole writer of its file
// for the process lifetime.
type GraphStore struct {
	mu   sync.RWMutex
	file *FileStore
	log  *slog.Logger
}

// NewGraphStore creates a store over the given graph file path.
func NewGraphStore(path string) *GraphStore {
	return &GraphStore{
		file: NewFileStore(path),
		log:  slog.Default(),
	}
}

// Path returns the backing file path.
func (s *GraphStore) Path() string {
	return s.file.Path()
}

// load reads the current graph, reporting any lines the decoder had to drop.
// Caller must hold the lock.
func (s *GraphStore) load() (*models.KnowledgeGraph, error) {
	graph, skipped, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.log.Warn("skipped malformed graph records",
			"path", s.file.Path(), "skipped", skipped)
	}
	return graph, nil
}

// CreateEntities inserts the given entities, skipping any whose name is
// already taken (existing entities are never overwritten). Observation lists
// are deduplicated on the way in. Returns only the entities actually
// inserted.
func (s *GraphStore) CreateEntities(entities []models.Entity) ([]models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(graph.Entities))
	for _, e := range graph.Entities {
		taken[e.Name] = true
	}

	created := []models.Entity{}
	for _, e := range entities {
		if taken[e.Name] {
			continue
		}
		taken[e.Name] = true
		e.Observations = dedupStrings(e.Observations)
		graph.Entities = append(graph.Entities, e)
		created = append(created, e)
	}

	if err := s.file.Save(graph); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateRelations inserts the given relations, skipping any whose
// (from, to, relationType) triple already exists. Endpoints are not checked
// against the entity set. Returns only the relations actually inserted.
func (s *GraphStore) CreateRelations(relations []models.Relation) ([]models.Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return nil, err
	}

	taken := make(map[models.Relation]bool, len(graph.Relations))
	for _, r := range graph.Relations {
		taken[r] = true
	}

	created := []models.Relation{}
	for _, r := range relations {
		if taken[r] {
			continue
		}
		taken[r] = true
		graph.Relations = append(graph.Relations, r)
		created = append(created, r)
	}

	if err := s.file.Save(graph); err != nil {
		return nil, err
	}
	return created, nil
}

// AddObservations appends observation contents to existing entities. Within
// one entry, contents the entity already holds are skipped; the result lists
// only what was newly added. The call is all-or-nothing: if any entry names
// a missing entity it fails with EntityNotFoundError and nothing from the
// batch is persisted.
func (s *GraphStore) AddObservations(additions []models.ObservationAddition) ([]models.ObservationAddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*models.Entity, len(graph.Entities))
	for i := range graph.Entities {
		byName[graph.Entities[i].Name] = &graph.Entities[i]
	}

	results := []models.ObservationAddResult{}
	for _, add := range additions {
		entity, ok := byName[add.EntityName]
		if !ok {
			return nil, &EntityNotFoundError{Name: add.EntityName}
		}

		present := make(map[string]bool, len(entity.Observations))
		for _, o := range entity.Observations {
			present[o] = true
		}

		added := []string{}
		for _, content := range add.Contents {
			if present[content] {
				continue
			}
			present[content] = true
			entity.Observations = append(entity.Observations, content)
			added = append(added, content)
		}
		results = append(results, models.ObservationAddResult{
			EntityName:        add.EntityName,
			AddedObservations: added,
		})
	}

	if err := s.file.Save(graph); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteEntities removes the named entities and cascades to every relation
// that references a removed name as either endpoint. Unknown names are
// ignored.
func (s *GraphStore) DeleteEntities(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return err
	}

	doomed := make(map[string]bool, len(names))
	for _, name := range names {
		doomed[name] = true
	}

	entities := graph.Entities[:0]
	for _, e := range graph.Entities {
		if !doomed[e.Name] {
			entities = append(entities, e)
		}
	}
	graph.Entities = entities

	relations := graph.Relations[:0]
	for _, r := range graph.Relations {
		if !doomed[r.From] && !doomed[r.To] {
			relations = append(relations, r)
		}
	}
	graph.Relations = relations

	return s.file.Save(graph)
}

// DeleteObservations removes the listed observation strings from their
// entities by exact match. Unknown entity names and absent observations are
// ignored.
func (s *GraphStore) DeleteObservations(deletions []models.ObservationDeletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return err
	}

	byName := make(map[string]*models.Entity, len(graph.Entities))
	for i := range graph.Entities {
		byName[graph.Entities[i].Name] = &graph.Entities[i]
	}

	for _, del := range deletions {
		entity, ok := byName[del.EntityName]
		if !ok {
			continue
		}
		doomed := make(map[string]bool, len(del.Observations))
		for _, o := range del.Observations {
			doomed[o] = true
		}
		kept := entity.Observations[:0]
		for _, o := range entity.Observations {
			if !doomed[o] {
				kept = append(kept, o)
			}
		}
		entity.Observations = kept
	}

	return s.file.Save(graph)
}

// DeleteRelations removes relations whose triple exactly matches one in the
// input. Non-matches are ignored.
func (s *GraphStore) DeleteRelations(relations []models.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.load()
	if err != nil {
		return err
	}

	doomed := make(map[models.Relation]bool, len(relations))
	for _, r := range relations {
		doomed[r] = true
	}

	kept := graph.Relations[:0]
	for _, r := range graph.Relations {
		if !doomed[r] {
			kept = append(kept, r)
		}
	}
	graph.Relations = kept

	return s.file.Save(graph)
}

// ReadGraph returns the full current graph.
func (s *GraphStore) ReadGraph() (*models.KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// dedupStrings removes duplicates preserving first-occurrence order.
func dedupStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
