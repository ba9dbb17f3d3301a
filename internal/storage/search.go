package storage

import (
	"strings"

	"github.com/graphkeep/graphkeep/internal/models"
)

// SearchNodes returns the entities matching the query together with the
// relations connecting them. The match is a case-insensitive substring test
// against entity name, entity type, and each observation. Relations are kept
// only when both endpoints are in the matched set.
func (s *GraphStore) SearchNodes(query string) (*models.KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, err := s.load()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := []models.Entity{}
	for _, e := range graph.Entities {
		if entityMatches(e, q) {
			matched = append(matched, e)
		}
	}
	return subgraph(matched, graph.Relations), nil
}

// OpenNodes returns exactly the entities whose name is in the list, plus the
// relations connecting them. Unknown names are ignored.
func (s *GraphStore) OpenNodes(names []string) (*models.KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, err := s.load()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	matched := []models.Entity{}
	for _, e := range graph.Entities {
		if wanted[e.Name] {
			matched = append(matched, e)
		}
	}
	return subgraph(matched, graph.Relations), nil
}

func entityMatches(e models.Entity, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(e.EntityType), q) {
		return true
	}
	for _, o := range e.Observations {
		if strings.Contains(strings.ToLower(o), q) {
			return true
		}
	}
	return false
}

// subgraph builds a filtered graph from the matched entities and the
// relations whose both endpoints are among them.
func subgraph(entities []models.Entity, relations []models.Relation) *models.KnowledgeGraph {
	inSet := make(map[string]bool, len(entities))
	for _, e := range entities {
		inSet[e.Name] = true
	}

	kept := []models.Relation{}
	for _, r := range relations {
		if inSet[r.From] && inSet[r.To] {
			kept = append(kept, r)
		}
	}
	return &models.KnowledgeGraph{Entities: entities, Relations: kept}
}
