package storage

import (
	"testing"

	"github.com/graphkeep/graphkeep/internal/models"
)

func setupCityGraph(t *testing.T) *GraphStore {
	t.Helper()
	gs := NewGraphStore(tempGraphPath(t))

	_, err := gs.CreateEntities([]models.Entity{
		{Name: "Paris", EntityType: "City", Observations: []string{"capital of France"}},
		{Name: "Berlin", EntityType: "City", Observations: []string{"capital of Germany"}},
		{Name: "Seine", EntityType: "River", Observations: []string{"flows through Paris"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = gs.CreateRelations([]models.Relation{
		{From: "Seine", To: "Paris", RelationType: "flows_through"},
		{From: "Paris", To: "Berlin", RelationType: "twinned_with"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return gs
}

func TestSearchNodesByObservation(t *testing.T) {
	gs := setupCityGraph(t)

	result, err := gs.SearchNodes("france")
	if err != nil {
		t.Fatalf("SearchNodes: %v", err)
	}
	if len(result.Entities) != 1 || result.Entities[0].Name != "Paris" {
		t.Errorf("entities = %+v, want just Paris", result.Entities)
	}
	// Berlin did not match, so the Paris-Berlin relation is excluded
	if len(result.Relations) != 0 {
		t.Errorf("relations = %+v, want none", result.Relations)
	}
}

func TestSearchNodesCaseInsensitive(t *testing.T) {
	gs := setupCityGraph(t)

	for _, query := range []string{"PARIS", "paris", "PaRiS"} {
		result, err := gs.SearchNodes(query)
		if err != nil {
			t.Fatal(err)
		}
		// Paris by name, Seine by the "flows through Paris" observation
		if len(result.Entities) != 2 {
			t.Errorf("SearchNodes(%q) matched %d entities, want 2", query, len(result.Entities))
		}
	}
}

func TestSearchNodesByType(t *testing.T) {
	gs := setupCityGraph(t)

	result, err := gs.SearchNodes("city")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("entities = %+v, want Paris and Berlin", result.Entities)
	}
	// Both endpoints matched, relation survives
	if len(result.Relations) != 1 || result.Relations[0].RelationType != "twinned_with" {
		t.Errorf("relations = %+v, want the twinned_with edge", result.Relations)
	}
}

func TestSearchNodesNoMatch(t *testing.T) {
	gs := setupCityGraph(t)

	result, err := gs.SearchNodes("tokyo")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entities) != 0 || len(result.Relations) != 0 {
		t.Errorf("result = %+v, want empty graph", result)
	}
}

func TestOpenNodes(t *testing.T) {
	gs := setupCityGraph(t)

	result, err := gs.OpenNodes([]string{"Paris", "Seine", "NoSuchNode"})
	if err != nil {
		t.Fatalf("OpenNodes: %v", err)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("entities = %+v, want Paris and Seine", result.Entities)
	}
	if len(result.Relations) != 1 || result.Relations[0].RelationType != "flows_through" {
		t.Errorf("relations = %+v, want the flows_through edge", result.Relations)
	}
}

func TestOpenNodesExactNameOnly(t *testing.T) {
	gs := setupCityGraph(t)

	// Substrings must not match, unlike search
	result, err := gs.OpenNodes([]string{"Par"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entities) != 0 {
		t.Errorf("entities = %+v, want none for partial name", result.Entities)
	}
}
