package models

// Bank represents a named memory bank in the meta database. Each bank owns
// one isolated knowledge graph file.
type Bank struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GraphPath   string `json:"graph_path"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Entity represents a node in the knowledge graph. Name is the primary key.
// Observations are deduplicated per entity, first-insertion order preserved.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation represents a directed, typed edge between two entity names.
// The triple (From, To, RelationType) is the identity key. Endpoints are not
// required to name existing entities.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// KnowledgeGraph represents the full graph of a bank.
type KnowledgeGraph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// ObservationAddition is one add_observations entry: contents to append to
// the named entity.
type ObservationAddition struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

// ObservationAddResult reports the observations actually added to an entity,
// excluding contents that were already present.
type ObservationAddResult struct {
	EntityName        string   `json:"entityName"`
	AddedObservations []string `json:"addedObservations"`
}

// ObservationDeletion is one delete_observations entry: observation strings
// to remove from the named entity by exact match.
type ObservationDeletion struct {
	EntityName   string   `json:"entityName"`
	Observations []string `json:"observations"`
}
