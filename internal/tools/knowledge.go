package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphkeep/graphkeep/internal/models"
	"github.com/graphkeep/graphkeep/internal/session"
	"github.com/graphkeep/graphkeep/internal/storage"
)

// KnowledgeTools holds references needed by knowledge graph tool handlers.
type KnowledgeTools struct {
	Session *session.Session
}

// --- Input types ---

type CreateEntitiesInput struct {
	Entities []EntityInput `json:"entities" jsonschema:"Array of entities to create"`
}

type EntityInput struct {
	Name         string   `json:"name" jsonschema:"Entity name, the unique key"`
	EntityType   string   `json:"entityType" jsonschema:"Entity type (e.g., person, technology, concept)"`
	Observations []string `json:"observations,omitempty" jsonschema:"Initial observations about the entity"`
}

type CreateRelationsInput struct {
	Relations []RelationInput `json:"relations" jsonschema:"Array of relations to create"`
}

type RelationInput struct {
	From         string `json:"from" jsonschema:"Source entity name"`
	To           string `json:"to" jsonschema:"Target entity name"`
	RelationType string `json:"relationType" jsonschema:"Relation type in active voice (e.g., uses, depends_on, manages)"`
}

type AddObservationsInput struct {
	Observations []ObservationInput `json:"observations" jsonschema:"Array of observations to add"`
}

type ObservationInput struct {
	EntityName string   `json:"entityName" jsonschema:"Name of the entity"`
	Contents   []string `json:"contents" jsonschema:"Observation texts to add"`
}

type DeleteEntitiesInput struct {
	EntityNames []string `json:"entityNames" jsonschema:"Entity names to delete"`
}

type DeleteObservationsInput struct {
	Deletions []DeleteObservationItem `json:"deletions" jsonschema:"Array of observations to delete"`
}

type DeleteObservationItem struct {
	EntityName   string   `json:"entityName" jsonschema:"Name of the entity"`
	Observations []string `json:"observations" jsonschema:"Observation content strings to match and delete"`
}

type DeleteRelationsInput struct {
	Relations []RelationInput `json:"relations" jsonschema:"Array of relations to delete"`
}

type SearchNodesInput struct {
	Query string `json:"query" jsonschema:"Substring to match against entity names, types, and observations (case-insensitive)"`
}

type OpenNodesInput struct {
	Names []string `json:"names" jsonschema:"Exact entity names to retrieve"`
}

// --- Handlers ---

func (t *KnowledgeTools) requireBank() (*storage.GraphStore, *mcp.CallToolResult) {
	gs := t.Session.GraphStore()
	if gs == nil {
		return nil, toolError("No active bank. Use switch_bank to select one.")
	}
	return gs, nil
}

func (t *KnowledgeTools) CreateEntities(_ context.Context, _ *mcp.CallToolRequest, input CreateEntitiesInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	entities := make([]models.Entity, len(input.Entities))
	for i, e := range input.Entities {
		entities[i] = models.Entity{
			Name:         e.Name,
			EntityType:   e.EntityType,
			Observations: e.Observations,
		}
	}

	created, err := gs.CreateEntities(entities)
	if err != nil {
		return toolError("Failed to create entities: %v", err), nil, nil
	}

	return toolJSON(created)
}

func (t *KnowledgeTools) CreateRelations(_ context.Context, _ *mcp.CallToolRequest, input CreateRelationsInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	created, err := gs.CreateRelations(relationModels(input.Relations))
	if err != nil {
		return toolError("Failed to create relations: %v", err), nil, nil
	}

	return toolJSON(created)
}

func (t *KnowledgeTools) AddObservations(_ context.Context, _ *mcp.CallToolRequest, input AddObservationsInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	additions := make([]models.ObservationAddition, len(input.Observations))
	for i, o := range input.Observations {
		additions[i] = models.ObservationAddition{
			EntityName: o.EntityName,
			Contents:   o.Contents,
		}
	}

	results, err := gs.AddObservations(additions)
	if err != nil {
		return toolError("Failed to add observations: %v", err), nil, nil
	}

	return toolJSON(results)
}

func (t *KnowledgeTools) DeleteEntities(_ context.Context, _ *mcp.CallToolRequest, input DeleteEntitiesInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	if err := gs.DeleteEntities(input.EntityNames); err != nil {
		return toolError("Failed to delete entities: %v", err), nil, nil
	}

	return toolText("Entities deleted successfully"), nil, nil
}

func (t *KnowledgeTools) DeleteObservations(_ context.Context, _ *mcp.CallToolRequest, input DeleteObservationsInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	deletions := make([]models.ObservationDeletion, len(input.Deletions))
	for i, d := range input.Deletions {
		deletions[i] = models.ObservationDeletion{
			EntityName:   d.EntityName,
			Observations: d.Observations,
		}
	}

	if err := gs.DeleteObservations(deletions); err != nil {
		return toolError("Failed to delete observations: %v", err), nil, nil
	}

	return toolText("Observations deleted successfully"), nil, nil
}

func (t *KnowledgeTools) DeleteRelations(_ context.Context, _ *mcp.CallToolRequest, input DeleteRelationsInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	if err := gs.DeleteRelations(relationModels(input.Relations)); err != nil {
		return toolError("Failed to delete relations: %v", err), nil, nil
	}

	return toolText("Relations deleted successfully"), nil, nil
}

func (t *KnowledgeTools) ReadGraph(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	graph, err := gs.ReadGraph()
	if err != nil {
		return toolError("Failed to read graph: %v", err), nil, nil
	}

	return toolJSON(graph)
}

func (t *KnowledgeTools) SearchNodes(_ context.Context, _ *mcp.CallToolRequest, input SearchNodesInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	graph, err := gs.SearchNodes(input.Query)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}

	return toolJSON(graph)
}

func (t *KnowledgeTools) OpenNodes(_ context.Context, _ *mcp.CallToolRequest, input OpenNodesInput) (*mcp.CallToolResult, any, error) {
	gs, errResult := t.requireBank()
	if errResult != nil {
		return errResult, nil, nil
	}

	graph, err := gs.OpenNodes(input.Names)
	if err != nil {
		return toolError("Failed to open nodes: %v", err), nil, nil
	}

	return toolJSON(graph)
}

func relationModels(inputs []RelationInput) []models.Relation {
	relations := make([]models.Relation, len(inputs))
	for i, r := range inputs {
		relations[i] = models.Relation{
			From:         r.From,
			To:           r.To,
			RelationType: r.RelationType,
		}
	}
	return relations
}
