package storage

import (
	"encoding/json"
	"fmt"

	"github.com/graphkeep/graphkeep/internal/models"
)

// The graph file holds one self-describing JSON object per line. The "type"
// discriminator selects between the two record shapes; everything else about
// the line is the record's exact field set. Any structural change here is a
// breaking format change.
const (
	recordTypeEntity   = "entity"
	recordTypeRelation = "relation"
)

type entityRecord struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

type relationRecord struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// encodeEntity serializes an entity as one compact JSON line (no trailing
// newline).
func encodeEntity(e models.Entity) ([]byte, error) {
	return json.Marshal(entityRecord{
		Type:         recordTypeEntity,
		Name:         e.Name,
		EntityType:   e.EntityType,
		Observations: e.Observations,
	})
}

// encodeRelation serializes a relation as one compact JSON line.
func encodeRelation(r models.Relation) ([]byte, error) {
	return json.Marshal(relationRecord{
		Type:         recordTypeRelation,
		From:         r.From,
		To:           r.To,
		RelationType: r.RelationType,
	})
}

// decodeLine parses one persisted line into either an entity or a relation.
// Exactly one of the returned pointers is non-nil on success. A line that is
// not valid JSON, carries an unknown discriminator, or is missing required
// fields is a malformed record: the caller skips it rather than failing the
// whole load.
func decodeLine(line []byte) (*models.Entity, *models.Relation, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, nil, fmt.Errorf("parse record: %w", err)
	}

	switch probe.Type {
	case recordTypeEntity:
		var rec entityRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("parse entity record: %w", err)
		}
		if rec.Name == "" {
			return nil, nil, fmt.Errorf("entity record missing name")
		}
		return &models.Entity{
			Name:         rec.Name,
			EntityType:   rec.EntityType,
			Observations: rec.Observations,
		}, nil, nil
	case recordTypeRelation:
		var rec relationRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("parse relation record: %w", err)
		}
		if rec.From == "" || rec.To == "" || rec.RelationType == "" {
			return nil, nil, fmt.Errorf("relation record missing from/to/relationType")
		}
		return nil, &models.Relation{
			From:         rec.From,
			To:           rec.To,
			RelationType: rec.RelationType,
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown record type %q", probe.Type)
	}
}
