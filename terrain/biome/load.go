package biome

import (
	"encoding/json"
	"fmt"
)

// LoadDefs parses a JSON array of biome definition records. Every record
// starts from the neutral defaults, so absent keys keep their default values
// and unknown keys are ignored. Records with an unrecognised id are skipped.
func LoadDefs(data []byte) ([]Def, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse biome definitions: %w", err)
	}
	defs := make([]Def, 0, len(raw))
	for i, rec := range raw {
		var idOnly struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(rec, &idOnly); err != nil {
			return nil, fmt.Errorf("parse biome record %d: %w", i, err)
		}
		id := ParseID(idOnly.ID)
		if id == Unknown {
			continue
		}
		d := baseDef(id)
		if err := json.Unmarshal(rec, &d); err != nil {
			return nil, fmt.Errorf("parse biome record %d (%s): %w", i, idOnly.ID, err)
		}
		d.ID = id
		defs = append(defs, d)
	}
	return defs, nil
}
