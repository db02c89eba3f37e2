package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Remote wire field names reserved for the record envelope. Everything else
// in a remote JSON object is a domain column.
const (
	remoteFieldID        = "id"
	remoteFieldUpdatedAt = "updated_at"
)

// RemoteEntity is a record in the remote system's shape: a flat JSON object
// whose columns use remote names (e.g. "total" where the local entity says
// "totalAmount"). The id and updated_at columns are lifted into struct
// fields; all remaining columns live in Fields.
type RemoteEntity struct {
	ID        string
	UpdatedAt time.Time
	Fields    map[string]any
}

// MarshalJSON flattens the record into a single JSON object with id and
// updated_at alongside the domain columns.
func (r RemoteEntity) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat[remoteFieldID] = r.ID
	flat[remoteFieldUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)

	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat remote object back into the envelope fields
// and the domain column map.
func (r *RemoteEntity) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	id, ok := flat[remoteFieldID].(string)
	if !ok || id == "" {
		return fmt.Errorf("remote entity: missing or invalid %q column", remoteFieldID)
	}
	delete(flat, remoteFieldID)

	var updatedAt time.Time
	if raw, ok := flat[remoteFieldUpdatedAt]; ok {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("remote entity %s: invalid %q column", id, remoteFieldUpdatedAt)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("remote entity %s: parse %q: %w", id, remoteFieldUpdatedAt, err)
		}
		updatedAt = parsed
		delete(flat, remoteFieldUpdatedAt)
	}

	r.ID = id
	r.UpdatedAt = updatedAt
	r.Fields = flat
	return nil
}

// RemoteIDPage is one page of the remote id listing used by the startup
// consistency sweep.
type RemoteIDPage struct {
	IDs  []string `json:"ids"`
	More bool     `json:"more"`
}
