package resource

import (
	"encoding/json"
	"fmt"
)

// IDRefs is a list of identifiers the remote API transmits as objects
// carrying an "id" attribute. Desired-state documents use plain strings.
type IDRefs []string

type idRef struct {
	ID string `json:"id"`
}

func (r IDRefs) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	refs := make([]idRef, len(r))
	for idx, id := range r {
		refs[idx] = idRef{ID: id}
	}
	return json.Marshal(refs)
}

func (r *IDRefs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid id list: %w", err)
	}
	if raw == nil {
		*r = nil
		return nil
	}

	ids := make(IDRefs, 0, len(raw))
	for _, item := range raw {
		var ref idRef
		if err := json.Unmarshal(item, &ref); err == nil {
			ids = append(ids, ref.ID)
			continue
		}
		var plain string
		if err := json.Unmarshal(item, &plain); err != nil {
			return fmt.Errorf("invalid id list entry %s", string(item))
		}
		ids = append(ids, plain)
	}
	*r = ids
	return nil
}
