package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// Participants is the ordered list of recipient addresses. A nil value means
// the column is NULL, which is distinct from an empty list.
type Participants []string

// Scan reads either a Postgres array literal or a JSON array.
func (p *Participants) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("participants: unsupported column type %T", src)
	}

	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		*p = nil
		return nil
	case raw[0] == '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("participants: %w", err)
		}
		if list == nil {
			list = []string{}
		}
		*p = list
		return nil
	case raw[0] == '{':
		var arr pq.StringArray
		if err := arr.Scan(raw); err != nil {
			return fmt.Errorf("participants: %w", err)
		}
		if arr == nil {
			arr = pq.StringArray{}
		}
		*p = Participants(arr)
		return nil
	}
	return fmt.Errorf("participants: unrecognised encoding %q", raw)
}

// Clone copies the list, keeping nil and empty apart.
func (p Participants) Clone() Participants {
	if p == nil {
		return nil
	}
	c := make(Participants, len(p))
	copy(c, p)
	return c
}
