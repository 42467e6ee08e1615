package access

import (
	"encoding/json"
	"time"
)

// Role is a node in the org-chart graph. Parents point upward toward
// management; Members are users placed directly under this role, which is
// independent of the users whose authorization role this is.
type Role struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Menu      json.RawMessage `json:"menu,omitempty"`
	Parents   []string        `json:"parents"`
	Members   []string        `json:"members"`
	CreatedAt time.Time       `json:"createdAt"`
}

// IsRoot reports whether the role sits at the top of the hierarchy: its
// parent set is exactly itself.
func (r Role) IsRoot() bool {
	return len(r.Parents) == 1 && r.Parents[0] == r.ID
}
