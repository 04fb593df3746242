package engine

import (
	"offboard/pkg/schema"
)

// RosterIndex provides lookup of roster users by normalized identifier
// while keeping roster file order.
type RosterIndex struct {
	ByID  map[string]*schema.UserRecord `json:"byId"`
	Order []*schema.UserRecord          `json:"order"`
	Stats IndexStats                    `json:"stats"`
}

// IndexStats contains aggregate statistics about the roster index.
type IndexStats struct {
	TotalRecords  int `json:"totalRecords"`
	ActiveCount   int `json:"activeCount"`
	InactiveCount int `json:"inactiveCount"`
	UnknownCount  int `json:"unknownCount"`
}

// BuildRosterIndex constructs a RosterIndex from roster records.
// The first occurrence of an identifier wins; the Validator has already
// rejected duplicates, so later ones are only reachable when it was skipped.
func BuildRosterIndex(records []schema.UserRecord) *RosterIndex {
	index := &RosterIndex{
		ByID:  make(map[string]*schema.UserRecord, len(records)),
		Order: make([]*schema.UserRecord, 0, len(records)),
	}

	for i := range records {
		rec := &records[i]
		index.Order = append(index.Order, rec)

		if rec.ID != "" {
			if _, exists := index.ByID[rec.ID]; !exists {
				index.ByID[rec.ID] = rec
			}
		}

		switch rec.Status {
		case schema.StatusActive:
			index.Stats.ActiveCount++
		case schema.StatusInactive:
			index.Stats.InactiveCount++
		default:
			index.Stats.UnknownCount++
		}
	}
	index.Stats.TotalRecords = len(records)

	return index
}

// Lookup returns the roster user with the given normalized identifier.
func (x *RosterIndex) Lookup(id string) (*schema.UserRecord, bool) {
	rec, ok := x.ByID[id]
	return rec, ok
}
