package payment

import "time"

// MetadataEntry is one append-only enrichment of a payment, typically the raw
// provider payload of the event that touched it. Entries are never merged or overwritten.
type MetadataEntry struct {
	Event      string         `json:"event"`
	RecordedAt time.Time      `json:"recorded_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Latest returns the most recent entry recorded for event.
func Latest(entries []MetadataEntry, event string) (MetadataEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Event == event {
			return entries[i], true
		}
	}
	return MetadataEntry{}, false
}
