package store

import (
	"os"
	"time"
)

// ExpiringSoonWindow is the horizon for the "expiring soon" stat.
const ExpiringSoonWindow = 24 * time.Hour

// Stats is the on-demand aggregate view over live records. Expired records
// are excluded from every figure; ExpiringSoon by definition counts records
// that are still live but will die within the window.
type Stats struct {
	TotalRecords    int            `json:"totalRecords"`
	ByNamespace     map[string]int `json:"byNamespace"`
	ByTag           map[string]int `json:"byTag"`
	OldestCreatedAt int64          `json:"oldestCreatedAt,omitempty"`
	NewestCreatedAt int64          `json:"newestCreatedAt,omitempty"`
	ExpiringSoon    int            `json:"expiringSoon"`
	FileSizeBytes   int64          `json:"fileSizeBytes"`
	EstimatedTokens int            `json:"estimatedTokens"`
}

// Stats computes summary metrics across the live store. The file size is the
// current on-disk document size; a store that has never been saved reports 0.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Stats{
		ByNamespace: make(map[string]int),
		ByTag:       make(map[string]int),
	}

	now := s.now()
	for _, r := range s.allLive() {
		st.TotalRecords++
		st.ByNamespace[r.Namespace]++
		for _, t := range r.Tags {
			st.ByTag[t]++
		}
		if st.OldestCreatedAt == 0 || r.CreatedAt < st.OldestCreatedAt {
			st.OldestCreatedAt = r.CreatedAt
		}
		if r.CreatedAt > st.NewestCreatedAt {
			st.NewestCreatedAt = r.CreatedAt
		}
		if r.ExpiresWithin(now, ExpiringSoonWindow) {
			st.ExpiringSoon++
		}
		st.EstimatedTokens += EstimateTokens(r.Value)
	}

	if info, err := os.Stat(s.path); err == nil {
		st.FileSizeBytes = info.Size()
	}
	return st, nil
}
