package core

import "github.com/jo-hoe/qrcollector/internal/backend/database"

// StatusOnline is decorative; no health check stands behind it.
const StatusOnline = "online"

type Stats struct {
	Total              int    `json:"total"`
	DistinctSubmitters int    `json:"distinctSubmitters"`
	Status             string `json:"status"`
}

// ComputeStats derives the footer counters. Handles are compared exactly,
// case-sensitively.
func ComputeStats(submissions []*database.Submission) Stats {
	handles := make(map[string]struct{}, len(submissions))
	for _, s := range submissions {
		handles[s.Handle] = struct{}{}
	}
	return Stats{
		Total:              len(submissions),
		DistinctSubmitters: len(handles),
		Status:             StatusOnline,
	}
}
