package corpus

import (
	"fmt"
	"math/rand"
	"sort"
)

// SplitResult holds the two sides of a session-level train/dev partition.
type SplitResult struct {
	Train []Supervision
	Dev   []Supervision

	// TrainSessions and DevSessions are sorted for stable reporting.
	TrainSessions []string
	DevSessions   []string
}

// SplitBySession partitions supervisions into train and dev sets at session
// granularity: every supervision of a session lands on exactly one side, the
// dev side receives exactly devSessions sessions, and the two sides together
// hold every input record. The session shuffle is seeded so the same inputs
// and seed always produce the same partition.
func SplitBySession(supervisions []Supervision, devSessions int, seed int64) (*SplitResult, error) {
	if devSessions < 1 {
		return nil, fmt.Errorf("split: dev session count must be at least 1 (got %d)", devSessions)
	}

	sessionSet := make(map[string]struct{})
	for _, sup := range supervisions {
		sessionSet[sup.Session()] = struct{}{}
	}
	if len(sessionSet) <= devSessions {
		return nil, fmt.Errorf("split: need more than %d sessions to hold out %d for dev (got %d)",
			devSessions, devSessions, len(sessionSet))
	}

	// Sort before shuffling so the partition depends only on the session
	// set and the seed, not on record order in the input manifest.
	sessions := make([]string, 0, len(sessionSet))
	for session := range sessionSet {
		sessions = append(sessions, session)
	}
	sort.Strings(sessions)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(sessions), func(i, j int) {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	})

	devSet := make(map[string]struct{}, devSessions)
	for _, session := range sessions[:devSessions] {
		devSet[session] = struct{}{}
	}

	result := &SplitResult{}
	for _, sup := range supervisions {
		if _, isDev := devSet[sup.Session()]; isDev {
			result.Dev = append(result.Dev, sup)
		} else {
			result.Train = append(result.Train, sup)
		}
	}

	result.DevSessions = append(result.DevSessions, sessions[:devSessions]...)
	result.TrainSessions = append(result.TrainSessions, sessions[devSessions:]...)
	sort.Strings(result.DevSessions)
	sort.Strings(result.TrainSessions)
	return result, nil
}
