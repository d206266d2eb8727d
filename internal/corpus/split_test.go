package corpus_test

import (
	"fmt"
	"testing"

	"sluice/internal/corpus"
)

// splitFixture builds records for sessionCount sessions with two channel
// recordings and three supervisions per session.
func splitFixture(sessionCount int) []corpus.Supervision {
	var supervisions []corpus.Supervision
	for s := 0; s < sessionCount; s++ {
		session := fmt.Sprintf("fe_03_%05d", s)
		for _, channel := range []string{"A", "B"} {
			recording := session + "-" + channel
			for seg := 0; seg < 3; seg++ {
				supervisions = append(supervisions, corpus.Supervision{
					ID:          fmt.Sprintf("%s-%04d", recording, seg),
					RecordingID: recording,
					Start:       float64(seg),
					Duration:    1,
					Text:        "SOME WORDS",
				})
			}
		}
	}
	return supervisions
}

func TestSplitHoldsOutExactDevSessions(t *testing.T) {
	supervisions := splitFixture(50)

	result, err := corpus.SplitBySession(supervisions, 20, 1729)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	if len(result.DevSessions) != 20 {
		t.Fatalf("expected exactly 20 dev sessions, got %d", len(result.DevSessions))
	}
	if len(result.TrainSessions) != 30 {
		t.Fatalf("expected 30 train sessions, got %d", len(result.TrainSessions))
	}
	if len(result.Train)+len(result.Dev) != len(supervisions) {
		t.Fatalf("counts do not sum: %d + %d != %d", len(result.Train), len(result.Dev), len(supervisions))
	}
	// 20 sessions x 2 channels x 3 segments
	if len(result.Dev) != 120 {
		t.Fatalf("expected 120 dev records, got %d", len(result.Dev))
	}
}

func TestSplitSessionsAreDisjoint(t *testing.T) {
	supervisions := splitFixture(12)

	result, err := corpus.SplitBySession(supervisions, 5, 7)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}

	devSessions := make(map[string]struct{})
	for _, sup := range result.Dev {
		devSessions[sup.Session()] = struct{}{}
	}
	for _, sup := range result.Train {
		if _, clash := devSessions[sup.Session()]; clash {
			t.Fatalf("session %s appears on both sides", sup.Session())
		}
	}
	for _, session := range result.TrainSessions {
		if _, clash := devSessions[session]; clash {
			t.Fatalf("session list reports %s on both sides", session)
		}
	}
}

func TestSplitIsDeterministicForSeed(t *testing.T) {
	supervisions := splitFixture(30)

	first, err := corpus.SplitBySession(supervisions, 10, 42)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	second, err := corpus.SplitBySession(supervisions, 10, 42)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	if len(first.DevSessions) != len(second.DevSessions) {
		t.Fatalf("dev session counts differ: %d vs %d", len(first.DevSessions), len(second.DevSessions))
	}
	for i := range first.DevSessions {
		if first.DevSessions[i] != second.DevSessions[i] {
			t.Fatalf("dev session %d differs: %q vs %q", i, first.DevSessions[i], second.DevSessions[i])
		}
	}

	other, err := corpus.SplitBySession(supervisions, 10, 43)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	same := true
	for i := range first.DevSessions {
		if first.DevSessions[i] != other.DevSessions[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected a different seed to pick a different dev set")
	}
}

func TestSplitIgnoresInputRecordOrder(t *testing.T) {
	supervisions := splitFixture(15)
	reversed := make([]corpus.Supervision, len(supervisions))
	for i, sup := range supervisions {
		reversed[len(supervisions)-1-i] = sup
	}

	forward, err := corpus.SplitBySession(supervisions, 4, 11)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	backward, err := corpus.SplitBySession(reversed, 4, 11)
	if err != nil {
		t.Fatalf("SplitBySession failed: %v", err)
	}
	for i := range forward.DevSessions {
		if forward.DevSessions[i] != backward.DevSessions[i] {
			t.Fatalf("dev set depends on record order: %v vs %v", forward.DevSessions, backward.DevSessions)
		}
	}
}

func TestSplitRejectsImpossibleDevCounts(t *testing.T) {
	supervisions := splitFixture(5)

	if _, err := corpus.SplitBySession(supervisions, 0, 1); err == nil {
		t.Fatal("expected error for zero dev sessions")
	}
	if _, err := corpus.SplitBySession(supervisions, 5, 1); err == nil {
		t.Fatal("expected error when dev count consumes every session")
	}
	if _, err := corpus.SplitBySession(supervisions, 6, 1); err == nil {
		t.Fatal("expected error when dev count exceeds session count")
	}
}
