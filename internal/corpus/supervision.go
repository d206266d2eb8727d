package corpus

import "strings"

// Supervision is one transcript segment tied to a stretch of audio. The
// field set mirrors the manifest layout the corpus-preparation tool emits,
// so files written here remain readable by downstream training code.
type Supervision struct {
	ID          string         `json:"id"`
	RecordingID string         `json:"recording_id"`
	Start       float64        `json:"start"`
	Duration    float64        `json:"duration"`
	Channel     int            `json:"channel"`
	Text        string         `json:"text"`
	Language    string         `json:"language,omitempty"`
	Speaker     string         `json:"speaker,omitempty"`
	Gender      string         `json:"gender,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Session returns the conversation the supervision belongs to. Telephone
// corpora record the two call sides as separate recordings distinguished by
// a single-letter channel suffix ("fe_03_00001-A", "sw02001-B"); both sides
// of one call must land on the same side of a train/dev split.
func (s Supervision) Session() string {
	return SessionOf(s.RecordingID)
}

// SessionOf derives the session identifier from a recording ID by stripping
// a trailing single-letter channel suffix when present.
func SessionOf(recordingID string) string {
	recordingID = strings.TrimSpace(recordingID)
	if len(recordingID) > 2 {
		sep := recordingID[len(recordingID)-2]
		last := recordingID[len(recordingID)-1]
		if sep == '-' && isChannelLetter(last) {
			return recordingID[:len(recordingID)-2]
		}
	}
	return recordingID
}

func isChannelLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
