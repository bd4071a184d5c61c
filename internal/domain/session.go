package domain

import "encoding/json"

// Metric is one fitness series for the day. Data is the upstream sub-object
// passed through untouched. Err records why a fetch came back empty, so
// callers can tell "no data today" from "fetch failed"; it is dropped on
// serialization.
type Metric struct {
	Data map[string]any
	Err  error
}

func (m Metric) orEmpty() map[string]any {
	if m.Data == nil {
		return map[string]any{}
	}
	return m.Data
}

// Snapshot holds today's fitness metrics as returned by the tracker API at
// fetch time.
type Snapshot struct {
	Activity Metric
	Sleep    Metric
	Heart    Metric
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]any{
		"activity": s.Activity.orEmpty(),
		"sleep":    s.Sleep.orEmpty(),
		"heart":    s.Heart.orEmpty(),
	})
}

// Transcript is the processed voice memo. Sentiment keeps the shape the
// transcription service returned.
type Transcript struct {
	Text      string `json:"transcription"`
	Summary   string `json:"summary"`
	Sentiment any    `json:"sentiment"`
}

// SessionResult aggregates one completed record-and-process cycle. Field
// names match what the client reads from GET /results.
type SessionResult struct {
	Audio           Transcript `json:"audio_results"`
	Fitness         Snapshot   `json:"fitbit_results"`
	Recommendations string     `json:"recommendations"`
}
