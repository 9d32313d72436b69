// Package asr defines the contract between the audio pipeline's speech
// recogniser and the alignment engine, plus a client for a whisper-server
// deployment that produces word-level output.
//
// The engine only consumes [RecognizedWord] values; how they were produced is
// the audio pipeline's concern. Recognised words are assumed to arrive in
// playback order with monotonically non-decreasing start times, but the
// aligner tolerates violations rather than crashing on them.
package asr

// RecognizedWord is one word as reported by the speech recogniser, with its
// position in the audio track in seconds. The text may mis-transcribe, merge,
// or split words relative to the canonical written text.
type RecognizedWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the recogniser's per-word confidence (0.0–1.0).
	// Zero when the recogniser does not report one.
	Confidence float64 `json:"confidence,omitempty"`
}
