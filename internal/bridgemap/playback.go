package bridgemap

import (
	"github.com/readbridge/readbridge/internal/textseg"
	"github.com/readbridge/readbridge/internal/wordalign"
)

// BridgeSentenceForWord returns the bridge-sentence index to display while
// the word at wordIdx is being spoken: it locates the containing translated
// sentence by counting sentence-end words up to wordIdx, then looks it up in
// the map. wordIdx is clamped to the valid range. Returns [Unresolved] when
// the sentence has no mapping or the inputs are empty.
//
// This is the read path used by playback highlighting, typically after
// [wordalign.FindWordAtTime] resolved the playback position to a word.
func BridgeSentenceForWord(seg *textseg.Segmenter, wordIdx int, timestamps []wordalign.WordTimestamp, m SentenceMap) int {
	if len(timestamps) == 0 || len(m) == 0 {
		return Unresolved
	}
	if wordIdx < 0 {
		wordIdx = 0
	}
	if wordIdx >= len(timestamps) {
		wordIdx = len(timestamps) - 1
	}

	sentence := 0
	for i := 0; i < wordIdx; i++ {
		next := ""
		if i+1 < len(timestamps) {
			next = timestamps[i+1].Text
		}
		if seg.IsSentenceEndWord(timestamps[i].Text, next) {
			sentence++
		}
	}
	if sentence >= len(m) {
		sentence = len(m) - 1
	}
	return int(m[sentence])
}
