package bridgemap

import "math"

// anchorKind distinguishes evidence-backed anchors from synthetic endpoint
// anchors used for interpolation coverage.
type anchorKind int

const (
	// anchorReal is a scored anchor selected by the weighted LIS.
	anchorReal anchorKind = iota

	// anchorSoft is a first/last-sentence endpoint added next to a non-empty
	// validated set.
	anchorSoft

	// anchorVirtual is a fallback endpoint used when no anchor candidate
	// survived; sentences bracketed only by virtual anchors stay unresolved
	// unless they carry their own acceptable match.
	anchorVirtual
)

// guideAnchor is an anchor plus its provenance.
type guideAnchor struct {
	AnchorPoint
	kind anchorKind
}

// globalAnchors performs the full-scan anchor search over a subsample of
// translated sentences. Only sentences with sufficient signal weight
// participate, and a candidate is accepted only when its best score clears
// the floor AND beats the runner-up by the uniqueness ratio, so that generic
// vocabulary cannot anchor the map.
func (a *Aligner) globalAnchors(signals []Signal, bridge []bridgeSentence) []AnchorPoint {
	step := 1
	if len(signals) > a.tuning.SubsampleAbove {
		step = 3
	}

	var anchors []AnchorPoint
	for ti := 0; ti < len(signals); ti += step {
		sig := signals[ti]
		if sig.Weight < a.tuning.MinSignalWeight {
			continue
		}

		best, second := 0.0, 0.0
		bestIdx := -1
		for bi := range bridge {
			res, _ := scoreAgainst(&bridge[bi], sig, a.tuning)
			if res.Score > best {
				second = best
				best = res.Score
				bestIdx = bi
			} else if res.Score > second {
				second = res.Score
			}
		}

		if bestIdx < 0 || best < a.tuning.GlobalAnchorMinScore {
			continue
		}
		if second > 0 && best/second < a.tuning.GlobalAnchorUniqueness {
			continue
		}
		anchors = append(anchors, AnchorPoint{Translated: ti, Bridge: bestIdx, Score: best})
	}
	return weightedLIS(anchors)
}

// weightedLIS selects the subset of anchors with the highest total score
// whose bridge indices are strictly increasing (translated indices are
// already strictly increasing by construction). A plain greedy scan would
// reject a strong late anchor because a weak earlier one was accepted first;
// the DP avoids that.
func weightedLIS(anchors []AnchorPoint) []AnchorPoint {
	n := len(anchors)
	if n <= 1 {
		return anchors
	}

	dp := make([]float64, n)
	parent := make([]int, n)
	bestEnd, bestTotal := 0, math.Inf(-1)

	for i := 0; i < n; i++ {
		dp[i] = anchors[i].Score
		parent[i] = -1
		for j := 0; j < i; j++ {
			if anchors[j].Bridge < anchors[i].Bridge && dp[j]+anchors[i].Score > dp[i] {
				dp[i] = dp[j] + anchors[i].Score
				parent[i] = j
			}
		}
		if dp[i] > bestTotal {
			bestTotal = dp[i]
			bestEnd = i
		}
	}

	var picked []AnchorPoint
	for i := bestEnd; i >= 0; i = parent[i] {
		picked = append(picked, anchors[i])
	}
	// Reverse into translated order.
	for l, r := 0, len(picked)-1; l < r; l, r = l+1, r-1 {
		picked[l], picked[r] = picked[r], picked[l]
	}
	return picked
}

// buildGuides extends a validated anchor set to cover [0, lastT] × [0, lastB]
// for interpolation. With at least one validated anchor, soft first/last
// endpoints are added where monotonically compatible; with none, virtual
// endpoints bracket everything and interpolation is suppressed.
func buildGuides(validated []AnchorPoint, lastT, lastB int) []guideAnchor {
	if len(validated) == 0 {
		return []guideAnchor{
			{AnchorPoint{Translated: 0, Bridge: 0}, anchorVirtual},
			{AnchorPoint{Translated: lastT, Bridge: lastB}, anchorVirtual},
		}
	}

	// A soft endpoint is only useful when it sits strictly outside the
	// validated span on both axes; an anchor already at the endpoint's bridge
	// index makes it redundant (bracketing degenerates to that anchor).
	var guides []guideAnchor
	first := validated[0]
	if first.Translated > 0 && first.Bridge > 0 {
		guides = append(guides, guideAnchor{AnchorPoint{Translated: 0, Bridge: 0}, anchorSoft})
	}
	for _, v := range validated {
		guides = append(guides, guideAnchor{v, anchorReal})
	}
	last := validated[len(validated)-1]
	if last.Translated < lastT && last.Bridge < lastB {
		guides = append(guides, guideAnchor{AnchorPoint{Translated: lastT, Bridge: lastB}, anchorSoft})
	}
	return guides
}

// buildSearchGuides turns the global anchor set into guides for the local
// search windows. Virtual endpoints are only synthesised where no global
// anchor already covers the endpoint sentence; an evidence-backed anchor at
// the first or last sentence wins over the assumed (0,0)/(lastT,lastB)
// correspondence.
func buildSearchGuides(global []AnchorPoint, lastT, lastB int) []guideAnchor {
	guides := make([]guideAnchor, 0, len(global)+2)
	if len(global) == 0 || global[0].Translated > 0 {
		guides = append(guides, guideAnchor{AnchorPoint{Translated: 0, Bridge: 0}, anchorVirtual})
	}
	for _, g := range global {
		guides = append(guides, guideAnchor{g, anchorReal})
	}
	if len(global) == 0 || global[len(global)-1].Translated < lastT {
		guides = append(guides, guideAnchor{AnchorPoint{Translated: lastT, Bridge: lastB}, anchorVirtual})
	}
	return guides
}

// expectedIndex interpolates the bridge index for translated sentence ti by
// piecewise-linear interpolation between the two guide anchors bracketing it.
func expectedIndex(guides []guideAnchor, ti int) int {
	lo, hi := bracket(guides, ti)
	return interpolate(lo.AnchorPoint, hi.AnchorPoint, ti)
}

// bracket returns the guide anchors on either side of ti. When ti lies
// before the first or after the last guide, both returns are that endpoint.
func bracket(guides []guideAnchor, ti int) (lo, hi guideAnchor) {
	lo = guides[0]
	hi = guides[len(guides)-1]
	for _, g := range guides {
		if g.Translated <= ti {
			lo = g
		}
		if g.Translated >= ti {
			hi = g
			break
		}
	}
	return lo, hi
}

// interpolate linearly maps ti between anchors a and b, rounding to the
// nearest bridge index.
func interpolate(a, b AnchorPoint, ti int) int {
	if b.Translated == a.Translated {
		return a.Bridge
	}
	frac := float64(ti-a.Translated) / float64(b.Translated-a.Translated)
	return a.Bridge + int(math.Round(frac*float64(b.Bridge-a.Bridge)))
}
