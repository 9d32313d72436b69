package bridgemap

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// embedConcurrency bounds concurrent embedding requests per mapping run.
// Each unresolved sentence issues exactly one batch request.
const embedConcurrency = 4

// refineUnresolved attempts to resolve remaining [Unresolved] entries with
// the embedder oracle. For each unresolved sentence it batches the translated
// sentence plus a window of bridge candidates around the expected index into
// a single request, then accepts the cosine-best candidate only when the
// similarity clears the floor and beats the runner-up by the configured
// margin.
//
// Sentences are refined concurrently; each goroutine writes only its own map
// slot. Failures leave the slot unresolved. Returns the number of slots
// resolved; request and error counts land on the report.
func (a *Aligner) refineUnresolved(ctx context.Context, m SentenceMap, translated []translatedSentence, bridge []bridgeSentence, guides []guideAnchor, report *Report) int {
	var resolved, requests, failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for ti := range m {
		if m[ti] != Unresolved {
			continue
		}

		exp := expectedIndex(guides, ti)
		lo, hi := exp-a.tuning.EmbedWindow, exp+a.tuning.EmbedWindow
		if lo < 0 {
			lo = 0
		}
		if hi > len(bridge)-1 {
			hi = len(bridge) - 1
		}
		if lo > hi {
			continue
		}

		texts := make([]string, 0, hi-lo+2)
		texts = append(texts, translated[ti].text())
		for bi := lo; bi <= hi; bi++ {
			texts = append(texts, bridge[bi].Text)
		}

		g.Go(func() error {
			requests.Add(1)
			vecs, err := a.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				failures.Add(1)
				slog.Debug("embedding fallback failed; leaving sentence unresolved",
					"sentence", ti, "err", err)
				return nil
			}
			if len(vecs) != len(texts) {
				return nil
			}

			query := vecs[0]
			best, second := -1.0, -1.0
			bestIdx := -1
			for i, v := range vecs[1:] {
				sim := dot(query, v)
				if sim > best {
					second = best
					best = sim
					bestIdx = lo + i
				} else if sim > second {
					second = sim
				}
			}

			if bestIdx < 0 || best < a.tuning.EmbedMinSimilarity {
				return nil
			}
			if second > 0 && best < second*a.tuning.EmbedMargin {
				return nil
			}
			m[ti] = int32(bestIdx)
			resolved.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	report.EmbedRequests = int(requests.Load())
	report.EmbedErrors = int(failures.Load())
	return int(resolved.Load())
}

// dot is the cosine similarity for normalised vectors.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
