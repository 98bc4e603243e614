package stats

import (
	"sort"

	"github.com/verte-zerg/keyladder/internal/model"
)

// SelectWeakChars picks the most mistyped characters. top of zero or less takes all of them.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	candidates := rankByErrors(aggs)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		runes := []rune(agg.Char)
		if len(runes) > 0 && agg.Errors > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}

// rankByErrors sorts a copy by error count, ties broken by character.
func rankByErrors(aggs []model.CharAggregate) []model.CharAggregate {
	out := make([]model.CharAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Errors == out[j].Errors {
			return out[i].Char < out[j].Char
		}
		return out[i].Errors > out[j].Errors
	})
	return out
}
