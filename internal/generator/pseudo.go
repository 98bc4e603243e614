package generator

import (
	"math/rand"
	"unicode"

	"github.com/verte-zerg/keyladder/internal/charpool"
	"github.com/verte-zerg/keyladder/internal/keymap"
)

// Pools of at most this many characters get rhythmic repeats like "fff jjj".
const smallPool = 3

// PseudoWord returns a token of exactly length characters drawn from pool (space excluded).
// Consonant-heavy pools alternate hands; pools with healthy vowel share alternate vowels
// and consonants; anything else is drawn uniformly. An empty pool yields "".
func PseudoWord(rnd *rand.Rand, pool []rune, length int) string {
	chars := make([]rune, 0, len(pool))
	for _, r := range pool {
		if !unicode.IsSpace(r) {
			chars = append(chars, r)
		}
	}
	if len(chars) == 0 || length <= 0 {
		return ""
	}
	var vowels, consonants, left, right []rune
	for _, r := range chars {
		switch {
		case charpool.IsVowel(r):
			vowels = append(vowels, r)
		case unicode.IsLetter(r):
			consonants = append(consonants, r)
		}
		switch keymap.HandOf(r) {
		case keymap.HandLeft:
			left = append(left, r)
		case keymap.HandRight:
			right = append(right, r)
		}
	}
	vowelShare := float64(len(vowels)) / float64(len(chars))
	switch {
	case len(vowels) == 0 || (vowelShare < 0.2 && len(left) > 0 && len(right) > 0):
		return handAlternation(rnd, chars, left, right, length)
	case len(consonants) > 0:
		return vowelConsonant(rnd, vowels, consonants, length)
	default:
		out := make([]rune, length)
		for i := range out {
			out[i] = chars[rnd.Intn(len(chars))]
		}
		return string(out)
	}
}

func handAlternation(rnd *rand.Rand, chars, left, right []rune, length int) string {
	small := len(chars) <= smallPool
	repeatChance, maxRepeats, switchChance := 0.3, 2, 1.0
	if small {
		repeatChance, maxRepeats, switchChance = 0.6, 3, 0.8
	}
	hands := [2][]rune{left, right}
	hand := rnd.Intn(2)
	out := make([]rune, 0, length+maxRepeats+1)
	for len(out) < length {
		side := hands[hand]
		if len(side) == 0 {
			side = chars
		}
		r := side[rnd.Intn(len(side))]
		n := 1
		if rnd.Float64() < repeatChance {
			n += 1 + rnd.Intn(maxRepeats)
		}
		for i := 0; i < n; i++ {
			out = append(out, r)
		}
		if rnd.Float64() < switchChance {
			hand = 1 - hand
		}
	}
	return string(out[:length])
}

func vowelConsonant(rnd *rand.Rand, vowels, consonants []rune, length int) string {
	out := make([]rune, length)
	vowelTurn := rnd.Intn(2) == 0
	for i := range out {
		if vowelTurn {
			out[i] = vowels[rnd.Intn(len(vowels))]
			vowelTurn = false
			continue
		}
		out[i] = consonants[rnd.Intn(len(consonants))]
		vowelTurn = rnd.Float64() < 0.7
	}
	return string(out)
}
