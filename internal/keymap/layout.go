package keymap

import "unicode"

// Hand is the hand that presses a key in touch typing.
type Hand int

// Hands.
const (
	HandNone Hand = iota
	HandLeft
	HandRight
)

// Finger identifies a touch-typing finger, numbered left pinky to right pinky.
type Finger int

// Fingers.
const (
	FingerNone Finger = iota
	LeftPinky
	LeftRing
	LeftMiddle
	LeftIndex
	Thumb
	RightIndex
	RightMiddle
	RightRing
	RightPinky
)

var fingerNames = map[Finger]string{
	FingerNone:  "-",
	LeftPinky:   "L pinky",
	LeftRing:    "L ring",
	LeftMiddle:  "L middle",
	LeftIndex:   "L index",
	Thumb:       "thumb",
	RightIndex:  "R index",
	RightMiddle: "R middle",
	RightRing:   "R ring",
	RightPinky:  "R pinky",
}

func (f Finger) String() string {
	return fingerNames[f]
}

// QWERTY columns, unshifted and shifted, keyed by finger.
var qwertyFingers = map[Finger]string{
	LeftPinky:   "`1qaz~!QAZ",
	LeftRing:    "2wsx@WSX",
	LeftMiddle:  "3edc#EDC",
	LeftIndex:   "45rtfgvb$%RTFGVB",
	Thumb:       " ",
	RightIndex:  "67yuhjnm^&YUHJNM",
	RightMiddle: "8ik,*IK<",
	RightRing:   "9ol.(OL>",
	RightPinky:  "0p;/-=[]'\\)P:?_+{}\"|\n",
}

var fingerOf = func() map[rune]Finger {
	m := map[rune]Finger{}
	for f, keys := range qwertyFingers {
		for _, r := range keys {
			m[r] = f
		}
	}
	return m
}()

// FingerOf returns the finger that types r on a QWERTY layout.
func FingerOf(r rune) Finger {
	if f, ok := fingerOf[Canonical(r)]; ok {
		return f
	}
	if f, ok := fingerOf[unicode.ToLower(r)]; ok {
		return f
	}
	return FingerNone
}

// HandOf returns the hand that types r. Space and unknown keys have no hand.
func HandOf(r rune) Hand {
	switch f := FingerOf(r); {
	case f >= LeftPinky && f <= LeftIndex:
		return HandLeft
	case f >= RightIndex && f <= RightPinky:
		return HandRight
	default:
		return HandNone
	}
}
