package model

import "time"

// TShirtSize is one label of the fixed estimation scale.
type TShirtSize string

const (
	SizeXS TShirtSize = "XS"
	SizeS  TShirtSize = "S"
	SizeM  TShirtSize = "M"
	SizeL  TShirtSize = "L"
	SizeXL TShirtSize = "XL"
)

// Sizes lists the scale in ascending order. Aggregation tie-breaks resolve
// to the earlier entry.
var Sizes = []TShirtSize{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// SizeWeights assigns the numeric weight used for result aggregation.
var SizeWeights = map[TShirtSize]float64{
	SizeXS: 1,
	SizeS:  2,
	SizeM:  3,
	SizeL:  5,
	SizeXL: 8,
}

func (s TShirtSize) Valid() bool {
	_, ok := SizeWeights[s]
	return ok
}

// VoteDuration is the wall-clock budget of one voting round. Enforcement is
// client-side: the first client whose countdown hits zero finishes the round.
const VoteDuration = 10 * time.Second
