package usecase_estimate

import (
	"math"

	"github.com/NicolasKocher/sprint-poker/internal/model"
)

// Aggregate maps a round's votes to a single representative size: the mean of
// the cast weights, rounded to the size whose weight is nearest. Ties resolve
// to the earlier size in scale order (XS before XL). Participants who did not
// vote are ignored; ok is false when nobody voted.
func Aggregate(votes map[string]model.TShirtSize) (size model.TShirtSize, ok bool) {
	if len(votes) == 0 {
		return "", false
	}

	var sum float64
	for _, v := range votes {
		sum += model.SizeWeights[v]
	}
	mean := sum / float64(len(votes))

	closest := model.Sizes[0]
	closestDiff := math.Abs(model.SizeWeights[closest] - mean)
	for _, candidate := range model.Sizes[1:] {
		if diff := math.Abs(model.SizeWeights[candidate] - mean); diff < closestDiff {
			closest = candidate
			closestDiff = diff
		}
	}
	return closest, true
}
