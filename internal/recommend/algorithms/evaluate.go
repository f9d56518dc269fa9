// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"math"

	"github.com/tomtom215/songrec/internal/recommend"
)

// evaluate predicts every held-out triplet and summarizes the errors.
func (m *KNNModel) evaluate(test []Rating, keep bool) recommend.Evaluation {
	preds := make([]recommend.HeldOutPrediction, 0, len(test))
	for _, r := range test {
		pred, _ := m.Predict(r.UserID, r.SongID)
		preds = append(preds, recommend.HeldOutPrediction{Prediction: pred, Actual: r.Value})
	}

	eval := Accuracy(preds)
	if keep {
		eval.Predictions = preds
	}
	return eval
}

// Accuracy computes RMSE and MAE over held-out predictions.
// An empty input yields a zero Evaluation.
func Accuracy(preds []recommend.HeldOutPrediction) recommend.Evaluation {
	eval := recommend.Evaluation{Count: len(preds)}
	if len(preds) == 0 {
		return eval
	}

	var sq, abs float64
	for _, p := range preds {
		diff := p.Estimate - p.Actual
		sq += diff * diff
		abs += math.Abs(diff)
		if p.WasImpossible {
			eval.Impossible++
		}
	}
	n := float64(len(preds))
	eval.RMSE = math.Sqrt(sq / n)
	eval.MAE = abs / n
	return eval
}
