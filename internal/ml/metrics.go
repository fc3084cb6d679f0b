package ml

// Evaluation metrics for binary classification. All metrics return 0 when
// their denominator is 0 (e.g. precision with no positive predictions),
// mirroring a zero-division guard rather than NaN.

// Metrics holds the standard binary classification scores.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluate computes metrics for predicted probabilities against true labels,
// thresholding probabilities at 0.5.
func Evaluate(probabilities, y []float64) Metrics {
	var tp, fp, tn, fn float64

	for i, p := range probabilities {
		predicted := 0.0
		if p >= 0.5 {
			predicted = 1.0
		}

		switch {
		case predicted == 1 && y[i] == 1:
			tp++
		case predicted == 1 && y[i] == 0:
			fp++
		case predicted == 0 && y[i] == 0:
			tn++
		default:
			fn++
		}
	}

	metrics := Metrics{}

	total := tp + fp + tn + fn
	if total > 0 {
		metrics.Accuracy = (tp + tn) / total
	}

	if tp+fp > 0 {
		metrics.Precision = tp / (tp + fp)
	}

	if tp+fn > 0 {
		metrics.Recall = tp / (tp + fn)
	}

	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}

	return metrics
}
