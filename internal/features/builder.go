package features

import (
	"math"

	"github.com/helix-lab/signal-ml/internal/types"
)

// columnNames is the fixed feature schema, in construction order. The order
// is part of the train/serve contract: the trainer persists it in the bundle
// and the predictor re-indexes against it.
var columnNames = []string{
	"returns_1", "returns_5", "returns_10",
	"sma_10", "sma_20", "sma_50",
	"sma_ratio_10_20", "sma_ratio_10_50",
	"price_to_sma_10", "price_to_sma_20",
	"std_10", "std_20",
	"bb_upper", "bb_lower", "bb_position",
	"rsi_14",
	"macd", "macd_signal", "macd_hist",
	"atr_14",
	"high_low_range", "body_size", "upper_shadow", "lower_shadow",
	"volume_sma_10", "volume_ratio",
	"momentum_10", "momentum_20",
}

// ColumnNames returns a copy of the fixed feature schema.
func ColumnNames() []string {
	out := make([]string, len(columnNames))
	copy(out, columnNames)

	return out
}

// Build computes the feature matrix for a bar series. All indicators are
// causal. The warm-up period (up to 50 bars for the longest window) produces
// NaN intermediates; the final cleanup pass replaces +-Inf with NaN and all
// NaN with 0, so the returned matrix has the same row count as the input and
// contains no NaN or Inf values.
func Build(bars []types.Bar) *Matrix {
	n := len(bars)

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	opens := make([]float64, n)
	volumes := make([]float64, n)

	totalVolume := 0.0

	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
		opens[i] = bar.Open
		volumes[i] = bar.Volume
		totalVolume += bar.Volume
	}

	cols := make(map[string][]float64, len(columnNames))

	cols["returns_1"] = pctChange(closes, 1)
	cols["returns_5"] = pctChange(closes, 5)
	cols["returns_10"] = pctChange(closes, 10)

	sma10 := rollingMean(closes, 10)
	sma20 := rollingMean(closes, 20)
	sma50 := rollingMean(closes, 50)
	cols["sma_10"] = sma10
	cols["sma_20"] = sma20
	cols["sma_50"] = sma50

	cols["sma_ratio_10_20"] = divide(sma10, sma20)
	cols["sma_ratio_10_50"] = divide(sma10, sma50)
	cols["price_to_sma_10"] = divide(closes, sma10)
	cols["price_to_sma_20"] = divide(closes, sma20)

	std10 := rollingStd(closes, 10)
	std20 := rollingStd(closes, 20)
	cols["std_10"] = std10
	cols["std_20"] = std20

	bbUpper := nanSlice(n)
	bbLower := nanSlice(n)
	bbPosition := nanSlice(n)

	for t := 0; t < n; t++ {
		bbUpper[t] = sma20[t] + 2*std20[t]
		bbLower[t] = sma20[t] - 2*std20[t]
		// zero band width divides to Inf/NaN and becomes 0 after cleanup
		bbPosition[t] = (closes[t] - bbLower[t]) / (bbUpper[t] - bbLower[t])
	}

	cols["bb_upper"] = bbUpper
	cols["bb_lower"] = bbLower
	cols["bb_position"] = bbPosition

	cols["rsi_14"] = rsi(closes, 14)

	ema12 := ema(closes, 12)
	ema26 := ema(closes, 26)
	macd := nanSlice(n)

	for t := 0; t < n; t++ {
		macd[t] = ema12[t] - ema26[t]
	}

	macdSignal := ema(macd, 9)
	macdHist := nanSlice(n)

	for t := 0; t < n; t++ {
		macdHist[t] = macd[t] - macdSignal[t]
	}

	cols["macd"] = macd
	cols["macd_signal"] = macdSignal
	cols["macd_hist"] = macdHist

	cols["atr_14"] = rollingMean(trueRange(highs, lows, closes), 14)

	highLowRange := nanSlice(n)
	bodySize := nanSlice(n)
	upperShadow := nanSlice(n)
	lowerShadow := nanSlice(n)

	for t := 0; t < n; t++ {
		highLowRange[t] = (highs[t] - lows[t]) / closes[t]
		bodySize[t] = math.Abs(closes[t]-opens[t]) / closes[t]
		upperShadow[t] = (highs[t] - math.Max(closes[t], opens[t])) / closes[t]
		lowerShadow[t] = (math.Min(closes[t], opens[t]) - lows[t]) / closes[t]
	}

	cols["high_low_range"] = highLowRange
	cols["body_size"] = bodySize
	cols["upper_shadow"] = upperShadow
	cols["lower_shadow"] = lowerShadow

	if totalVolume > 0 {
		volumeSMA := rollingMean(volumes, 10)
		volumeRatio := nanSlice(n)

		for t := 0; t < n; t++ {
			if volumeSMA[t] == 0 {
				continue // stays NaN, cleaned to 0
			}

			volumeRatio[t] = volumes[t] / volumeSMA[t]
		}

		cols["volume_sma_10"] = volumeSMA
		cols["volume_ratio"] = volumeRatio
	} else {
		// volume-less instruments still produce a well-formed matrix
		cols["volume_sma_10"] = constSlice(n, 0)
		cols["volume_ratio"] = constSlice(n, 1)
	}

	cols["momentum_10"] = shiftDiff(closes, 10)
	cols["momentum_20"] = shiftDiff(closes, 20)

	rows := make([][]float64, n)

	for t := 0; t < n; t++ {
		row := make([]float64, len(columnNames))

		for i, name := range columnNames {
			row[i] = clean(cols[name][t])
		}

		rows[t] = row
	}

	return newMatrix(ColumnNames(), rows)
}

// rsi computes the simple-rolling-mean variant of RSI: mean of gains over
// mean of losses across the window, not Wilder's exponential smoothing. The
// persisted bundle's feature semantics depend on this exact formula; do not
// swap in the classic smoothed form.
func rsi(closes []float64, window int) []float64 {
	n := len(closes)

	gains := make([]float64, n)
	losses := make([]float64, n)

	for t := 1; t < n; t++ {
		delta := closes[t] - closes[t-1]
		if delta > 0 {
			gains[t] = delta
		} else {
			losses[t] = -delta
		}
	}

	gainMean := rollingMean(gains, window)
	lossMean := rollingMean(losses, window)

	out := nanSlice(n)

	for t := 0; t < n; t++ {
		if lossMean[t] == 0 {
			continue // RS undefined, stays NaN, cleaned to 0
		}

		rs := gainMean[t] / lossMean[t]
		out[t] = 100 - 100/(1+rs)
	}

	return out
}

// trueRange returns max(high-low, |high-prevClose|, |low-prevClose|); the
// first bar has no previous close and falls back to high-low.
func trueRange(highs, lows, closes []float64) []float64 {
	n := len(highs)
	out := make([]float64, n)

	for t := 0; t < n; t++ {
		tr := highs[t] - lows[t]
		if t > 0 {
			tr = math.Max(tr, math.Abs(highs[t]-closes[t-1]))
			tr = math.Max(tr, math.Abs(lows[t]-closes[t-1]))
		}

		out[t] = tr
	}

	return out
}

func divide(num, den []float64) []float64 {
	out := nanSlice(len(num))
	for t := range num {
		out[t] = num[t] / den[t]
	}

	return out
}

func constSlice(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

// clean applies the post-processing invariant: +-Inf -> NaN -> 0.
func clean(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}

	return x
}
