package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/helix-lab/signal-ml/internal/types"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

type BuilderTestSuite struct {
	suite.Suite
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

// constantBars returns bars where open=high=low=close=price for every bar.
func constantBars(n int, price, volume float64) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{Open: price, High: price, Low: price, Close: price, Volume: volume}
	}

	return bars
}

// trendBars returns bars with a deterministic up-trend and some range.
func trendBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		price := 100.0 + float64(i)*0.5
		bars[i] = types.Bar{
			Open:   price - 0.2,
			High:   price + 0.4,
			Low:    price - 0.5,
			Close:  price,
			Volume: 1000 + float64(i%7)*10,
		}
	}

	return bars
}

func (suite *BuilderTestSuite) TestRowCountMatchesInput() {
	for _, n := range []int{1, 5, 60, 200} {
		matrix := Build(trendBars(n))
		suite.Equal(n, matrix.Len())
		suite.Len(matrix.Names, len(ColumnNames()))

		for _, row := range matrix.Rows {
			suite.Len(row, len(matrix.Names))
		}
	}
}

func (suite *BuilderTestSuite) TestNoNaNOrInf() {
	matrix := Build(trendBars(120))

	for t, row := range matrix.Rows {
		for i, value := range row {
			suite.False(math.IsNaN(value), "NaN at row %d column %s", t, matrix.Names[i])
			suite.False(math.IsInf(value, 0), "Inf at row %d column %s", t, matrix.Names[i])
		}
	}
}

func (suite *BuilderTestSuite) TestConstantPriceSeries() {
	matrix := Build(constantBars(100, 50.0, 0))

	zeroColumns := []string{
		"returns_1", "returns_5", "returns_10",
		"momentum_10", "momentum_20",
		"macd", "macd_signal", "macd_hist",
		"rsi_14", "bb_position",
		"std_10", "std_20", "atr_14",
		"high_low_range", "body_size", "upper_shadow", "lower_shadow",
	}

	for _, name := range zeroColumns {
		col, ok := matrix.Column(name)
		suite.True(ok, name)

		for t, row := range matrix.Rows {
			suite.Equal(0.0, row[col], "column %s row %d", name, t)
		}
	}

	// SMAs equal the constant price once warmed up
	col, _ := matrix.Column("sma_50")
	suite.Equal(0.0, matrix.Rows[48][col]) // warm-up, NaN cleaned to 0
	suite.InDelta(50.0, matrix.Rows[49][col], 1e-9)
	suite.InDelta(50.0, matrix.Rows[99][col], 1e-9)
}

func (suite *BuilderTestSuite) TestZeroVolumeConstantColumns() {
	matrix := Build(constantBars(200, 10.0, 0))

	smaCol, _ := matrix.Column("volume_sma_10")
	ratioCol, _ := matrix.Column("volume_ratio")

	for _, row := range matrix.Rows {
		suite.Equal(0.0, row[smaCol])
		suite.Equal(1.0, row[ratioCol])
	}
}

func (suite *BuilderTestSuite) TestConstantPositiveVolume() {
	matrix := Build(constantBars(50, 10.0, 500))

	smaCol, _ := matrix.Column("volume_sma_10")
	ratioCol, _ := matrix.Column("volume_ratio")

	// warm-up rows are cleaned to 0
	suite.Equal(0.0, matrix.Rows[8][smaCol])
	suite.Equal(0.0, matrix.Rows[8][ratioCol])

	suite.InDelta(500.0, matrix.Rows[9][smaCol], 1e-9)
	suite.InDelta(1.0, matrix.Rows[9][ratioCol], 1e-9)
	suite.InDelta(1.0, matrix.Rows[49][ratioCol], 1e-9)
}

func (suite *BuilderTestSuite) TestReturnsFormula() {
	bars := trendBars(30)
	matrix := Build(bars)

	col, _ := matrix.Column("returns_1")
	expected := bars[15].Close/bars[14].Close - 1
	suite.InDelta(expected, matrix.Rows[15][col], 1e-12)

	col, _ = matrix.Column("returns_10")
	expected = bars[25].Close/bars[15].Close - 1
	suite.InDelta(expected, matrix.Rows[25][col], 1e-12)

	// warm-up row cleaned to 0
	suite.Equal(0.0, matrix.Rows[9][col])
}

func (suite *BuilderTestSuite) TestSMAAndRatios() {
	bars := trendBars(60)
	matrix := Build(bars)

	smaCol, _ := matrix.Column("sma_10")
	sum := 0.0

	for i := 20; i < 30; i++ {
		sum += bars[i].Close
	}

	suite.InDelta(sum/10, matrix.Rows[29][smaCol], 1e-9)

	priceCol, _ := matrix.Column("price_to_sma_10")
	suite.InDelta(bars[29].Close/(sum/10), matrix.Rows[29][priceCol], 1e-9)
}

func (suite *BuilderTestSuite) TestRollingStdIsSampleStd() {
	// alternating series: sample std of any 10-window of {0,1,...} values
	bars := make([]types.Bar, 30)
	for i := range bars {
		price := 100.0
		if i%2 == 1 {
			price = 102.0
		}

		bars[i] = types.Bar{Open: price, High: price, Low: price, Close: price}
	}

	matrix := Build(bars)
	col, _ := matrix.Column("std_10")

	// 5 values of 100 and 5 of 102: mean 101, ss = 10*1 = 10, var = 10/9
	suite.InDelta(math.Sqrt(10.0/9.0), matrix.Rows[20][col], 1e-9)
}

func (suite *BuilderTestSuite) TestBollingerBands() {
	bars := trendBars(60)
	matrix := Build(bars)

	smaCol, _ := matrix.Column("sma_20")
	stdCol, _ := matrix.Column("std_20")
	upperCol, _ := matrix.Column("bb_upper")
	lowerCol, _ := matrix.Column("bb_lower")
	posCol, _ := matrix.Column("bb_position")

	t := 40
	sma := matrix.Rows[t][smaCol]
	std := matrix.Rows[t][stdCol]

	suite.InDelta(sma+2*std, matrix.Rows[t][upperCol], 1e-9)
	suite.InDelta(sma-2*std, matrix.Rows[t][lowerCol], 1e-9)

	expected := (bars[t].Close - (sma - 2*std)) / (4 * std)
	suite.InDelta(expected, matrix.Rows[t][posCol], 1e-9)
}

func (suite *BuilderTestSuite) TestRSIUpOnlySeriesIsCleanedToZero() {
	// strictly increasing closes: loss mean is 0, RS undefined, RSI cleaned to 0
	matrix := Build(trendBars(40))
	col, _ := matrix.Column("rsi_14")

	for _, row := range matrix.Rows {
		suite.Equal(0.0, row[col])
	}
}

func (suite *BuilderTestSuite) TestRSISimpleRollingMean() {
	// alternate +2/-1 moves: gains mean = 7*2/14 = 1, losses mean = 7*1/14 = 0.5
	bars := make([]types.Bar, 40)
	price := 100.0

	for i := range bars {
		if i > 0 {
			if i%2 == 1 {
				price += 2
			} else {
				price -= 1
			}
		}

		bars[i] = types.Bar{Open: price, High: price, Low: price, Close: price}
	}

	matrix := Build(bars)
	col, _ := matrix.Column("rsi_14")

	// RS = 1/0.5 = 2, RSI = 100 - 100/3
	suite.InDelta(100-100.0/3.0, matrix.Rows[30][col], 1e-9)
}

func (suite *BuilderTestSuite) TestMACDSeededWithFirstValue() {
	bars := trendBars(5)
	matrix := Build(bars)

	col, _ := matrix.Column("macd")
	// both EMAs are seeded with close[0], so MACD starts at exactly 0
	suite.Equal(0.0, matrix.Rows[0][col])

	// afterwards the fast EMA leads in an up-trend
	suite.Greater(matrix.Rows[4][col], 0.0)
}

func (suite *BuilderTestSuite) TestATRFirstBarFallback() {
	bars := trendBars(20)
	matrix := Build(bars)
	col, _ := matrix.Column("atr_14")

	// true range is constant 0.9 for the trend fixture (high-low), and the
	// previous-close terms never exceed it by much; verify the rolling mean
	// matches a direct recomputation
	trs := make([]float64, len(bars))
	for t := range bars {
		tr := bars[t].High - bars[t].Low
		if t > 0 {
			tr = math.Max(tr, math.Abs(bars[t].High-bars[t-1].Close))
			tr = math.Max(tr, math.Abs(bars[t].Low-bars[t-1].Close))
		}

		trs[t] = tr
	}

	sum := 0.0
	for t := 6; t < 20; t++ {
		sum += trs[t]
	}

	suite.InDelta(sum/14, matrix.Rows[19][col], 1e-9)
}

func (suite *BuilderTestSuite) TestCandleShapeFeatures() {
	bars := []types.Bar{{Open: 10, High: 12, Low: 9, Close: 11, Volume: 0}}
	matrix := Build(bars)

	get := func(name string) float64 {
		col, ok := matrix.Column(name)
		suite.True(ok, name)

		return matrix.Rows[0][col]
	}

	suite.InDelta(3.0/11.0, get("high_low_range"), 1e-12)
	suite.InDelta(1.0/11.0, get("body_size"), 1e-12)
	suite.InDelta(1.0/11.0, get("upper_shadow"), 1e-12) // high - max(close, open)
	suite.InDelta(1.0/11.0, get("lower_shadow"), 1e-12) // min(close, open) - low
}

func (suite *BuilderTestSuite) TestSelectRowReindexesByName() {
	matrix := Build(trendBars(60))

	names := []string{"macd", "returns_1", "sma_10"}
	row, err := matrix.SelectRow(59, names)
	suite.NoError(err)
	suite.Len(row, 3)

	macdCol, _ := matrix.Column("macd")
	suite.Equal(matrix.Rows[59][macdCol], row[0])
}

func (suite *BuilderTestSuite) TestSelectRowUnknownFeature() {
	matrix := Build(trendBars(10))

	_, err := matrix.SelectRow(9, []string{"not_a_feature"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureNotFound))
}

func (suite *BuilderTestSuite) TestSelectRowOutOfRange() {
	matrix := Build(trendBars(10))

	_, err := matrix.SelectRow(10, []string{"macd"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureDimension))
}

func (suite *BuilderTestSuite) TestEmptySeries() {
	matrix := Build(nil)
	suite.Equal(0, matrix.Len())
	suite.Len(matrix.Names, len(ColumnNames()))
}
