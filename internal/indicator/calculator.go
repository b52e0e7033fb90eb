package indicator

import (
	"errors"
	"time"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// All functions in this package are pure and total over ascending
// PricePoint slices: short series degrade to the data that exists
// instead of erroring.

const (
	smaShortPeriod = 50
	smaLongPeriod  = 200
	emaPeriod      = 20
	rsiPeriod      = 14
	macdFast       = 12
	macdSlow       = 26
	macdSignalLen  = 9
	rangePeriod    = 14
)

// ErrEmptySeries is returned by Evaluate for an empty price history.
var ErrEmptySeries = errors.New("indicator: empty price series")

// SMA returns the mean of the last n closes. With fewer than n points
// it falls back to the mean of all available closes.
func SMA(points []models.PricePoint, n int) float64 {
	if len(points) == 0 || n <= 0 {
		return 0
	}
	w := n
	if len(points) < w {
		w = len(points)
	}
	sum := 0.0
	for _, p := range points[len(points)-w:] {
		sum += p.Close
	}
	return sum / float64(w)
}

// EMA seeds with the mean of the first n closes (all of them when the
// series is shorter) and folds the remaining closes in chronological
// order. For series shorter than n this reduces to the plain mean,
// mirroring the SMA fallback.
func EMA(points []models.PricePoint, n int) float64 {
	if len(points) == 0 || n <= 0 {
		return 0
	}
	w := n
	if len(points) < w {
		w = len(points)
	}
	seed := 0.0
	for _, p := range points[:w] {
		seed += p.Close
	}
	ema := seed / float64(w)

	k := 2.0 / float64(n+1)
	for _, p := range points[w:] {
		ema = (p.Close-ema)*k + ema
	}
	return ema
}

// RSI computes the relative strength index over the last n deltas.
// A series of n points or fewer yields the neutral value 50.
func RSI(points []models.PricePoint, n int) float64 {
	if n <= 0 || len(points) <= n {
		return 50
	}
	window := points[len(points)-n-1:]
	gains, losses := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		change := window[i].Close - window[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}
	avgGain := gains / float64(n)
	avgLoss := losses / float64(n)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (EMA12−EMA26), its signal line and the
// histogram. The true signal line needs the MACD's own history, which
// a single snapshot does not carry; we rebuild it deterministically by
// evaluating the MACD over the last nine prefixes of the series and
// taking the EMA9 of those values.
func MACD(points []models.PricePoint) (line, signal, histogram float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	line = macdAt(points)

	start := len(points) - macdSignalLen + 1
	if start < 1 {
		start = 1
	}
	history := make([]float64, 0, macdSignalLen)
	for i := start; i <= len(points); i++ {
		history = append(history, macdAt(points[:i]))
	}
	signal = emaOf(history, macdSignalLen)
	return line, signal, line - signal
}

func macdAt(points []models.PricePoint) float64 {
	return EMA(points, macdFast) - EMA(points, macdSlow)
}

// emaOf is EMA over raw float values, same seeding rules as EMA.
func emaOf(values []float64, n int) float64 {
	if len(values) == 0 || n <= 0 {
		return 0
	}
	w := n
	if len(values) < w {
		w = len(values)
	}
	seed := 0.0
	for _, v := range values[:w] {
		seed += v
	}
	ema := seed / float64(w)

	k := 2.0 / float64(n+1)
	for _, v := range values[w:] {
		ema = (v-ema)*k + ema
	}
	return ema
}

// Crosses detects a golden or death cross by comparing the SMA50/SMA200
// relation now against the same relation one point earlier. The two
// flags are mutually exclusive.
func Crosses(points []models.PricePoint) (golden, death bool) {
	if len(points) < 2 {
		return false, false
	}
	cur50 := SMA(points, smaShortPeriod)
	cur200 := SMA(points, smaLongPeriod)
	prev := points[:len(points)-1]
	prev50 := SMA(prev, smaShortPeriod)
	prev200 := SMA(prev, smaLongPeriod)

	golden = cur50 > cur200 && prev50 <= prev200
	death = cur50 < cur200 && prev50 >= prev200
	return golden, death
}

// Support is the minimum low over the trailing 14 points.
func Support(points []models.PricePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	low := points[len(points)-1].Low
	for _, p := range trailing(points, rangePeriod) {
		if p.Low < low {
			low = p.Low
		}
	}
	return low
}

// Resistance is the maximum high over the trailing 14 points.
func Resistance(points []models.PricePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	high := points[len(points)-1].High
	for _, p := range trailing(points, rangePeriod) {
		if p.High > high {
			high = p.High
		}
	}
	return high
}

func trailing(points []models.PricePoint, n int) []models.PricePoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// Evaluate computes the full indicator snapshot for one asset. The
// overall signal and description are filled in by the signal package.
func Evaluate(symbol string, points []models.PricePoint) (models.TechnicalSignals, error) {
	if len(points) == 0 {
		return models.TechnicalSignals{}, ErrEmptySeries
	}

	line, sig, hist := MACD(points)
	golden, death := Crosses(points)

	return models.TechnicalSignals{
		Symbol:        symbol,
		SMA50:         SMA(points, smaShortPeriod),
		SMA200:        SMA(points, smaLongPeriod),
		EMA20:         EMA(points, emaPeriod),
		GoldenCross:   golden,
		DeathCross:    death,
		RSI14:         RSI(points, rsiPeriod),
		MACD:          line,
		MACDSignal:    sig,
		MACDHistogram: hist,
		Support:       Support(points),
		Resistance:    Resistance(points),
		CalculatedAt:  time.Now().UTC(),
	}, nil
}
