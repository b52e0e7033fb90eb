package signal

import (
	"strings"
	"time"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// macdStrengthThreshold — fixed |MACD − signal| gap above which the
// MACD relation counts as strong for confidence scoring.
const macdStrengthThreshold = 0.5

const (
	minConfidence = 0.3
	maxConfidence = 0.9
	minRisk       = 0.2
	maxRisk       = 0.9
)

// Classify maps an indicator snapshot to an overall signal. Rules are
// evaluated in order; the first match wins, so a snapshot matching both
// the strong-buy and buy conditions resolves to strong-buy.
func Classify(ts models.TechnicalSignals) models.SignalType {
	switch {
	case ts.GoldenCross && ts.RSI14 < 70 && ts.MACD > ts.MACDSignal:
		return models.SignalStrongBuy
	case ts.MACD > ts.MACDSignal && ts.RSI14 < 60:
		return models.SignalBuy
	case ts.DeathCross || (ts.RSI14 > 70 && ts.MACD < ts.MACDSignal):
		return models.SignalStrongSell
	case ts.MACD < ts.MACDSignal && ts.RSI14 > 60:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// Confidence starts at 0.5 and rewards extreme RSI, a wide MACD gap and
// a detected cross; clamped to [0.3, 0.9].
func Confidence(ts models.TechnicalSignals) float64 {
	c := 0.5
	if ts.RSI14 < 30 || ts.RSI14 > 70 {
		c += 0.1
	}
	if abs(ts.MACD-ts.MACDSignal) > macdStrengthThreshold {
		c += 0.1
	}
	if ts.GoldenCross || ts.DeathCross {
		c += 0.2
	}
	return clamp(c, minConfidence, maxConfidence)
}

// PotentialReturn estimates the move to the nearest boundary level:
// up to resistance for buy-side signals, down to support for sell-side.
func PotentialReturn(overall models.SignalType, ts models.TechnicalSignals, currentPrice float64) float64 {
	if currentPrice <= 0 {
		return 0
	}
	switch {
	case overall.IsBuySide():
		return (ts.Resistance/currentPrice - 1) * 100
	case overall.IsSellSide():
		return (1 - ts.Support/currentPrice) * 100
	default:
		return 0
	}
}

// RiskLevel scales with the distance already travelled from the
// relevant boundary; clamped to [0.2, 0.9].
func RiskLevel(overall models.SignalType, ts models.TechnicalSignals, currentPrice float64) float64 {
	risk := 0.5
	switch {
	case overall.IsBuySide() && ts.Support > 0:
		risk += 2 * (currentPrice/ts.Support - 1)
	case overall.IsSellSide() && currentPrice > 0:
		risk += 2 * (ts.Resistance/currentPrice - 1)
	}
	return clamp(risk, minRisk, maxRisk)
}

// HoldingPeriodDays suggests how long to hold a position opened on this
// signal.
func HoldingPeriodDays(overall models.SignalType, risk float64) int {
	switch overall {
	case models.SignalStrongBuy:
		if risk < 0.5 {
			return 90
		}
		return 30
	case models.SignalBuy:
		if risk < 0.5 {
			return 30
		}
		return 14
	case models.SignalHold:
		return 7
	default:
		return 1
	}
}

// EntryPrice suggests a limit entry just above support for buys and
// just below resistance for sells.
func EntryPrice(overall models.SignalType, ts models.TechnicalSignals, currentPrice float64) float64 {
	switch {
	case overall.IsBuySide():
		return ts.Support * 1.02
	case overall.IsSellSide():
		return ts.Resistance * 0.98
	default:
		return currentPrice
	}
}

// Describe builds the human-readable reasoning: a sentence naming the
// signal strength followed by the rule components that fired.
func Describe(overall models.SignalType, ts models.TechnicalSignals) string {
	parts := make([]string, 0, 4)

	switch overall {
	case models.SignalStrongBuy:
		parts = append(parts, "Strong buy signal detected.")
	case models.SignalBuy:
		parts = append(parts, "Buy signal detected.")
	case models.SignalStrongSell:
		parts = append(parts, "Strong sell signal detected.")
	case models.SignalSell:
		parts = append(parts, "Sell signal detected.")
	default:
		parts = append(parts, "No clear direction; holding is suggested.")
	}

	if ts.GoldenCross {
		parts = append(parts, "Golden cross: 50-period SMA crossed above the 200-period SMA.")
	}
	if ts.DeathCross {
		parts = append(parts, "Death cross: 50-period SMA crossed below the 200-period SMA.")
	}

	switch {
	case ts.RSI14 > 70:
		parts = append(parts, "RSI indicates overbought conditions.")
	case ts.RSI14 < 30:
		parts = append(parts, "RSI indicates oversold conditions.")
	default:
		parts = append(parts, "RSI is in the neutral band.")
	}

	if ts.MACD > ts.MACDSignal {
		parts = append(parts, "MACD is above its signal line.")
	} else if ts.MACD < ts.MACDSignal {
		parts = append(parts, "MACD is below its signal line.")
	}

	return strings.Join(parts, " ")
}

// Synthesize turns an indicator snapshot into a full recommendation for
// the given asset.
func Synthesize(asset models.Asset, ts models.TechnicalSignals) models.AssetRecommendation {
	overall := Classify(ts)
	price := asset.CurrentPrice

	potential := PotentialReturn(overall, ts, price)
	risk := RiskLevel(overall, ts, price)
	entry := EntryPrice(overall, ts, price)

	var exit *float64
	if overall.IsBuySide() {
		v := entry * (1 + potential/100)
		exit = &v
	}

	return models.AssetRecommendation{
		Asset:             asset,
		Type:              overall,
		Reasoning:         Describe(overall, ts),
		Confidence:        Confidence(ts),
		PotentialReturn:   potential,
		RiskLevel:         risk,
		HoldingPeriodDays: HoldingPeriodDays(overall, risk),
		EntryPrice:        entry,
		ExitPrice:         exit,
		GeneratedAt:       time.Now().UTC(),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
