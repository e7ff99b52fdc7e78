// Package presentation maps pipeline state to values a view can render directly.
package presentation

// GaugeCircumference is the stroke length of the gauge circle (2π × 45, rounded).
const GaugeCircumference = 283.0

// Tier is the color band a score falls into
type Tier string

const (
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

// Tier colors
const (
	ColorSuccess = "#22c55e"
	ColorWarning = "#eab308"
	ColorDanger  = "#ef4444"
)

// Gauge holds the derived values for the circular score indicator
type Gauge struct {
	Score         float64 `json:"score"`
	Circumference float64 `json:"circumference"`
	DashOffset    float64 `json:"dash_offset"`
	Color         string  `json:"color"`
	Tier          Tier    `json:"tier"`
}

// NewGauge derives the gauge for a score. The score is used as given.
func NewGauge(score float64) Gauge {
	tier := TierFor(score)
	return Gauge{
		Score:         score,
		Circumference: GaugeCircumference,
		DashOffset:    DashOffset(score),
		Color:         tier.Color(),
		Tier:          tier,
	}
}

// DashOffset is the unfilled part of the gauge stroke
func DashOffset(score float64) float64 {
	return GaugeCircumference * (1 - score/100)
}

// TierFor picks the color band. Ties at 80 and 60 go to the higher band.
func TierFor(score float64) Tier {
	switch {
	case score >= 80:
		return TierSuccess
	case score >= 60:
		return TierWarning
	default:
		return TierDanger
	}
}

// Color returns the stroke color for the tier
func (t Tier) Color() string {
	switch t {
	case TierSuccess:
		return ColorSuccess
	case TierWarning:
		return ColorWarning
	default:
		return ColorDanger
	}
}
