package model

const (
	// PeriodsPerYear is the number of compounding periods (half-years) per year.
	PeriodsPerYear = 2
	// BaseYear anchors period 0 of every timeline.
	BaseYear = 2025
)

// GrowthCurve holds annual growth rates (percent) keyed by holding-period tier.
type GrowthCurve struct {
	Year1     float64 `json:"year1" yaml:"year1"`
	Years2To3 float64 `json:"years2to3" yaml:"years2to3"`
	Year4     float64 `json:"year4" yaml:"year4"`
	Year5Plus float64 `json:"year5plus" yaml:"year5plus"`
}

// FlatCurve returns a curve that applies the same annual rate in every tier.
func FlatCurve(rate float64) GrowthCurve {
	return GrowthCurve{Year1: rate, Years2To3: rate, Year4: rate, Year5Plus: rate}
}
