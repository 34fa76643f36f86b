package domain

import (
	"math"
	"time"
)

// DailyDerived is one day of the water balance.
type DailyDerived struct {
	Date            time.Time `json:"date"`
	ET0Mm           float64   `json:"et0_mm"`
	PrecipMm        float64   `json:"precip_mm"`
	ETcMm           float64   `json:"etc_mm"`
	EffectiveRainMm float64   `json:"effective_rain_mm"`
	DeficitMm       float64   `json:"deficit_mm"`
}

// DeriveDay computes crop demand, effective rain, and deficit for one record.
func DeriveDay(kc float64, rec DailyWeatherRecord, rain RainfallPolicy) DailyDerived {
	etc := math.Max(0, kc*rec.ET0Mm)
	peff := rain.Effective(rec.PrecipMm)
	return DailyDerived{
		Date:            CivilDate(rec.Date),
		ET0Mm:           rec.ET0Mm,
		PrecipMm:        rec.PrecipMm,
		ETcMm:           etc,
		EffectiveRainMm: peff,
		DeficitMm:       math.Max(0, etc-peff),
	}
}

// DeriveSeries applies DeriveDay to every record. Days are independent.
func DeriveSeries(kc float64, series []DailyWeatherRecord, rain RainfallPolicy) []DailyDerived {
	out := make([]DailyDerived, len(series))
	for i, rec := range series {
		out[i] = DeriveDay(kc, rec, rain)
	}
	return out
}

// DepletionBasis records how accumulated depletion was determined.
type DepletionBasis string

const (
	// BasisTodayOnly is used when no last irrigation date was supplied.
	BasisTodayOnly DepletionBasis = "today_only"
	// BasisSinceIrrigation sums deficits after the last irrigation.
	BasisSinceIrrigation DepletionBasis = "since_last_irrigation"
	// BasisIrrigatedToday is used when the last irrigation is on or after today.
	BasisIrrigatedToday DepletionBasis = "irrigated_today"
)

// Depletion is the accumulated root-zone deficit at today.
type Depletion struct {
	Mm    float64        `json:"mm"`
	Basis DepletionBasis `json:"basis"`
	// ObservedDays is how many series days fell inside the window.
	ObservedDays int `json:"observed_days"`
	// UnobservedDays counts calendar days in the window missing from the
	// series. Non-zero means Mm is a lower bound.
	UnobservedDays int `json:"unobserved_days,omitempty"`
}

// LowerBound reports whether days inside the window were not observed.
func (d Depletion) LowerBound() bool { return d.UnobservedDays > 0 }

// AccumulateDepletion folds daily deficits over (lastIrrigation, today],
// where today is the first day of the series. daily must be non-empty.
func AccumulateDepletion(daily []DailyDerived, lastIrrigation *time.Time) Depletion {
	today := daily[0].Date
	if lastIrrigation == nil {
		return Depletion{Mm: daily[0].DeficitMm, Basis: BasisTodayOnly, ObservedDays: 1}
	}

	last := CivilDate(*lastIrrigation)
	if !last.Before(today) {
		return Depletion{Basis: BasisIrrigatedToday}
	}

	var dep Depletion
	dep.Basis = BasisSinceIrrigation
	for _, d := range daily {
		if d.Date.After(last) && !d.Date.After(today) {
			dep.Mm += d.DeficitMm
			dep.ObservedDays++
		}
	}
	if window := daysBetween(last, today); window > dep.ObservedDays {
		dep.UnobservedDays = window - dep.ObservedDays
	}
	return dep
}

// Decision is the irrigation classification for today.
type Decision string

const (
	DecisionNotRequired Decision = "not_required"
	DecisionOptional    Decision = "optional"
	DecisionRequired    Decision = "required"
)

// Label returns a human-readable form of the decision.
func (d Decision) Label() string {
	switch d {
	case DecisionRequired:
		return "Required"
	case DecisionOptional:
		return "Optional"
	default:
		return "Not required"
	}
}

// Rank orders decisions from NotRequired (0) to Required (2).
func (d Decision) Rank() int {
	switch d {
	case DecisionRequired:
		return 2
	case DecisionOptional:
		return 1
	default:
		return 0
	}
}

// Outlook is the near-term demand used by the optional branch.
type Outlook struct {
	TodayDeficitMm float64
	LookaheadMm    float64
	// Available is false when the series is too short for the look-ahead,
	// in which case the projection test is skipped.
	Available bool
}

// NewOutlook sums the deficits of the days following today. It needs
// 1+lookaheadDays records; with fewer the look-ahead is unavailable.
func NewOutlook(daily []DailyDerived, lookaheadDays int) Outlook {
	o := Outlook{TodayDeficitMm: daily[0].DeficitMm}
	if len(daily) < 1+lookaheadDays {
		return o
	}
	o.Available = true
	for _, d := range daily[1 : 1+lookaheadDays] {
		o.LookaheadMm += d.DeficitMm
	}
	return o
}

// Projected returns dep plus today's deficit and the look-ahead total.
func (o Outlook) Projected(depMm float64) float64 {
	return depMm + o.TodayDeficitMm + o.LookaheadMm
}

// Decide classifies today's irrigation need. It is monotonic in depMm for a
// fixed rawMm.
func Decide(depMm, rawMm float64, outlook Outlook, proximityFraction float64) Decision {
	switch {
	case depMm >= rawMm:
		return DecisionRequired
	case outlook.Available && outlook.Projected(depMm) >= rawMm:
		return DecisionOptional
	case depMm >= proximityFraction*rawMm:
		return DecisionOptional
	default:
		return DecisionNotRequired
	}
}

// NetDepth is the depth needed to refill the root zone, capped at TAW.
func NetDepth(depMm, tawMm float64) float64 {
	return clamp(depMm, 0, tawMm)
}

// GrossDepth inflates the net depth by the application efficiency. A
// non-positive efficiency leaves the depth unchanged.
func GrossDepth(netMm, efficiency float64) float64 {
	if efficiency <= 0 {
		return netMm
	}
	return netMm / efficiency
}

// AverageDailyDeficit is the mean deficit over the first window days (or all
// days when fewer), floored at floorMm.
func AverageDailyDeficit(daily []DailyDerived, window int, floorMm float64) float64 {
	n := min(window, len(daily))
	if n <= 0 {
		return floorMm
	}
	var sum float64
	for _, d := range daily[:n] {
		sum += d.DeficitMm
	}
	return math.Max(floorMm, sum/float64(n))
}

// ReturnInterval estimates how many days it takes to consume RAW at the
// average daily deficit. The rounded value is at least one day.
func ReturnInterval(rawMm, avgDeficitMm float64) (exact float64, days int) {
	if avgDeficitMm <= 0 {
		return 0, 1
	}
	exact = rawMm / avgDeficitMm
	return exact, max(1, int(math.Round(exact)))
}
