package domain

import (
	"errors"
	"fmt"
	"time"
)

// Policy holds the tunable constants of the advisory.
type Policy struct {
	Rainfall RainfallPolicy `json:"rainfall"`
	// LookaheadDays is how many days after today the optional branch projects.
	LookaheadDays int `json:"lookahead_days"`
	// ProximityFraction of RAW already depleted that makes irrigation optional.
	ProximityFraction float64 `json:"proximity_fraction"`
	// AveragingWindowDays bounds the mean deficit used for the return interval.
	AveragingWindowDays int `json:"averaging_window_days"`
	// MinAverageDeficitMm floors the mean deficit.
	MinAverageDeficitMm float64 `json:"min_average_deficit_mm"`
}

// DefaultPolicy returns the field-tested defaults.
func DefaultPolicy() Policy {
	return Policy{
		Rainfall:            DefaultRainfallPolicy(),
		LookaheadDays:       2,
		ProximityFraction:   0.8,
		AveragingWindowDays: 7,
		MinAverageDeficitMm: 0.1,
	}
}

// Validate checks that every constant is in range.
func (p Policy) Validate() error {
	var errs []error
	if p.Rainfall.ThresholdMm < 0 {
		errs = append(errs, errors.New("rain threshold must be >= 0"))
	}
	if p.Rainfall.ExcessFraction < 0 || p.Rainfall.ExcessFraction > 1 {
		errs = append(errs, errors.New("rain excess fraction must be within [0,1]"))
	}
	if p.LookaheadDays < 0 {
		errs = append(errs, errors.New("lookahead days must be >= 0"))
	}
	if p.ProximityFraction <= 0 || p.ProximityFraction > 1 {
		errs = append(errs, errors.New("proximity fraction must be within (0,1]"))
	}
	if p.AveragingWindowDays < 1 {
		errs = append(errs, errors.New("averaging window must be >= 1 day"))
	}
	if p.MinAverageDeficitMm <= 0 {
		errs = append(errs, errors.New("minimum average deficit must be > 0"))
	}
	return errors.Join(errs...)
}

// Inputs are the resolved parameters for one advisory.
type Inputs struct {
	Crop            CropProfile
	Stage           Stage
	Soil            SoilProfile
	Method          IrrigationMethod
	RootDepthMeters float64
	LastIrrigation  *time.Time
}

// TAW is the total available water in the root zone, mm.
func (in Inputs) TAW() float64 {
	return in.Soil.AvailableWaterCapacity * in.RootDepthMeters
}

// RAW is the readily available water, mm.
func (in Inputs) RAW() float64 {
	return in.Crop.DepletionFraction * in.TAW()
}

func (in Inputs) validate() error {
	if in.RootDepthMeters <= 0 {
		return fmt.Errorf("%w: root depth %v m must be positive", ErrInvalidInputs, in.RootDepthMeters)
	}
	if in.Soil.AvailableWaterCapacity <= 0 {
		return fmt.Errorf("%w: soil %q has no available water capacity", ErrInvalidInputs, in.Soil.ID)
	}
	if in.Crop.DepletionFraction <= 0 || in.Crop.DepletionFraction > 1 {
		return fmt.Errorf("%w: crop %q depletion fraction outside (0,1]", ErrInvalidInputs, in.Crop.ID)
	}
	return nil
}

// WarningCode identifies a non-fatal condition in an advisory.
type WarningCode string

const (
	WarningInsufficientHorizon WarningCode = "insufficient_horizon"
	WarningDepletionLowerBound WarningCode = "depletion_lower_bound"
	WarningNoIrrigationHistory WarningCode = "no_irrigation_history"
)

// Warning is a non-fatal condition attached to an advisory.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Advisory is the engine output for one request.
type Advisory struct {
	Decision                Decision       `json:"decision"`
	DecisionLabel           string         `json:"decision_label"`
	ShouldIrrigateToday     bool           `json:"should_irrigate_today"`
	NetDepthMm              float64        `json:"net_depth_mm"`
	GrossDepthMm            float64        `json:"gross_depth_mm"`
	GrossVolumeM3PerDecare  float64        `json:"gross_volume_m3_per_decare"`
	GrossVolumeM3PerHectare float64        `json:"gross_volume_m3_per_hectare"`
	EstimatedIntervalDays   int            `json:"estimated_interval_days"`
	IntervalDaysExact       float64        `json:"interval_days_exact"`
	TAWMm                   float64        `json:"taw_mm"`
	RAWMm                   float64        `json:"raw_mm"`
	Depletion               Depletion      `json:"depletion"`
	ProjectedDepletionMm    *float64       `json:"projected_depletion_mm,omitempty"`
	AverageDailyDeficitMm   float64        `json:"average_daily_deficit_mm"`
	Daily                   []DailyDerived `json:"daily"`
	Reasons                 []string       `json:"reasons"`
	Assumptions             []string       `json:"assumptions"`
	Warnings                []Warning      `json:"warnings,omitempty"`
}

// ComputeAdvisory runs the water balance over a weather series. It reads no
// clock and holds no state, so identical arguments give identical advisories.
func ComputeAdvisory(in Inputs, series []DailyWeatherRecord, policy Policy) (Advisory, error) {
	if err := policy.Validate(); err != nil {
		return Advisory{}, fmt.Errorf("invalid policy: %w", err)
	}
	if err := in.validate(); err != nil {
		return Advisory{}, err
	}
	if err := ValidateSeries(series); err != nil {
		return Advisory{}, err
	}
	kc, err := in.Crop.Kc(in.Stage)
	if err != nil {
		return Advisory{}, err
	}

	taw := in.TAW()
	raw := in.RAW()
	daily := DeriveSeries(kc, series, policy.Rainfall)
	dep := AccumulateDepletion(daily, in.LastIrrigation)
	outlook := NewOutlook(daily, policy.LookaheadDays)
	decision := Decide(dep.Mm, raw, outlook, policy.ProximityFraction)

	net := NetDepth(dep.Mm, taw)
	gross := GrossDepth(net, in.Method.ApplicationEfficiency)
	avg := AverageDailyDeficit(daily, policy.AveragingWindowDays, policy.MinAverageDeficitMm)
	exact, interval := ReturnInterval(raw, avg)

	adv := Advisory{
		Decision:                decision,
		DecisionLabel:           decision.Label(),
		ShouldIrrigateToday:     decision == DecisionRequired,
		NetDepthMm:              net,
		GrossDepthMm:            gross,
		GrossVolumeM3PerDecare:  gross,
		GrossVolumeM3PerHectare: gross * 10,
		EstimatedIntervalDays:   interval,
		IntervalDaysExact:       exact,
		TAWMm:                   taw,
		RAWMm:                   raw,
		Depletion:               dep,
		AverageDailyDeficitMm:   avg,
		Daily:                   daily,
	}
	if outlook.Available {
		projected := outlook.Projected(dep.Mm)
		adv.ProjectedDepletionMm = &projected
	}

	adv.Reasons = reasonTrace(in, kc, daily[0], dep, outlook, decision, raw, policy, avg, exact)
	adv.Assumptions = assumptionTrace(in, kc, taw, raw, dep, policy)
	adv.Warnings = warnings(in, dep, outlook, len(daily), policy)
	return adv, nil
}

func reasonTrace(in Inputs, kc float64, today DailyDerived, dep Depletion, o Outlook,
	decision Decision, raw float64, policy Policy, avg, interval float64,
) []string {
	reasons := make([]string, 0, 8)
	if in.LastIrrigation != nil {
		reasons = append(reasons, "Last irrigation: "+in.LastIrrigation.Format(time.DateOnly))
	} else {
		reasons = append(reasons, "Last irrigation: not provided")
	}
	reasons = append(reasons,
		fmt.Sprintf("Today's ET0: %.1f mm | ETc (Kc=%.2f): %.1f mm", today.ET0Mm, kc, today.ETcMm),
		fmt.Sprintf("Effective rain today: %.1f mm of %.1f mm", today.EffectiveRainMm, today.PrecipMm),
		fmt.Sprintf("Accumulated depletion: %.1f mm over %d observed day(s) | RAW threshold: %.1f mm",
			dep.Mm, dep.ObservedDays, raw),
	)
	if o.Available {
		reasons = append(reasons, fmt.Sprintf(
			"Projected depletion (depletion + today %.1f mm + next %d day(s) %.1f mm): %.1f mm",
			o.TodayDeficitMm, policy.LookaheadDays, o.LookaheadMm, o.Projected(dep.Mm)))
	} else {
		reasons = append(reasons, fmt.Sprintf(
			"Projection skipped: fewer than %d days of forecast", 1+policy.LookaheadDays))
	}

	proximity := policy.ProximityFraction * raw
	switch {
	case decision == DecisionRequired:
		reasons = append(reasons, fmt.Sprintf("Depletion %.1f mm >= RAW %.1f mm: irrigation required today", dep.Mm, raw))
	case o.Available && o.Projected(dep.Mm) >= raw:
		reasons = append(reasons, fmt.Sprintf("Projected depletion %.1f mm >= RAW %.1f mm within %d day(s): irrigation optional",
			o.Projected(dep.Mm), raw, policy.LookaheadDays))
	case decision == DecisionOptional:
		reasons = append(reasons, fmt.Sprintf("Depletion %.1f mm >= %.0f%% of RAW (%.1f mm): irrigation optional",
			dep.Mm, policy.ProximityFraction*100, proximity))
	default:
		reasons = append(reasons, fmt.Sprintf("Depletion %.1f mm below %.0f%% of RAW (%.1f mm): irrigation not required",
			dep.Mm, policy.ProximityFraction*100, proximity))
	}

	reasons = append(reasons, fmt.Sprintf("Interval: RAW %.1f mm / average deficit %.2f mm/day = %.1f days", raw, avg, interval))
	return reasons
}

func assumptionTrace(in Inputs, kc, taw, raw float64, dep Depletion, policy Policy) []string {
	assumptions := []string{
		fmt.Sprintf("Crop: %s | stage %s Kc=%.2f | p=%.2f", in.Crop.Label, in.Stage, kc, in.Crop.DepletionFraction),
		fmt.Sprintf("Soil %s AWC %.0f mm/m | root depth %.2f m -> TAW %.0f mm, RAW %.0f mm",
			in.Soil.Label, in.Soil.AvailableWaterCapacity, in.RootDepthMeters, taw, raw),
		fmt.Sprintf("Irrigation method: %s (efficiency %.0f%%)", in.Method.Label, in.Method.ApplicationEfficiency*100),
		fmt.Sprintf("Effective rain: %.0f%% of rainfall above %.1f mm", policy.Rainfall.ExcessFraction*100, policy.Rainfall.ThresholdMm),
		fmt.Sprintf("Average deficit taken over the first %d day(s), floored at %.1f mm/day",
			policy.AveragingWindowDays, policy.MinAverageDeficitMm),
	}
	switch {
	case dep.Basis == BasisTodayOnly:
		assumptions = append(assumptions, "No last irrigation date: no deficit assumed before today")
	case dep.LowerBound():
		assumptions = append(assumptions, fmt.Sprintf(
			"Depletion covers only forecast days; %d earlier day(s) since irrigation are not observed, so it is a lower bound",
			dep.UnobservedDays))
	}
	return append(assumptions, "Coefficients are typical values; calibrate against field observation")
}

func warnings(in Inputs, dep Depletion, o Outlook, horizon int, policy Policy) []Warning {
	var ws []Warning
	if in.LastIrrigation == nil {
		ws = append(ws, Warning{
			Code:    WarningNoIrrigationHistory,
			Message: "No last irrigation date: depletion starts from today's deficit only",
		})
	}
	if dep.LowerBound() {
		ws = append(ws, Warning{
			Code: WarningDepletionLowerBound,
			Message: fmt.Sprintf("%d day(s) since the last irrigation are outside the forecast; depletion is a lower bound",
				dep.UnobservedDays),
		})
	}
	if !o.Available {
		ws = append(ws, Warning{
			Code: WarningInsufficientHorizon,
			Message: fmt.Sprintf("Forecast has %d day(s), %d needed for the %d-day look-ahead",
				horizon, 1+policy.LookaheadDays, policy.LookaheadDays),
		})
	}
	return ws
}

// AdvisoryEvent is an advisory with the request context it was issued for.
type AdvisoryEvent struct {
	ID              string     `json:"id"`
	IssuedAt        time.Time  `json:"issued_at"`
	Location        Location   `json:"location"`
	CropID          string     `json:"crop"`
	Stage           Stage      `json:"stage"`
	SoilID          string     `json:"soil"`
	MethodID        string     `json:"method"`
	RootDepthMeters float64    `json:"root_depth_m"`
	LastIrrigation  *time.Time `json:"last_irrigation,omitempty"`
	HorizonDays     int        `json:"horizon_days"`
	Advisory        Advisory   `json:"advisory"`
}
