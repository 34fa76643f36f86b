// Package domain models the FAO-56 root-zone water balance used to advise
// growers whether to irrigate today.
//
// # Data Source
//
// Daily reference evapotranspiration (ET0) and precipitation come from a
// weather provider (Open-Meteo in production) as one record per calendar day,
// ordered ascending with index 0 being "today". The engine treats the series
// as read-only and never fills in missing days.
//
// # Quantities
//
// All depths are millimetres of water.
//
//	ETc     = max(0, Kc × ET0)               crop water demand for the day
//	Peff    = f(precip)                      effective rain, see [RainfallPolicy]
//	deficit = max(0, ETc − Peff)             rain never banks a negative deficit
//	TAW     = AWC × root depth               total available water in the root zone
//	RAW     = p × TAW                        readily available water (refill threshold)
//
// Kc depends on the crop and its growth stage (initial, mid, late). p is the
// fraction of TAW a crop can deplete before stress begins. AWC is the soil's
// available water capacity per metre of roots.
//
// # Depletion
//
// Accumulated depletion (dep) is the sum of daily deficits over the window
// (last irrigation, today]. Only days present in the series are summed, so a
// last irrigation date older than yesterday produces a lower bound, which the
// advisory discloses. Without a last irrigation date dep is today's deficit.
// A last irrigation on or after today resets dep to zero.
//
// # Decision
//
// First match wins:
//
//	required      dep ≥ RAW
//	optional      dep + today's deficit + next LookaheadDays deficits ≥ RAW,
//	              or dep ≥ ProximityFraction × RAW
//	not required  otherwise
//
// With fewer records than the look-ahead needs, the projection is skipped and
// only the proximity test applies.
//
// # Recommendation
//
//	net      = clamp(dep, 0, TAW)
//	gross    = net / application efficiency
//	interval = max(1, round(RAW / mean deficit over the first AveragingWindowDays))
//
// The mean deficit is floored at MinAverageDeficitMm so wet spells do not
// produce an unbounded interval.
package domain
