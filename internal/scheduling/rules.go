package scheduling

import "github.com/noah-isme/clinic-scheduler-api/pkg/config"

// Rules are the clinic constants applied by the calculators and validator.
type Rules struct {
	BreakMinutes      int
	MaxDailyHours     float64
	DailyWarningRatio float64
	NearLimitPercent  int
	OverloadPercent   int
	StrictTransitions bool
	Attribution       AttributionMode
}

// DefaultRules mirrors the clinic's standing policy.
func DefaultRules() Rules {
	return Rules{
		BreakMinutes:      15,
		MaxDailyHours:     8,
		DailyWarningRatio: 0.8,
		NearLimitPercent:  80,
		OverloadPercent:   100,
		Attribution:       AttributeTherapistSpecialties,
	}
}

// RulesFromConfig overlays configured values on DefaultRules.
func RulesFromConfig(cfg config.SchedulingConfig) Rules {
	rules := DefaultRules()
	if cfg.BreakMinutes > 0 {
		rules.BreakMinutes = cfg.BreakMinutes
	}
	if cfg.MaxDailyHours > 0 {
		rules.MaxDailyHours = cfg.MaxDailyHours
	}
	if cfg.NearLimitPercent > 0 && cfg.NearLimitPercent < rules.OverloadPercent {
		rules.NearLimitPercent = cfg.NearLimitPercent
	}
	rules.StrictTransitions = cfg.StrictTransitions
	if cfg.CoverageAttribution == config.AttributionActivity {
		rules.Attribution = AttributeActivity
	}
	return rules
}
