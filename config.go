package trainlog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the athlete- and formula-level constants consumed by the
// derivation and signal engines. Zero values are replaced by the documented
// defaults via Normalize, so a partially-filled config file is valid.
type Config struct {
	// FTPWatts is the fallback functional threshold power when a session
	// does not record its own FTP.
	FTPWatts float64 `yaml:"ftp_watts"`

	// DefaultWeightKG is the reference body mass when no weight was logged.
	DefaultWeightKG float64 `yaml:"default_weight_kg"`

	// RunMET is the metabolic equivalent used for running calorie burn when
	// a session supplies none.
	RunMET float64 `yaml:"run_met"`

	// RunTSSDivisor scales the running TSS formula (duration_min * RPE^2) / d.
	// 30 is canonical; a historical pipeline variant used 10.
	RunTSSDivisor float64 `yaml:"run_tss_divisor"`

	// ATLSpan and CTLSpan are the EWMA spans, in days, for acute and
	// chronic training load.
	ATLSpan int `yaml:"atl_span"`
	CTLSpan int `yaml:"ctl_span"`

	// RollingWindowDays sizes the trailing simple-mean windows.
	RollingWindowDays int `yaml:"rolling_window_days"`

	// PhaseRecoveryRates maps a training-phase tag to the recovery rate used
	// by the relative-TSB accumulator.
	PhaseRecoveryRates map[string]float64 `yaml:"phase_recovery_rates"`

	// MaxHRBPM is the assumed maximal heart rate when estimating run RPE
	// from track heart-rate data.
	MaxHRBPM float64 `yaml:"max_hr_bpm"`
}

// Conversion constants shared by the derivation formulas.
const (
	LbsToKG             = 0.453592
	HoursToKJPerWatt    = 3.6  // 3600 s/hr over 1000 J/kJ
	CyclingKJToCalories = 0.95 // mechanical-to-metabolic efficiency
	CaloriesToKJ        = 4.184
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		FTPWatts:          0, // no fallback FTP unless configured
		DefaultWeightKG:   70,
		RunMET:            10,
		RunTSSDivisor:     30,
		ATLSpan:           7,
		CTLSpan:           42,
		RollingWindowDays: 7,
		PhaseRecoveryRates: map[string]float64{
			"Build":   1.5,
			"Peak":    1.5,
			"Sustain": 2.0,
			"Deload":  3.0,
		},
		MaxHRBPM: 200,
	}
}

// LoadConfig reads a YAML config file and fills unset fields with defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces unset fields with the documented defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.DefaultWeightKG <= 0 {
		c.DefaultWeightKG = def.DefaultWeightKG
	}
	if c.RunMET <= 0 {
		c.RunMET = def.RunMET
	}
	if c.RunTSSDivisor <= 0 {
		c.RunTSSDivisor = def.RunTSSDivisor
	}
	if c.ATLSpan <= 0 {
		c.ATLSpan = def.ATLSpan
	}
	if c.CTLSpan <= 0 {
		c.CTLSpan = def.CTLSpan
	}
	if c.RollingWindowDays <= 0 {
		c.RollingWindowDays = def.RollingWindowDays
	}
	if len(c.PhaseRecoveryRates) == 0 {
		c.PhaseRecoveryRates = def.PhaseRecoveryRates
	}
	if c.MaxHRBPM <= 0 {
		c.MaxHRBPM = def.MaxHRBPM
	}
}

// RecoveryRate looks up the relative-TSB recovery rate for a phase tag.
// Unknown or empty phases have no rate.
func (c Config) RecoveryRate(phase string) (float64, bool) {
	rate, ok := c.PhaseRecoveryRates[phase]
	return rate, ok
}
