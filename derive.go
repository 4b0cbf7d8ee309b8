package trainlog

// Derive recomputes every derived field of r from its raw inputs. It is a
// pure function of (record, config): calling it repeatedly on the same
// inputs yields the same outputs, so full-pipeline recomputation is
// idempotent and non-accumulating.
//
// Track-measured IF/TSS/work values, when present, win over the formula
// estimates; the estimate fills in only where the measurement is absent.
func Derive(r SessionRecord, cfg Config) SessionRecord {
	r.IntensityFactor = Undefined()
	r.TSS = Undefined()
	r.WorkKJ = Undefined()
	r.CaloriesBurned = Undefined()
	r.WattsPerKG = Undefined()

	switch r.Sport {
	case SportCycling:
		deriveCycling(&r, cfg)
	case SportRunning:
		deriveRunning(&r, cfg)
	}

	if Defined(r.TrackIF) {
		r.IntensityFactor = r.TrackIF
	}
	if Defined(r.TrackTSS) {
		r.TSS = r.TrackTSS
	}
	if Defined(r.TrackWorkKJ) {
		r.WorkKJ = r.TrackWorkKJ
	}
	return r
}

func deriveCycling(r *SessionRecord, cfg Config) {
	ftp := FirstDefined(r.FTPUsed, positiveOrUndefined(cfg.FTPWatts))
	if Defined(r.AvgPowerW) && Defined(ftp) && ftp != 0 {
		r.IntensityFactor = r.AvgPowerW / ftp
	}
	if Defined(r.DurationHr) && Defined(r.IntensityFactor) {
		r.TSS = r.DurationHr * r.IntensityFactor * r.IntensityFactor * 100
	}
	if Defined(r.DurationHr) && Defined(r.AvgPowerW) {
		r.WorkKJ = r.DurationHr * r.AvgPowerW * HoursToKJPerWatt
	}
	if Defined(r.WorkKJ) {
		r.CaloriesBurned = r.WorkKJ * CyclingKJToCalories
	}
	if Defined(r.AvgPowerW) {
		if kg := bodyMassKG(*r, cfg); kg > 0 {
			r.WattsPerKG = r.AvgPowerW / kg
		}
	}
}

func deriveRunning(r *SessionRecord, cfg Config) {
	if Defined(r.DurationHr) && Defined(r.RPE) && cfg.RunTSSDivisor != 0 {
		durationMin := r.DurationHr * 60
		r.TSS = (durationMin * r.RPE * r.RPE) / cfg.RunTSSDivisor
	}
	if Defined(r.DurationHr) {
		r.CaloriesBurned = cfg.RunMET * bodyMassKG(*r, cfg) * r.DurationHr
		r.WorkKJ = r.CaloriesBurned * CaloriesToKJ
	}
}

// bodyMassKG converts the logged weight to kilograms, falling back to the
// configured reference mass when no weight was recorded.
func bodyMassKG(r SessionRecord, cfg Config) float64 {
	if Defined(r.WeightLbs) && r.WeightLbs > 0 {
		return r.WeightLbs * LbsToKG
	}
	return cfg.DefaultWeightKG
}

func positiveOrUndefined(v float64) float64 {
	if v > 0 {
		return v
	}
	return Undefined()
}

// DeriveAll maps Derive over a record set.
func DeriveAll(records []SessionRecord, cfg Config) []SessionRecord {
	out := make([]SessionRecord, len(records))
	for i, r := range records {
		out[i] = Derive(r, cfg)
	}
	return out
}
