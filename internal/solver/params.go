package solver

import "fmt"

// Params is the flat configuration struct backing the dotted-name
// parameter surface of spec §6. Each field corresponds to one
// `/group/name` parameter; SetParam maps names to fields through the
// paramRegistry below so hosts can configure the solver either
// programmatically (construct Params directly) or textually (one
// `name value` pair per line, as cmd/toporcli's config-file loader does).
type Params struct {
	// /decision/*
	VarDecayInit     float64
	VarDecayMax      float64
	VarDecayUpdateConfRate int64
	PhaseSaving      bool
	EveryNthFlip     int64
	MapleBump        bool

	// /restarts/*
	RestartStrategy  RestartStrategy
	RestartLocal     bool
	RestartArithInit int64
	RestartArithInc  int64
	RestartLubyBase  int64
	LBDWindowDecay   float64
	LBDGlobalDecay   float64
	LBDWindowMul     float64
	LBDTrailBlockMul float64

	// /bcp/*
	Compressed bool

	// /conflicts/*
	ClauseDecay         float64
	MinimizeRecursive   bool
	MinimizeBinary      bool
	AllUIP              bool
	AllUIPInitialGap    int
	FlippedClause       bool
	FlippedMaxGlue      uint32
	OnTheFlySubsumption bool

	// /backtrack/*
	ChronoEnabled      bool
	ChronoIfHigher     int
	ChronoMinConflicts int64
	CustomBacktrack    bool

	// /deletion/*
	GlueNeverDelete   uint32
	DeletionFraction  float64
	DeletionTriggerInit int64
	DeletionTriggerInc  int64
	DeletionMultiplicative bool

	// /compaction/*
	CompactionThreshold float64

	// /conflict-pick/*
	ConflictPickRule ConflictPickRule
}

// ConflictPickRule selects which stashed contradiction BCP should hand to
// conflict analysis when several were observed at the same level (spec
// §4.4 "Stashing").
type ConflictPickRule int8

const (
	PickSmallest ConflictPickRule = iota
	PickSmallestLBD
	PickFirst
	PickLast
)

// Mode selects one of the nine preconfigured profiles spec §6 describes.
// The concrete names reuse the registry's own convention
// (group/scenario) rather than inventing arbitrary numbers.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSAT
	ModeUNSAT
	ModeIncrementalShort
	ModeIncrementalNormal
	ModeLowMemory
	ModeDeterministic
	ModeAggressiveRestarts
	ModeNoChrono
)

// DefaultParamsForMode returns the preconfigured Params for mode.
func DefaultParamsForMode(mode Mode) Params {
	p := Params{
		VarDecayInit:           0.8,
		VarDecayMax:            0.95,
		VarDecayUpdateConfRate: 5000,
		PhaseSaving:            true,
		RestartStrategy:        RestartLBDAverage,
		RestartArithInit:       100,
		RestartArithInc:        10,
		RestartLubyBase:        100,
		LBDWindowDecay:         0.8,
		LBDGlobalDecay:         0.999,
		LBDWindowMul:           1.25,
		LBDTrailBlockMul:       1.4,
		ClauseDecay:            0.999,
		MinimizeRecursive:      true,
		MinimizeBinary:         true,
		OnTheFlySubsumption:    true,
		ChronoEnabled:          true,
		ChronoIfHigher:         100,
		ChronoMinConflicts:     0,
		GlueNeverDelete:        2,
		DeletionFraction:       0.5,
		DeletionTriggerInit:    20000,
		DeletionTriggerInc:     5000,
		CompactionThreshold:    0.3,
		FlippedMaxGlue:         8,
		ConflictPickRule:       PickSmallestLBD,
	}

	switch mode {
	case ModeSAT:
		p.RestartStrategy = RestartLuby
		p.PhaseSaving = true
	case ModeUNSAT:
		p.RestartStrategy = RestartLBDAverage
		p.MinimizeRecursive = true
		p.AllUIP = true
	case ModeIncrementalShort:
		p.RestartStrategy = RestartArithmetic
		p.RestartArithInit = 50
		p.ChronoMinConflicts = 0
	case ModeIncrementalNormal:
		p.RestartStrategy = RestartLBDAverage
	case ModeLowMemory:
		p.Compressed = true
		p.DeletionTriggerInit = 5000
		p.DeletionFraction = 0.7
	case ModeDeterministic:
		p.RestartStrategy = RestartLuby
		p.EveryNthFlip = 0
		p.MapleBump = false
	case ModeAggressiveRestarts:
		p.RestartStrategy = RestartArithmetic
		p.RestartArithInit = 25
		p.RestartArithInc = 2
	case ModeNoChrono:
		p.ChronoEnabled = false
		p.CustomBacktrack = false
	}
	return p
}

// paramSpec describes one dotted-name parameter: how to read/write it on
// a *Params and the legal range its value must fall in.
type paramSpec struct {
	get func(*Params) float64
	set func(*Params, float64) error
	min, max float64
}

func boolSpec(get func(*Params) bool, set func(*Params, bool)) paramSpec {
	return paramSpec{
		get: func(p *Params) float64 {
			if get(p) {
				return 1
			}
			return 0
		},
		set: func(p *Params, v float64) error {
			set(p, v != 0)
			return nil
		},
		min: 0, max: 1,
	}
}

func floatSpec(min, max float64, get func(*Params) float64, set func(*Params, float64)) paramSpec {
	return paramSpec{get: get, set: func(p *Params, v float64) error { set(p, v); return nil }, min: min, max: max}
}

func intSpec(min, max float64, get func(*Params) int64, set func(*Params, int64)) paramSpec {
	return paramSpec{
		get: func(p *Params) float64 { return float64(get(p)) },
		set: func(p *Params, v float64) error { set(p, int64(v)); return nil },
		min: min, max: max,
	}
}

var paramRegistry = map[string]paramSpec{
	"/decision/var_decay_init": floatSpec(0, 1, func(p *Params) float64 { return p.VarDecayInit }, func(p *Params, v float64) { p.VarDecayInit = v }),
	"/decision/var_decay_max":  floatSpec(0, 1, func(p *Params) float64 { return p.VarDecayMax }, func(p *Params, v float64) { p.VarDecayMax = v }),
	"/decision/var_decay_update_conf_rate": intSpec(1, 1e9, func(p *Params) int64 { return p.VarDecayUpdateConfRate }, func(p *Params, v int64) { p.VarDecayUpdateConfRate = v }),
	"/decision/phase_saving":   boolSpec(func(p *Params) bool { return p.PhaseSaving }, func(p *Params, v bool) { p.PhaseSaving = v }),
	"/decision/every_nth_flip": intSpec(0, 1e9, func(p *Params) int64 { return p.EveryNthFlip }, func(p *Params, v int64) { p.EveryNthFlip = v }),
	"/decision/maple_bump":     boolSpec(func(p *Params) bool { return p.MapleBump }, func(p *Params, v bool) { p.MapleBump = v }),

	"/restarts/local":            boolSpec(func(p *Params) bool { return p.RestartLocal }, func(p *Params, v bool) { p.RestartLocal = v }),
	"/restarts/arith_init":       intSpec(1, 1e9, func(p *Params) int64 { return p.RestartArithInit }, func(p *Params, v int64) { p.RestartArithInit = v }),
	"/restarts/arith_inc":        intSpec(0, 1e9, func(p *Params) int64 { return p.RestartArithInc }, func(p *Params, v int64) { p.RestartArithInc = v }),
	"/restarts/luby_base":        intSpec(1, 1e9, func(p *Params) int64 { return p.RestartLubyBase }, func(p *Params, v int64) { p.RestartLubyBase = v }),
	"/restarts/lbd_window_decay": floatSpec(0, 1, func(p *Params) float64 { return p.LBDWindowDecay }, func(p *Params, v float64) { p.LBDWindowDecay = v }),
	"/restarts/lbd_global_decay": floatSpec(0, 1, func(p *Params) float64 { return p.LBDGlobalDecay }, func(p *Params, v float64) { p.LBDGlobalDecay = v }),
	"/restarts/lbd_window_mul":   floatSpec(0, 100, func(p *Params) float64 { return p.LBDWindowMul }, func(p *Params, v float64) { p.LBDWindowMul = v }),
	"/restarts/lbd_trail_block_mul": floatSpec(0, 100, func(p *Params) float64 { return p.LBDTrailBlockMul }, func(p *Params, v float64) { p.LBDTrailBlockMul = v }),

	"/bcp/compressed": boolSpec(func(p *Params) bool { return p.Compressed }, func(p *Params, v bool) { p.Compressed = v }),

	"/conflicts/clause_decay":          floatSpec(0, 1, func(p *Params) float64 { return p.ClauseDecay }, func(p *Params, v float64) { p.ClauseDecay = v }),
	"/conflicts/minimize_recursive":    boolSpec(func(p *Params) bool { return p.MinimizeRecursive }, func(p *Params, v bool) { p.MinimizeRecursive = v }),
	"/conflicts/minimize_binary":       boolSpec(func(p *Params) bool { return p.MinimizeBinary }, func(p *Params, v bool) { p.MinimizeBinary = v }),
	"/conflicts/all_uip":               boolSpec(func(p *Params) bool { return p.AllUIP }, func(p *Params, v bool) { p.AllUIP = v }),
	"/conflicts/all_uip_initial_gap":   intSpec(0, 1e6, func(p *Params) int64 { return int64(p.AllUIPInitialGap) }, func(p *Params, v int64) { p.AllUIPInitialGap = int(v) }),
	"/conflicts/flipped_clause":        boolSpec(func(p *Params) bool { return p.FlippedClause }, func(p *Params, v bool) { p.FlippedClause = v }),
	"/conflicts/flipped_max_glue":      intSpec(0, 1e6, func(p *Params) int64 { return int64(p.FlippedMaxGlue) }, func(p *Params, v int64) { p.FlippedMaxGlue = uint32(v) }),
	"/conflicts/on_the_fly_subsumption": boolSpec(func(p *Params) bool { return p.OnTheFlySubsumption }, func(p *Params, v bool) { p.OnTheFlySubsumption = v }),

	"/backtrack/chrono_enabled":      boolSpec(func(p *Params) bool { return p.ChronoEnabled }, func(p *Params, v bool) { p.ChronoEnabled = v }),
	"/backtrack/chrono_if_higher":    intSpec(0, 1e6, func(p *Params) int64 { return int64(p.ChronoIfHigher) }, func(p *Params, v int64) { p.ChronoIfHigher = int(v) }),
	"/backtrack/chrono_min_conflicts": intSpec(0, 1e9, func(p *Params) int64 { return p.ChronoMinConflicts }, func(p *Params, v int64) { p.ChronoMinConflicts = v }),
	"/backtrack/custom":              boolSpec(func(p *Params) bool { return p.CustomBacktrack }, func(p *Params, v bool) { p.CustomBacktrack = v }),

	"/deletion/glue_never_delete":     intSpec(0, 1e6, func(p *Params) int64 { return int64(p.GlueNeverDelete) }, func(p *Params, v int64) { p.GlueNeverDelete = uint32(v) }),
	"/deletion/fraction":              floatSpec(0, 1, func(p *Params) float64 { return p.DeletionFraction }, func(p *Params, v float64) { p.DeletionFraction = v }),
	"/deletion/trigger_init":          intSpec(1, 1e9, func(p *Params) int64 { return p.DeletionTriggerInit }, func(p *Params, v int64) { p.DeletionTriggerInit = v }),
	"/deletion/trigger_inc":           intSpec(0, 1e9, func(p *Params) int64 { return p.DeletionTriggerInc }, func(p *Params, v int64) { p.DeletionTriggerInc = v }),
	"/deletion/multiplicative":        boolSpec(func(p *Params) bool { return p.DeletionMultiplicative }, func(p *Params, v bool) { p.DeletionMultiplicative = v }),

	"/compaction/threshold": floatSpec(0, 100, func(p *Params) float64 { return p.CompactionThreshold }, func(p *Params, v float64) { p.CompactionThreshold = v }),
}

// SetParam looks up name in the registry, range-checks value, and applies
// it. An unknown name or out-of-range value returns an error (spec §6/§7:
// "Range violations set a permanent error state" — the caller, Solver.SetParam,
// is what latches StatusParamError; this function just reports the problem).
func (p *Params) SetParam(name string, value float64) error {
	spec, ok := paramRegistry[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if value < spec.min || value > spec.max {
		return fmt.Errorf("parameter %q value %v out of range [%v, %v]", name, value, spec.min, spec.max)
	}
	return spec.set(p, value)
}

// GetParam returns the current value of a registered parameter.
func (p *Params) GetParam(name string) (float64, error) {
	spec, ok := paramRegistry[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q", name)
	}
	return spec.get(p), nil
}
