package solver

import "testing"

func TestParamsSetGetRoundTrip(t *testing.T) {
	var p Params

	if err := p.SetParam("/decision/var_decay_init", 0.7); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	got, err := p.GetParam("/decision/var_decay_init")
	if err != nil {
		t.Fatalf("GetParam: %v", err)
	}
	if got != 0.7 {
		t.Errorf("GetParam(var_decay_init) = %v, want 0.7", got)
	}

	if err := p.SetParam("/conflicts/all_uip", 1); err != nil {
		t.Fatalf("SetParam(all_uip): %v", err)
	}
	if !p.AllUIP {
		t.Errorf("AllUIP = false, want true after SetParam(1)")
	}
	if err := p.SetParam("/conflicts/all_uip", 0); err != nil {
		t.Fatalf("SetParam(all_uip, 0): %v", err)
	}
	if p.AllUIP {
		t.Errorf("AllUIP = true, want false after SetParam(0)")
	}
}

func TestParamsSetUnknownName(t *testing.T) {
	var p Params
	if err := p.SetParam("/no/such/param", 1); err == nil {
		t.Fatalf("SetParam with unknown name should have errored")
	}
	if _, err := p.GetParam("/no/such/param"); err == nil {
		t.Fatalf("GetParam with unknown name should have errored")
	}
}

func TestParamsSetOutOfRange(t *testing.T) {
	var p Params
	if err := p.SetParam("/decision/var_decay_init", 1.5); err == nil {
		t.Fatalf("SetParam with out-of-range value should have errored")
	}
	if err := p.SetParam("/decision/var_decay_init", -0.1); err == nil {
		t.Fatalf("SetParam with negative out-of-range value should have errored")
	}
}

func TestDefaultParamsForModeOverrides(t *testing.T) {
	base := DefaultParamsForMode(ModeDefault)
	if base.RestartStrategy != RestartLBDAverage {
		t.Errorf("ModeDefault RestartStrategy = %v, want RestartLBDAverage", base.RestartStrategy)
	}

	unsat := DefaultParamsForMode(ModeUNSAT)
	if !unsat.AllUIP {
		t.Errorf("ModeUNSAT should enable AllUIP")
	}

	noChrono := DefaultParamsForMode(ModeNoChrono)
	if noChrono.ChronoEnabled {
		t.Errorf("ModeNoChrono should disable ChronoEnabled")
	}
}
