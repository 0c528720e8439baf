package synth

import "testing"

// TestParamTableDefaultsMatchNewDefaultParams checks that every descriptor's
// declared default round-trips through GetParam against a freshly
// constructed engine (§6 "Parameter interface").
func TestParamTableDefaultsMatchNewDefaultParams(t *testing.T) {
	e := newTestEngine(t)
	for _, d := range ParamTable() {
		got, err := e.GetParam(d.Name)
		if err != nil {
			t.Fatalf("GetParam(%q): %v", d.Name, err)
		}
		if diff := got - d.Default; diff > 0.5 || diff < -0.5 {
			t.Fatalf("GetParam(%q) = %v, want default %v", d.Name, got, d.Default)
		}
	}
}

// TestSetParamThenGetParamRoundTrips exercises a representative value for
// each unit-converted parameter.
func TestSetParamThenGetParamRoundTrips(t *testing.T) {
	cases := []struct {
		name  string
		value float32
	}{
		{"osc1_amp", 37},
		{"osc1_super_detune", 42},
		{"osc1_phase", 25},
		{"osc1_phase_rand", 75},
		{"fil1_cutoff", 1200},
		{"global_output_gain", -12},
		{"global_bend_range", 7},
	}
	e := newTestEngine(t)
	for _, c := range cases {
		if err := e.SetParam(c.name, c.value); err != nil {
			t.Fatalf("SetParam(%q, %v): %v", c.name, c.value, err)
		}
		got, err := e.GetParam(c.name)
		if err != nil {
			t.Fatalf("GetParam(%q): %v", c.name, err)
		}
		if diff := got - c.value; diff > 0.1 || diff < -0.1 {
			t.Fatalf("%s round-trip: set %v, got %v", c.name, c.value, got)
		}
	}
}

// TestSetParamRejectsOsc3ModulationParams checks §3's note that osc3 carries
// pwm instead of pm/fm/am.
func TestSetParamRejectsOsc3ModulationParams(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"osc3_pm", "osc3_fm", "osc3_am"} {
		if err := e.SetParam(name, 0.5); err == nil {
			t.Fatalf("SetParam(%q) should have failed, osc3 has no such parameter", name)
		}
	}
	if err := e.SetParam("osc3_pwm", 60); err != nil {
		t.Fatalf("SetParam(osc3_pwm) should succeed: %v", err)
	}
	if err := e.SetParam("osc1_pwm", 60); err == nil {
		t.Fatalf("SetParam(osc1_pwm) should have failed, only osc3 has pwm")
	}
}

// TestSetParamUnknownNameErrors checks §6: an unrecognized name returns an
// error rather than silently doing nothing.
func TestSetParamUnknownNameErrors(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetParam("does_not_exist", 1); err == nil {
		t.Fatalf("expected an error for an unknown parameter name")
	}
	if _, err := e.GetParam("does_not_exist"); err == nil {
		t.Fatalf("expected an error for an unknown parameter name")
	}
}
