package pipeline

import (
	"testing"

	"edgarkg/pkg/config"
)

func TestDeps_WorkerCount_FlagOverridesDefault(t *testing.T) {
	d := &Deps{Tuning: config.DefaultTuning()}
	if got := d.WorkerCount(4); got != 4 {
		t.Errorf("WorkerCount(4) = %d, want 4", got)
	}
}

func TestDeps_WorkerCount_DefaultWithoutCommercialProvider(t *testing.T) {
	d := &Deps{Tuning: config.DefaultTuning()}
	if got := d.WorkerCount(0); got != config.DefaultTuning().Workers.Default {
		t.Errorf("WorkerCount(0) = %d, want %d", got, config.DefaultTuning().Workers.Default)
	}
}

func TestDeps_WorkerCount_MaxWithCommercialProvider(t *testing.T) {
	d := &Deps{Tuning: config.DefaultTuning(), Secrets: config.Secrets{CommercialProviderAPIKey: "key"}}
	if got := d.WorkerCount(0); got != config.DefaultTuning().Workers.Max {
		t.Errorf("WorkerCount(0) with commercial provider = %d, want %d", got, config.DefaultTuning().Workers.Max)
	}
}
