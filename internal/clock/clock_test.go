package clock

import "testing"

func TestTickCountsDown(t *testing.T) {
	c := New(3)
	c.Start()
	for i := 2; i >= 1; i-- {
		_, expired := c.Tick()
		if expired {
			t.Fatalf("unexpected expiry at %d seconds remaining", c.SecondsRemaining)
		}
		if c.SecondsRemaining != i {
			t.Errorf("SecondsRemaining = %d, want %d", c.SecondsRemaining, i)
		}
	}
	_, expired := c.Tick()
	if !expired {
		t.Error("expected expiry when reaching zero")
	}
	if c.Active {
		t.Error("clock should deactivate on expiry")
	}
}

func TestTickInactiveIsNoop(t *testing.T) {
	c := New(10)
	low, expired := c.Tick()
	if low || expired || c.SecondsRemaining != 10 {
		t.Errorf("inactive tick mutated state: low=%v expired=%v remaining=%d", low, expired, c.SecondsRemaining)
	}
}

func TestTickLowTimeWindow(t *testing.T) {
	c := New(12)
	c.Start()
	low, _ := c.Tick() // 11 remaining
	if low {
		t.Error("no low-time cue expected above the threshold")
	}
	low, _ = c.Tick() // 10 remaining
	if !low {
		t.Error("expected low-time cue at 10 seconds remaining")
	}
	for i := 0; i < 9; i++ {
		low, expired := c.Tick()
		if expired {
			if low {
				t.Error("expiry tick should not also cue low time")
			}
			return
		}
		if !low {
			t.Errorf("expected low-time cue at %d seconds remaining", c.SecondsRemaining)
		}
	}
	t.Error("clock never expired")
}

func TestResetRestoresConfiguredDuration(t *testing.T) {
	c := New(60)
	c.Start()
	c.Tick()
	c.Tick()
	c.Reset()
	if c.SecondsRemaining != 60 || !c.Active {
		t.Errorf("after Reset: remaining=%d active=%v, want 60/true", c.SecondsRemaining, c.Active)
	}
}

func TestSetDurationOverridesMidCountdown(t *testing.T) {
	c := New(60)
	c.Start()
	c.Tick()
	c.SetDuration(90)
	if c.SecondsRemaining != 90 || c.ConfiguredDuration != 90 {
		t.Errorf("after SetDuration: remaining=%d configured=%d, want 90/90", c.SecondsRemaining, c.ConfiguredDuration)
	}
	if !c.Active {
		t.Error("SetDuration should not pause a running clock")
	}
}

func TestExtendGrowsBothFields(t *testing.T) {
	c := New(60)
	c.Start()
	c.Tick()
	c.Extend(30)
	if c.SecondsRemaining != 89 {
		t.Errorf("SecondsRemaining = %d, want 89", c.SecondsRemaining)
	}
	if c.ConfiguredDuration != 90 {
		t.Errorf("ConfiguredDuration = %d, want 90", c.ConfiguredDuration)
	}
	c.Reset()
	if c.SecondsRemaining != 90 {
		t.Errorf("Reset after Extend should use the extended duration, got %d", c.SecondsRemaining)
	}
}

func TestPauseKeepsRemaining(t *testing.T) {
	c := New(60)
	c.Start()
	c.Tick()
	c.Pause()
	if c.Active {
		t.Error("expected inactive after Pause")
	}
	if c.SecondsRemaining != 59 {
		t.Errorf("Pause must not reset remaining time, got %d", c.SecondsRemaining)
	}
}
