package network

import "testing"

func TestAntiCheatMonitor_CheckSequence_AcceptsIncreasing(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	for _, seq := range []uint32{1, 2, 3, 10, 11} {
		accept, kick := m.CheckSequence(100, seq)
		if !accept {
			t.Errorf("expected seq %d to be accepted", seq)
		}
		if kick {
			t.Errorf("did not expect a kick for seq %d", seq)
		}
	}
}

func TestAntiCheatMonitor_CheckSequence_RejectsNonIncreasing(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	m.CheckSequence(100, 10)

	accept, _ := m.CheckSequence(100, 10) // repeat
	if accept {
		t.Error("expected a repeated sequence number to be rejected")
	}

	accept, _ = m.CheckSequence(100, 5) // regression
	if accept {
		t.Error("expected a lower sequence number to be rejected")
	}
}

func TestAntiCheatMonitor_CheckSpeed_AllowsWithinTolerance(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	accept, kick := m.CheckSpeed(100, 109, 100) // 9% over, within the 10% allowance
	if !accept || kick {
		t.Errorf("expected speed within tolerance to be accepted, got accept=%v kick=%v", accept, kick)
	}
}

func TestAntiCheatMonitor_CheckSpeed_RejectsOverTolerance(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	accept, _ := m.CheckSpeed(100, 150, 100)
	if accept {
		t.Error("expected speed far over the class max to be rejected")
	}
}

func TestAntiCheatMonitor_KicksAtThreshold(t *testing.T) {
	m := NewAntiCheatMonitor(3)

	var lastKick bool
	for i := 0; i < 3; i++ {
		_, lastKick = m.CheckSpeed(100, 1000, 100)
	}
	if !lastKick {
		t.Error("expected the threshold-th violation to recommend a kick")
	}
	if got := m.Violations(100); got != 3 {
		t.Errorf("expected 3 recorded violations, got %d", got)
	}
}

func TestAntiCheatMonitor_ViolationsArePerPlayer(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	m.CheckFrame(100)
	m.CheckFrame(100)
	m.CheckFrame(200)

	if got := m.Violations(100); got != 2 {
		t.Errorf("expected player 100 to have 2 violations, got %d", got)
	}
	if got := m.Violations(200); got != 1 {
		t.Errorf("expected player 200 to have 1 violation, got %d", got)
	}
}

func TestAntiCheatMonitor_Forget(t *testing.T) {
	m := NewAntiCheatMonitor(5)

	m.CheckSequence(100, 10)
	m.CheckFrame(100)
	m.Forget(100)

	if got := m.Violations(100); got != 0 {
		t.Errorf("expected violations cleared after Forget, got %d", got)
	}

	// A reconnecting player should be able to reuse sequence numbers from
	// scratch instead of being rejected against the forgotten high-water mark.
	accept, _ := m.CheckSequence(100, 1)
	if !accept {
		t.Error("expected sequence tracking to reset after Forget")
	}
}
