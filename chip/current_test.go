package chip

import "testing"

func within(got, want, tolerance uint16) bool {
	if got > want {
		return got-want <= tolerance
	}
	return want-got <= tolerance
}

func TestVsenseCurrentHighSensitivity(t *testing.T) {
	irun, ihold, vsense := vsenseCurrent(800, 0.11, 0.5)

	if !vsense {
		t.Error("Expected the high sensitivity range for 800mA at 0.11 ohm")
	}
	if irun != 25 {
		t.Errorf("Expected IRUN 25, got %d", irun)
	}
	if ihold != 12 {
		t.Errorf("Expected IHOLD 12, got %d", ihold)
	}
	if got := vsenseRMS(irun, vsense, 0.11); !within(got, 800, 32) {
		t.Errorf("Expected read back near 800mA, got %d", got)
	}
}

func TestVsenseCurrentNormalRange(t *testing.T) {
	irun, _, vsense := vsenseCurrent(1500, 0.11, 0.5)

	if vsense {
		t.Error("Expected the normal range for 1500mA at 0.11 ohm")
	}
	if got := vsenseRMS(irun, vsense, 0.11); !within(got, 1500, 55) {
		t.Errorf("Expected read back near 1500mA, got %d", got)
	}
}

func TestVsenseCurrentClamps(t *testing.T) {
	irun, ihold, _ := vsenseCurrent(5000, 0.11, 1.5)
	if irun != maxCS || ihold != maxCS {
		t.Errorf("Expected IRUN and IHOLD clamped to %d, got %d/%d", maxCS, irun, ihold)
	}

	irun, ihold, _ = vsenseCurrent(0, 0.11, 0.5)
	if irun != 0 || ihold != 0 {
		t.Errorf("Expected zero current to clamp to 0, got %d/%d", irun, ihold)
	}
}

func TestScaledCurrent(t *testing.T) {
	gs, irun, ihold := scaledCurrent(1000, 0.075, 0.5)

	if gs != 84 {
		t.Errorf("Expected GLOBAL_SCALER 84, got %d", gs)
	}
	if irun != 31 {
		t.Errorf("Expected IRUN 31, got %d", irun)
	}
	if ihold != 15 {
		t.Errorf("Expected IHOLD 15, got %d", ihold)
	}
	if got := scaledRMS(gs, irun, 0.075); !within(got, 1000, 32) {
		t.Errorf("Expected read back near 1000mA, got %d", got)
	}
}

func TestScaledCurrentLimits(t *testing.T) {
	gs, _, _ := scaledCurrent(50, 0.075, 0.5)
	if gs != globalScalerMin {
		t.Errorf("Expected GLOBAL_SCALER floor %d, got %d", globalScalerMin, gs)
	}

	// Full scale is written as 0
	gs, irun, _ := scaledCurrent(10000, 0.075, 0.5)
	if gs != 0 {
		t.Errorf("Expected GLOBAL_SCALER 0 at full scale, got %d", gs)
	}
	if irun != maxCS {
		t.Errorf("Expected IRUN %d at full scale, got %d", maxCS, irun)
	}
}

func TestMresFor(t *testing.T) {
	tests := []struct {
		microsteps uint16
		mres       uint8
	}{
		{256, 0},
		{128, 1},
		{16, 4},
		{1, 8},
		{24, 4},  // rounded down to 16
		{512, 0}, // clamped to 256
	}
	for _, tt := range tests {
		if got := mresFor(tt.microsteps); got != tt.mres {
			t.Errorf("mresFor(%d) = %d, want %d", tt.microsteps, got, tt.mres)
		}
	}
}
