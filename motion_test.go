package toio

import (
	"testing"
	"time"

	"github.com/toiolab/toio/internal/protocol"
)

func TestPlanEqualBiasDrivesStraight(t *testing.T) {
	p := Plan(20, 20, 60)
	if p.Left != 60 || p.Right != 60 {
		t.Errorf("Plan(20,20,60) = %+v, want equal wheels at 60", p)
	}
	if p.Clamped {
		t.Error("no clamping expected")
	}

	// Same intent backward.
	p = Plan(20, 20, -60)
	if p.Left != -60 || p.Right != -60 {
		t.Errorf("Plan(20,20,-60) = %+v, want equal wheels at -60", p)
	}
}

func TestPlanScalesBySpeedNotRawBias(t *testing.T) {
	// The wheel magnitude must be the requested speed scaled by the bias,
	// not the bias value itself.
	p := Plan(5, 50, 100)
	if p.Right != 100 {
		t.Errorf("dominant wheel = %d, want the requested speed 100", p.Right)
	}
	if p.Left != 10 {
		t.Errorf("biased wheel = %d, want 10 (100 * 5/50)", p.Left)
	}
	if p.Left == p.Right {
		t.Error("unequal biases must yield unequal wheels (a spin)")
	}

	// Doubling the speed traces the same curve faster.
	half := Plan(5, 50, 50)
	if half.Right != 50 || half.Left != 5 {
		t.Errorf("Plan(5,50,50) = %+v, want {5 50}", half)
	}
}

func TestPlanOppositeBiasSpinsInPlace(t *testing.T) {
	p := Plan(-30, 30, 60)
	if p.Left != -60 || p.Right != 60 {
		t.Errorf("Plan(-30,30,60) = %+v, want {-60 60}", p)
	}
}

func TestPlanClampPreservesSign(t *testing.T) {
	p := Plan(100, 100, 200)
	if p.Left != MaxSpeed || p.Right != MaxSpeed {
		t.Errorf("Plan(100,100,200) = %+v, want both clamped to %d", p, MaxSpeed)
	}
	if !p.Clamped {
		t.Error("clamping must be reported")
	}

	p = PlanWheels(-300, 10)
	if p.Left != -MaxSpeed {
		t.Errorf("Left = %d, want %d (sign preserved)", p.Left, -MaxSpeed)
	}
	if p.Right != 10 {
		t.Errorf("Right = %d, want 10 (clamped independently)", p.Right)
	}
	if !p.Clamped {
		t.Error("clamping must be reported")
	}
}

func TestPlanZeroIsStop(t *testing.T) {
	if p := Plan(0, 0, 50); !p.Stop() {
		t.Errorf("Plan(0,0,50) = %+v, want stop", p)
	}
	if p := Plan(10, 10, 0); !p.Stop() {
		t.Errorf("Plan(10,10,0) = %+v, want stop", p)
	}
}

func TestPlanIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if p := Plan(7, 31, 88); p != (WheelPlan{Left: 19, Right: 88}) {
			t.Fatalf("Plan(7,31,88) = %+v on call %d", p, i)
		}
	}
}

func TestWireDuration(t *testing.T) {
	tests := []struct {
		d       time.Duration
		units   uint8
		clamped bool
	}{
		{0, 0, false},
		{5 * time.Millisecond, 1, false}, // rounds up, never "run forever"
		{10 * time.Millisecond, 1, false},
		{time.Second, 100, false},
		{2550 * time.Millisecond, 255, false},
		{3 * time.Second, 255, true},
	}
	for _, tt := range tests {
		units, clamped := wireDuration(tt.d)
		if units != tt.units || clamped != tt.clamped {
			t.Errorf("wireDuration(%v) = (%d, %v), want (%d, %v)", tt.d, units, clamped, tt.units, tt.clamped)
		}
	}
}

func TestPlanToWireCommands(t *testing.T) {
	cmd := WheelPlan{Left: -10, Right: 40}.simpleCommand()
	if cmd.Dir1 != protocol.MotorBackward || cmd.Speed1 != 10 {
		t.Errorf("left motor = dir %d speed %d, want backward 10", cmd.Dir1, cmd.Speed1)
	}
	if cmd.Dir2 != protocol.MotorForward || cmd.Speed2 != 40 {
		t.Errorf("right motor = dir %d speed %d, want forward 40", cmd.Dir2, cmd.Speed2)
	}

	timed, clamped := WheelPlan{Left: 30, Right: 30}.timedCommand(2 * time.Second)
	if timed.Duration != 200 {
		t.Errorf("Duration = %d, want 200 units", timed.Duration)
	}
	if clamped {
		t.Error("2s fits the wire range")
	}
}
