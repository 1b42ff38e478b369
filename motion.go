package toio

import (
	"time"

	"github.com/toiolab/toio/internal/protocol"
)

// MaxSpeed is the hardware limit for a single wheel motor.
const MaxSpeed = 115

// durationUnit is the resolution of timed motor commands on the wire.
// The duration field is a single byte, so 2550ms is the longest timed run.
const (
	durationUnit = 10 * time.Millisecond
	maxRunTime   = 255 * durationUnit
)

// WheelPlan is the outcome of planning a steering intent: the signed speed
// for each wheel, and whether any value had to be clamped to the hardware
// range. Clamping is reported, never silent.
type WheelPlan struct {
	Left    int
	Right   int
	Clamped bool
}

// Stop reports whether the plan halts the cube.
func (p WheelPlan) Stop() bool { return p.Left == 0 && p.Right == 0 }

// Plan converts an (x, y, speed) steering intent into wheel speeds. x and y
// are the left and right steering biases; equal biases drive straight,
// unequal biases arc, opposite signs spin in place. Each wheel's magnitude is
// the requested speed scaled by its bias relative to the larger bias, so the
// same intent at a higher speed traces the same curve faster. Both wheels are
// clamped independently to ±MaxSpeed; clamping
// preserves sign.
func Plan(x, y, speed int) WheelPlan {
	norm := abs(x)
	if a := abs(y); a > norm {
		norm = a
	}
	if norm == 0 || speed == 0 {
		return WheelPlan{}
	}

	left, lc := clampSpeed(x * speed / norm)
	right, rc := clampSpeed(y * speed / norm)
	return WheelPlan{Left: left, Right: right, Clamped: lc || rc}
}

// PlanWheels clamps directly requested wheel speeds.
func PlanWheels(left, right int) WheelPlan {
	l, lc := clampSpeed(left)
	r, rc := clampSpeed(right)
	return WheelPlan{Left: l, Right: r, Clamped: lc || rc}
}

// clampSpeed bounds a wheel speed to the signed hardware range without
// flipping its sign.
func clampSpeed(v int) (int, bool) {
	switch {
	case v > MaxSpeed:
		return MaxSpeed, true
	case v < -MaxSpeed:
		return -MaxSpeed, true
	default:
		return v, false
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// wireDuration maps a run time to the wire's 10ms units, reporting whether
// the value was clamped to the one-byte maximum. Sub-unit durations round up
// so a short positive duration never silently becomes "run forever".
func wireDuration(d time.Duration) (uint8, bool) {
	if d <= 0 {
		return 0, false
	}
	units := (d + durationUnit - 1) / durationUnit
	if units > 255 {
		return 255, true
	}
	return uint8(units), false
}

// motorParams converts a signed wheel speed to the wire's direction and
// magnitude fields. The caller clamps; values here are already in range.
func motorParams(v int) (protocol.MotorDir, uint8) {
	if v < 0 {
		return protocol.MotorBackward, uint8(-v)
	}
	return protocol.MotorForward, uint8(v)
}

// simpleCommand builds the indefinite-run motor frame for a plan.
func (p WheelPlan) simpleCommand() protocol.MotorSimple {
	ld, ls := motorParams(p.Left)
	rd, rs := motorParams(p.Right)
	return protocol.MotorSimple{
		Motor1: protocol.MotorLeft, Dir1: ld, Speed1: ls,
		Motor2: protocol.MotorRight, Dir2: rd, Speed2: rs,
	}
}

// timedCommand builds the timed-run motor frame for a plan. On the wire a
// zero duration field means "no time limit", so callers wanting an explicit
// stop send a zero-speed plan instead (see Cube.GoFor).
func (p WheelPlan) timedCommand(d time.Duration) (protocol.MotorTimed, bool) {
	ld, ls := motorParams(p.Left)
	rd, rs := motorParams(p.Right)
	units, clamped := wireDuration(d)
	return protocol.MotorTimed{
		Motor1: protocol.MotorLeft, Dir1: ld, Speed1: ls,
		Motor2: protocol.MotorRight, Dir2: rd, Speed2: rs,
		Duration: units,
	}, clamped
}
