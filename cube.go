package toio

import (
	"context"
	"fmt"
	"time"

	"github.com/toiolab/toio/internal/protocol"
)

// Cube represents one discovered toio cube. Cubes are returned by Search,
// Nearest or a Searcher; command methods require Connect first.
//
//	cube, err := toio.Nearest(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cube.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cube.Close()
//
//	cube.Go(30, 30)                       // forward
//	cube.GoFor(50, 5, 2*time.Second)      // arc for 2s
//	cube.Stop()
type Cube struct {
	name    string
	address string
	rssi    int16
	sess    *session
}

// Name returns the advertised cube name.
func (c *Cube) Name() string { return c.name }

// Address returns the platform BLE address of the cube.
func (c *Cube) Address() string { return c.address }

// RSSI returns the signal strength observed during discovery, in dBm.
// Higher values mean a closer cube.
func (c *Cube) RSSI() int16 { return c.rssi }

// State returns the connection state.
func (c *Cube) State() ConnectionState { return c.sess.State() }

// Connect establishes the BLE connection and starts the event dispatch
// loop. Connecting an already connected cube is a no-op.
func (c *Cube) Connect(ctx context.Context) error {
	return c.sess.Connect(ctx)
}

// Close disconnects from the cube. Reconnection is never automatic; call
// Connect again to retry after a drop.
func (c *Cube) Close() error {
	return c.sess.Disconnect()
}

// Events returns a stream of decoded cube events. Each subscriber receives
// only events published after it subscribed; the channel closes on
// disconnect. cancel releases the subscription.
func (c *Cube) Events() (events <-chan Event, cancel func()) {
	return c.sess.Subscribe()
}

// Motion

// Go runs the wheels at the given signed speeds until the next motor
// command. Speeds are clamped to ±MaxSpeed.
func (c *Cube) Go(left, right int) error {
	plan := PlanWheels(left, right)
	return c.sess.send(plan.simpleCommand())
}

// GoFor runs the wheels for the given duration. A zero or negative duration
// stops the cube immediately; durations beyond 2.55s are clamped to the wire
// maximum.
func (c *Cube) GoFor(left, right int, d time.Duration) error {
	if d <= 0 {
		return c.Stop()
	}
	plan := PlanWheels(left, right)
	cmd, _ := plan.timedCommand(d)
	return c.sess.send(cmd)
}

// Move drives the cube with an (x, y, speed) steering intent; see Plan for
// the wheel-speed computation.
func (c *Cube) Move(x, y, speed int) error {
	plan := Plan(x, y, speed)
	return c.sess.send(plan.simpleCommand())
}

// MoveFor is Move bounded by a duration. A zero or negative duration stops
// the cube.
func (c *Cube) MoveFor(x, y, speed int, d time.Duration) error {
	if d <= 0 {
		return c.Stop()
	}
	plan := Plan(x, y, speed)
	cmd, _ := plan.timedCommand(d)
	return c.sess.send(cmd)
}

// Stop halts both wheels.
func (c *Cube) Stop() error {
	return c.sess.send(WheelPlan{}.simpleCommand())
}

// TargetOption tunes a targeted move.
type TargetOption func(*protocol.MotorTarget)

// WithMoveType selects how the cube approaches the target.
func WithMoveType(t protocol.MoveType) TargetOption {
	return func(m *protocol.MotorTarget) { m.MoveType = t }
}

// WithMaxSpeed caps the targeted move's speed.
func WithMaxSpeed(speed uint8) TargetOption {
	return func(m *protocol.MotorTarget) { m.MaxSpeed = speed }
}

// WithSpeedChange selects the speed profile of the targeted move.
func WithSpeedChange(sc protocol.SpeedChange) TargetOption {
	return func(m *protocol.MotorTarget) { m.SpeedChange = sc }
}

// GoTo drives the cube to a mat position and waits for the cube's
// acknowledgment. It fails with ErrTimeout if no acknowledgment arrives,
// ErrDisconnected if the connection drops, or a descriptive error when the
// cube reports the move failed (off the mat, parameter out of range, ...).
func (c *Cube) GoTo(ctx context.Context, x, y, angle int, opts ...TargetOption) error {
	id := c.sess.requestID()
	cmd := protocol.MotorTarget{
		ID:          id,
		Timeout:     uint8(c.sess.cfg.responseTimeout / time.Second),
		MoveType:    protocol.MoveCurve,
		MaxSpeed:    80,
		SpeedChange: protocol.SpeedConst,
		X:           uint16(x),
		Y:           uint16(y),
		Angle:       uint16(angle),
	}
	for _, opt := range opts {
		opt(&cmd)
	}

	res, err := c.sess.sendAwait(ctx, cmd, kindMotorResult, func(msg protocol.Message) bool {
		r, ok := msg.(protocol.MotorTargetResponse)
		return ok && r.ID == id
	})
	if err != nil {
		return err
	}
	if r := res.(protocol.MotorTargetResponse).Result; r != protocol.ResultOK {
		return fmt.Errorf("toio: targeted move failed: %s", r)
	}
	return nil
}

// Waypoint is one stop of a multi-target move.
type Waypoint struct {
	X     int
	Y     int
	Angle int
}

// GoAlong drives the cube through a list of mat positions in order and waits
// for the cube's acknowledgment of the whole run. Options apply to the run
// as for GoTo.
func (c *Cube) GoAlong(ctx context.Context, waypoints []Waypoint, opts ...TargetOption) error {
	if len(waypoints) == 0 {
		return nil
	}

	id := c.sess.requestID()
	base := protocol.MotorTarget{
		ID:          id,
		Timeout:     uint8(c.sess.cfg.responseTimeout / time.Second),
		MoveType:    protocol.MoveCurve,
		MaxSpeed:    80,
		SpeedChange: protocol.SpeedConst,
	}
	for _, opt := range opts {
		opt(&base)
	}

	targets := make([]protocol.Target, len(waypoints))
	for i, w := range waypoints {
		targets[i] = protocol.Target{X: uint16(w.X), Y: uint16(w.Y), Angle: uint16(w.Angle)}
	}
	cmd := protocol.MotorMultiTarget{
		ID:          id,
		Timeout:     base.Timeout,
		MoveType:    base.MoveType,
		MaxSpeed:    base.MaxSpeed,
		SpeedChange: base.SpeedChange,
		Targets:     targets,
	}

	res, err := c.sess.sendAwait(ctx, cmd, kindMotorResult, func(msg protocol.Message) bool {
		r, ok := msg.(protocol.MotorMultiTargetResponse)
		return ok && r.ID == id
	})
	if err != nil {
		return err
	}
	if r := res.(protocol.MotorMultiTargetResponse).Result; r != protocol.ResultOK {
		return fmt.Errorf("toio: multi-target move failed: %s", r)
	}
	return nil
}

// Accelerate moves the cube with a smooth speed ramp. speed is the signed
// target speed, acc the speed gain per 100ms (0 = jump immediately), rotate
// the signed angular velocity in degrees per second. A zero duration keeps
// the motion until the next motor command.
func (c *Cube) Accelerate(speed, acc, rotate int, d time.Duration) error {
	transDir := protocol.CubeForward
	if speed < 0 {
		transDir = protocol.CubeBackward
		speed = -speed
	}
	rotateDir := protocol.CubeForward
	if rotate < 0 {
		rotateDir = protocol.CubeBackward
		rotate = -rotate
	}
	spd, _ := clampSpeed(speed)
	units, _ := wireDuration(d)

	return c.sess.send(protocol.MotorAcc{
		ID:          c.sess.requestID(),
		Speed:       uint8(spd),
		Acc:         uint8(acc),
		RotateSpeed: uint16(rotate),
		RotateDir:   rotateDir,
		TransDir:    transDir,
		Priority:    protocol.PriorityTranslation,
		Duration:    units,
	})
}

// Light and sound

// LightOp is one step of a light sequence.
type LightOp struct {
	Red      uint8
	Green    uint8
	Blue     uint8
	Duration time.Duration // 0 = stay on
}

// LightOn turns the light on with an RGB level until turned off.
func (c *Cube) LightOn(red, green, blue uint8) error {
	return c.sess.send(protocol.LightOn{
		Num: 1, ID: 1,
		Red: red, Green: green, Blue: blue,
	})
}

// LightOff turns all lights off.
func (c *Cube) LightOff() error {
	return c.sess.send(protocol.LightAllOff{})
}

// Light runs a light sequence, repeated the given number of times
// (0 = forever).
func (c *Cube) Light(ops []LightOp, repeat int) error {
	wire := make([]protocol.LightOn, len(ops))
	for i, op := range ops {
		units, _ := wireDuration(op.Duration)
		wire[i] = protocol.LightOn{
			Duration: units,
			Num:      1, ID: 1,
			Red: op.Red, Green: op.Green, Blue: op.Blue,
		}
	}
	return c.sess.send(protocol.LightControl{Repeat: uint8(repeat), Ops: wire})
}

// SoundOp is one note of a sound sequence.
type SoundOp struct {
	Note     protocol.Note
	Duration time.Duration
	Volume   uint8 // 0-255
}

// PlayPreset plays one of the built-in sound effects at full volume.
func (c *Cube) PlayPreset(preset protocol.SoundPresetID) error {
	return c.sess.send(protocol.SoundPreset{Preset: preset, Volume: 255})
}

// Play plays a note sequence, repeated the given number of times
// (0 = forever).
func (c *Cube) Play(ops []SoundOp, repeat int) error {
	wire := make([]protocol.SoundOp, len(ops))
	for i, op := range ops {
		units, _ := wireDuration(op.Duration)
		wire[i] = protocol.SoundOp{Duration: units, Note: op.Note, Volume: op.Volume}
	}
	return c.sess.send(protocol.SoundPlay{Repeat: uint8(repeat), Ops: wire})
}

// StopSound stops sound playback.
func (c *Cube) StopSound() error {
	return c.sess.send(protocol.SoundStop{})
}

// Sensors and configuration

// Battery returns the last reported battery level (0-100), or -1 before the
// first battery notification.
func (c *Cube) Battery() int { return c.sess.Battery() }

// Position returns the last known play-mat position. ok is false before the
// first position reading.
func (c *Cube) Position() (pos Position, ok bool) { return c.sess.Position() }

// StandardID returns the last standard id read. ok is false before the
// first reading.
func (c *Cube) StandardID() (id StandardID, ok bool) { return c.sess.StandardID() }

// Version queries the cube's BLE protocol version.
func (c *Cube) Version(ctx context.Context) (string, error) {
	res, err := c.sess.sendAwait(ctx, protocol.ConfigVersionRequest{}, kindConfigVersion, func(msg protocol.Message) bool {
		_, ok := msg.(protocol.ConfigVersionResponse)
		return ok
	})
	if err != nil {
		return "", err
	}
	return res.(protocol.ConfigVersionResponse).Version, nil
}

// ConfigureSlope sets the slope detection threshold in degrees.
func (c *Cube) ConfigureSlope(threshold uint8) error {
	return c.sess.send(protocol.ConfigSlope{Threshold: threshold})
}

// ConfigureCollision sets the collision detection threshold.
func (c *Cube) ConfigureCollision(threshold uint8) error {
	return c.sess.send(protocol.ConfigCollision{Threshold: threshold})
}

// ConfigureDoubleTap sets the double-tap detection interval.
func (c *Cube) ConfigureDoubleTap(interval uint8) error {
	return c.sess.send(protocol.ConfigDoubleTap{Interval: interval})
}
