package toio

import "github.com/toiolab/toio/internal/protocol"

// Event is a decoded unsolicited notification from the cube. Concrete types:
// BatteryEvent, ButtonEvent, MotionEvent, PositionEvent, PositionMissedEvent,
// StandardIDEvent and StandardIDMissedEvent.
type Event interface {
	isEvent()
}

// Position is a reading from the position id area of a play mat.
type Position struct {
	X     int // x of the cube center
	Y     int // y of the cube center
	Angle int // heading in degrees

	SensorX     int
	SensorY     int
	SensorAngle int
}

// StandardID is a reading of a standard id (card or sticker).
type StandardID struct {
	Value uint32
	Angle int
}

// Posture tells which side of the cube faces up.
type Posture = protocol.Posture

// BatteryEvent reports the remaining battery percentage.
type BatteryEvent struct {
	Level int // 0-100
}

// ButtonEvent reports a function button press or release.
type ButtonEvent struct {
	Pressed bool
}

// MotionEvent is a motion sensor notification.
type MotionEvent struct {
	Level     bool // cube is level to the ground
	Collision bool
	DoubleTap bool
	Posture   Posture
}

// PositionEvent reports the cube's position on a play mat.
type PositionEvent struct {
	Position Position
}

// PositionMissedEvent signals the cube left the position id area.
type PositionMissedEvent struct{}

// StandardIDEvent reports a standard id under the cube.
type StandardIDEvent struct {
	ID StandardID
}

// StandardIDMissedEvent signals the cube left the standard id area.
type StandardIDMissedEvent struct{}

func (BatteryEvent) isEvent()          {}
func (ButtonEvent) isEvent()           {}
func (MotionEvent) isEvent()           {}
func (PositionEvent) isEvent()         {}
func (PositionMissedEvent) isEvent()   {}
func (StandardIDEvent) isEvent()       {}
func (StandardIDMissedEvent) isEvent() {}

// eventFromMessage converts a decoded protocol frame to its public event.
// Frames with no public representation (awaited responses that arrived
// unsolicited) yield nil.
func eventFromMessage(msg protocol.Message) Event {
	switch m := msg.(type) {
	case protocol.BatteryLevel:
		return BatteryEvent{Level: int(m.Level)}
	case protocol.ButtonFunc:
		return ButtonEvent{Pressed: m.Pressed()}
	case protocol.MotionDetect:
		return MotionEvent{Level: m.Level, Collision: m.Collision, DoubleTap: m.DoubleTap, Posture: m.Posture}
	case protocol.IDPosition:
		return PositionEvent{Position: Position{
			X:           int(m.CubeX),
			Y:           int(m.CubeY),
			Angle:       int(m.CubeAngle),
			SensorX:     int(m.SensorX),
			SensorY:     int(m.SensorY),
			SensorAngle: int(m.SensorAngle),
		}}
	case protocol.IDPositionMissed:
		return PositionMissedEvent{}
	case protocol.IDStandard:
		return StandardIDEvent{ID: StandardID{Value: m.Value, Angle: int(m.Angle)}}
	case protocol.IDStandardMissed:
		return StandardIDMissedEvent{}
	default:
		return nil
	}
}
