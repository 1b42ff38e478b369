package protocol

import "encoding/binary"

// Frame type tags.
const (
	idTypePos       byte = 0x01
	idTypeStd       byte = 0x02
	idTypePosMissed byte = 0x03
	idTypeStdMissed byte = 0x04

	motorTypeSimple         byte = 0x01
	motorTypeTimed          byte = 0x02
	motorTypeTarget         byte = 0x03
	motorTypeMultiTarget    byte = 0x04
	motorTypeAcc            byte = 0x05
	motorTypeTargetRes      byte = 0x83
	motorTypeMultiTargetRes byte = 0x84

	lightTypeAllOff  byte = 0x01
	lightTypeOff     byte = 0x02
	lightTypeOn      byte = 0x03
	lightTypeControl byte = 0x04

	soundTypeStop   byte = 0x01
	soundTypePreset byte = 0x02
	soundTypePlay   byte = 0x03

	motionTypeDetect byte = 0x01

	buttonTypeFunc byte = 0x01

	configTypeVersion    byte = 0x01
	configTypeSlope      byte = 0x02
	configTypeCollision  byte = 0x03
	configTypeDoubleTap  byte = 0x04
	configTypeVersionRes byte = 0x81
)

func putU16(buf []byte, v uint16) { binary.LittleEndian.PutUint16(buf, v) }
func u16(buf []byte) uint16       { return binary.LittleEndian.Uint16(buf) }
func u32(buf []byte) uint32       { return binary.LittleEndian.Uint32(buf) }

// ID characteristic (position sensor reader).

// IDPosition is a reading from the position id area of a play mat.
// All coordinates are little-endian uint16.
type IDPosition struct {
	CubeX       uint16 // x of the cube center
	CubeY       uint16 // y of the cube center
	CubeAngle   uint16 // heading of the cube
	SensorX     uint16 // x of the read sensor
	SensorY     uint16 // y of the read sensor
	SensorAngle uint16 // heading of the read sensor
}

func (IDPosition) Characteristic() Characteristic { return CharID }

func (m IDPosition) Marshal() []byte {
	buf := make([]byte, 13)
	buf[0] = idTypePos
	putU16(buf[1:], m.CubeX)
	putU16(buf[3:], m.CubeY)
	putU16(buf[5:], m.CubeAngle)
	putU16(buf[7:], m.SensorX)
	putU16(buf[9:], m.SensorY)
	putU16(buf[11:], m.SensorAngle)
	return buf
}

// IDStandard is a reading of a standard id (card or sticker).
type IDStandard struct {
	Value uint32
	Angle uint16
}

func (IDStandard) Characteristic() Characteristic { return CharID }

func (m IDStandard) Marshal() []byte {
	buf := make([]byte, 7)
	buf[0] = idTypeStd
	binary.LittleEndian.PutUint32(buf[1:], m.Value)
	putU16(buf[5:], m.Angle)
	return buf
}

// IDPositionMissed signals the cube left the position id area.
type IDPositionMissed struct{}

func (IDPositionMissed) Characteristic() Characteristic { return CharID }
func (IDPositionMissed) Marshal() []byte                { return []byte{idTypePosMissed} }

// IDStandardMissed signals the cube left the standard id area.
type IDStandardMissed struct{}

func (IDStandardMissed) Characteristic() Characteristic { return CharID }
func (IDStandardMissed) Marshal() []byte                { return []byte{idTypeStdMissed} }

func decodeID(data []byte) (Message, error) {
	switch data[0] {
	case idTypePos:
		if len(data) < 13 {
			return nil, truncated(CharID, 13, len(data))
		}
		return IDPosition{
			CubeX:       u16(data[1:]),
			CubeY:       u16(data[3:]),
			CubeAngle:   u16(data[5:]),
			SensorX:     u16(data[7:]),
			SensorY:     u16(data[9:]),
			SensorAngle: u16(data[11:]),
		}, nil
	case idTypeStd:
		if len(data) < 7 {
			return nil, truncated(CharID, 7, len(data))
		}
		return IDStandard{Value: u32(data[1:]), Angle: u16(data[5:])}, nil
	case idTypePosMissed:
		return IDPositionMissed{}, nil
	case idTypeStdMissed:
		return IDStandardMissed{}, nil
	default:
		return nil, unknownType(CharID, data[0])
	}
}

// Motor characteristic.

// MotorID selects a wheel motor.
type MotorID uint8

const (
	MotorLeft  MotorID = 0x01
	MotorRight MotorID = 0x02
)

// MotorDir is a motor rotation direction.
type MotorDir uint8

const (
	MotorForward  MotorDir = 0x01
	MotorBackward MotorDir = 0x02
)

// MotorSimple runs both motors until the next motor command.
type MotorSimple struct {
	Motor1 MotorID
	Dir1   MotorDir
	Speed1 uint8
	Motor2 MotorID
	Dir2   MotorDir
	Speed2 uint8
}

func (MotorSimple) Characteristic() Characteristic { return CharMotor }

func (m MotorSimple) Marshal() []byte {
	return []byte{
		motorTypeSimple,
		byte(m.Motor1), byte(m.Dir1), m.Speed1,
		byte(m.Motor2), byte(m.Dir2), m.Speed2,
	}
}

// MotorTimed runs both motors for Duration (10ms units, 0 = indefinite).
type MotorTimed struct {
	Motor1   MotorID
	Dir1     MotorDir
	Speed1   uint8
	Motor2   MotorID
	Dir2     MotorDir
	Speed2   uint8
	Duration uint8
}

func (MotorTimed) Characteristic() Characteristic { return CharMotor }

func (m MotorTimed) Marshal() []byte {
	return []byte{
		motorTypeTimed,
		byte(m.Motor1), byte(m.Dir1), m.Speed1,
		byte(m.Motor2), byte(m.Dir2), m.Speed2,
		m.Duration,
	}
}

// MoveType selects how the cube approaches a target position.
type MoveType uint8

const (
	MoveCurve       MoveType = 0x00 // spin while moving
	MoveForwardOnly MoveType = 0x01 // never reverse
	MoveStraight    MoveType = 0x02 // spin in place first, then go straight
)

// SpeedChange selects the speed profile of a targeted move.
type SpeedChange uint8

const (
	SpeedConst  SpeedChange = 0x00
	SpeedAcc    SpeedChange = 0x01
	SpeedDec    SpeedChange = 0x02
	SpeedAccDec SpeedChange = 0x03
)

// MotorTarget drives the cube to a mat position. The cube acknowledges with
// a MotorTargetResponse carrying the same request ID.
type MotorTarget struct {
	ID          uint8
	Timeout     uint8 // seconds
	MoveType    MoveType
	MaxSpeed    uint8
	SpeedChange SpeedChange
	X           uint16
	Y           uint16
	Angle       uint16
}

func (MotorTarget) Characteristic() Characteristic { return CharMotor }

func (m MotorTarget) Marshal() []byte {
	buf := make([]byte, 13)
	buf[0] = motorTypeTarget
	buf[1] = m.ID
	buf[2] = m.Timeout
	buf[3] = byte(m.MoveType)
	buf[4] = m.MaxSpeed
	buf[5] = byte(m.SpeedChange)
	buf[6] = 0 // reserved
	putU16(buf[7:], m.X)
	putU16(buf[9:], m.Y)
	putU16(buf[11:], m.Angle)
	return buf
}

// WriteOpt decides what happens to a pending targeted move when another
// multi-target request arrives.
type WriteOpt uint8

const (
	WriteOverwrite WriteOpt = 0x00
	WriteAppend    WriteOpt = 0x01
)

// Target is one waypoint of a MotorMultiTarget request.
type Target struct {
	X     uint16
	Y     uint16
	Angle uint16
}

// MotorMultiTarget drives the cube through a list of mat positions.
type MotorMultiTarget struct {
	ID          uint8
	Timeout     uint8
	MoveType    MoveType
	MaxSpeed    uint8
	SpeedChange SpeedChange
	WriteOpt    WriteOpt
	Targets     []Target
}

func (MotorMultiTarget) Characteristic() Characteristic { return CharMotor }

func (m MotorMultiTarget) Marshal() []byte {
	buf := make([]byte, 8, 8+6*len(m.Targets))
	buf[0] = motorTypeMultiTarget
	buf[1] = m.ID
	buf[2] = m.Timeout
	buf[3] = byte(m.MoveType)
	buf[4] = m.MaxSpeed
	buf[5] = byte(m.SpeedChange)
	buf[6] = 0 // reserved
	buf[7] = byte(m.WriteOpt)
	for _, t := range m.Targets {
		var w [6]byte
		putU16(w[0:], t.X)
		putU16(w[2:], t.Y)
		putU16(w[4:], t.Angle)
		buf = append(buf, w[:]...)
	}
	return buf
}

// MotorCubeDir is a whole-cube translation/rotation direction.
type MotorCubeDir uint8

const (
	CubeForward  MotorCubeDir = 0x00
	CubeBackward MotorCubeDir = 0x01
)

// MotorPriority selects which speed wins when both cannot be satisfied.
type MotorPriority uint8

const (
	PriorityTranslation MotorPriority = 0x00
	PriorityRotation    MotorPriority = 0x01
)

// MotorAcc moves the cube with a given acceleration profile.
type MotorAcc struct {
	ID          uint8
	Speed       uint8
	Acc         uint8
	RotateSpeed uint16
	RotateDir   MotorCubeDir
	TransDir    MotorCubeDir
	Priority    MotorPriority
	Duration    uint8
}

func (MotorAcc) Characteristic() Characteristic { return CharMotor }

func (m MotorAcc) Marshal() []byte {
	buf := make([]byte, 10)
	buf[0] = motorTypeAcc
	buf[1] = m.ID
	buf[2] = m.Speed
	buf[3] = m.Acc
	putU16(buf[4:], m.RotateSpeed)
	buf[6] = byte(m.RotateDir)
	buf[7] = byte(m.TransDir)
	buf[8] = byte(m.Priority)
	buf[9] = m.Duration
	return buf
}

// MotorResult is the result code of a targeted move.
type MotorResult uint8

const (
	ResultOK           MotorResult = 0x00
	ResultTimeout      MotorResult = 0x01
	ResultIDMissed     MotorResult = 0x02
	ResultInvalidParam MotorResult = 0x03
	ResultInvalidState MotorResult = 0x04
	ResultOtherWrite   MotorResult = 0x05
	ResultUnsupported  MotorResult = 0x06
	ResultFull         MotorResult = 0x07
)

func (r MotorResult) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultTimeout:
		return "timeout"
	case ResultIDMissed:
		return "position id missed"
	case ResultInvalidParam:
		return "invalid parameter"
	case ResultInvalidState:
		return "invalid state"
	case ResultOtherWrite:
		return "overwritten by another request"
	case ResultUnsupported:
		return "unsupported"
	case ResultFull:
		return "request queue full"
	default:
		return "unknown"
	}
}

// MotorTargetResponse acknowledges a MotorTarget request.
type MotorTargetResponse struct {
	ID     uint8
	Result MotorResult
}

func (MotorTargetResponse) Characteristic() Characteristic { return CharMotor }

func (m MotorTargetResponse) Marshal() []byte {
	return []byte{motorTypeTargetRes, m.ID, byte(m.Result)}
}

// MotorMultiTargetResponse acknowledges a MotorMultiTarget request.
type MotorMultiTargetResponse struct {
	ID     uint8
	Result MotorResult
}

func (MotorMultiTargetResponse) Characteristic() Characteristic { return CharMotor }

func (m MotorMultiTargetResponse) Marshal() []byte {
	return []byte{motorTypeMultiTargetRes, m.ID, byte(m.Result)}
}

func decodeMotor(data []byte) (Message, error) {
	switch data[0] {
	case motorTypeTargetRes:
		if len(data) < 3 {
			return nil, truncated(CharMotor, 3, len(data))
		}
		return MotorTargetResponse{ID: data[1], Result: MotorResult(data[2])}, nil
	case motorTypeMultiTargetRes:
		if len(data) < 3 {
			return nil, truncated(CharMotor, 3, len(data))
		}
		return MotorMultiTargetResponse{ID: data[1], Result: MotorResult(data[2])}, nil
	default:
		return nil, unknownType(CharMotor, data[0])
	}
}

// Motion characteristic.

// Posture tells which side of the cube faces up.
type Posture uint8

const (
	PostureHeadUp      Posture = 0x01
	PostureBottomUp    Posture = 0x02
	PostureBackUp      Posture = 0x03
	PostureFrontUp     Posture = 0x04
	PostureRightSideUp Posture = 0x05
	PostureLeftSideUp  Posture = 0x06
)

func (p Posture) String() string {
	switch p {
	case PostureHeadUp:
		return "head up"
	case PostureBottomUp:
		return "bottom up"
	case PostureBackUp:
		return "back up"
	case PostureFrontUp:
		return "front up"
	case PostureRightSideUp:
		return "right side up"
	case PostureLeftSideUp:
		return "left side up"
	default:
		return "unknown"
	}
}

// MotionDetect is the motion sensor state.
type MotionDetect struct {
	Level     bool // cube is level to the ground
	Collision bool // collision detected
	DoubleTap bool // double tap detected
	Posture   Posture
}

func (MotionDetect) Characteristic() Characteristic { return CharMotion }

func (m MotionDetect) Marshal() []byte {
	return []byte{motionTypeDetect, b2u8(m.Level), b2u8(m.Collision), b2u8(m.DoubleTap), byte(m.Posture)}
}

func b2u8(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func decodeMotion(data []byte) (Message, error) {
	switch data[0] {
	case motionTypeDetect:
		if len(data) < 5 {
			return nil, truncated(CharMotion, 5, len(data))
		}
		return MotionDetect{
			Level:     data[1] != 0,
			Collision: data[2] != 0,
			DoubleTap: data[3] != 0,
			Posture:   Posture(data[4]),
		}, nil
	default:
		return nil, unknownType(CharMotion, data[0])
	}
}

// Button characteristic.

// ButtonState is the state byte of the function button.
type ButtonState uint8

const (
	ButtonReleased ButtonState = 0x00
	ButtonPressed  ButtonState = 0x80
)

// ButtonFunc reports the function button state.
type ButtonFunc struct {
	State ButtonState
}

func (ButtonFunc) Characteristic() Characteristic { return CharButton }

func (m ButtonFunc) Marshal() []byte { return []byte{buttonTypeFunc, byte(m.State)} }

// Pressed reports whether the button is held down.
func (m ButtonFunc) Pressed() bool { return m.State == ButtonPressed }

func decodeButton(data []byte) (Message, error) {
	switch data[0] {
	case buttonTypeFunc:
		if len(data) < 2 {
			return nil, truncated(CharButton, 2, len(data))
		}
		return ButtonFunc{State: ButtonState(data[1])}, nil
	default:
		return nil, unknownType(CharButton, data[0])
	}
}

// Battery characteristic. The payload is the bare level byte with no tag.

// BatteryLevel is the remaining battery percentage.
type BatteryLevel struct {
	Level uint8 // 0-100
}

func (BatteryLevel) Characteristic() Characteristic { return CharBattery }

func (m BatteryLevel) Marshal() []byte { return []byte{m.Level} }

func decodeBattery(data []byte) (Message, error) {
	if len(data) < 1 {
		return nil, truncated(CharBattery, 1, 0)
	}
	return BatteryLevel{Level: data[0]}, nil
}

// Light characteristic (commands only, no notifications).

// LightAllOff turns off every light.
type LightAllOff struct{}

func (LightAllOff) Characteristic() Characteristic { return CharLight }
func (LightAllOff) Marshal() []byte                { return []byte{lightTypeAllOff} }

// LightOff turns off one light.
type LightOff struct {
	Num uint8 // number of lights, 1 on current hardware
	ID  uint8 // light id, 1 on current hardware
}

func (LightOff) Characteristic() Characteristic { return CharLight }

func (m LightOff) Marshal() []byte { return []byte{lightTypeOff, m.Num, m.ID} }

// LightOn turns on one light with an RGB level.
type LightOn struct {
	Duration uint8 // 10ms units, 0 = until turned off
	Num      uint8
	ID       uint8
	Red      uint8
	Green    uint8
	Blue     uint8
}

func (LightOn) Characteristic() Characteristic { return CharLight }

func (m LightOn) Marshal() []byte {
	return []byte{lightTypeOn, m.Duration, m.Num, m.ID, m.Red, m.Green, m.Blue}
}

// LightControl runs a light sequence.
type LightControl struct {
	Repeat uint8 // 0 = forever
	Ops    []LightOn
}

func (LightControl) Characteristic() Characteristic { return CharLight }

func (m LightControl) Marshal() []byte {
	buf := make([]byte, 3, 3+6*len(m.Ops))
	buf[0] = lightTypeControl
	buf[1] = m.Repeat
	buf[2] = uint8(len(m.Ops))
	for _, op := range m.Ops {
		buf = append(buf, op.Duration, op.Num, op.ID, op.Red, op.Green, op.Blue)
	}
	return buf
}

// Sound characteristic (commands only, no notifications).

// SoundPresetID selects a built-in sound effect.
type SoundPresetID uint8

const (
	PresetEnter    SoundPresetID = 0
	PresetSelected SoundPresetID = 1
	PresetCancel   SoundPresetID = 2
	PresetCursor   SoundPresetID = 3
	PresetMatIn    SoundPresetID = 4
	PresetMatOut   SoundPresetID = 5
	PresetGet1     SoundPresetID = 6
	PresetGet2     SoundPresetID = 7
	PresetGet3     SoundPresetID = 8
	PresetEffect1  SoundPresetID = 9
	PresetEffect2  SoundPresetID = 10
)

// SoundStop stops sound playback.
type SoundStop struct{}

func (SoundStop) Characteristic() Characteristic { return CharSound }
func (SoundStop) Marshal() []byte                { return []byte{soundTypeStop} }

// SoundPreset plays a built-in sound effect.
type SoundPreset struct {
	Preset SoundPresetID
	Volume uint8
}

func (SoundPreset) Characteristic() Characteristic { return CharSound }

func (m SoundPreset) Marshal() []byte {
	return []byte{soundTypePreset, byte(m.Preset), m.Volume}
}

// SoundOp plays one note for a duration (10ms units).
type SoundOp struct {
	Duration uint8
	Note     Note
	Volume   uint8
}

// SoundPlay plays a note sequence.
type SoundPlay struct {
	Repeat uint8 // 0 = forever
	Ops    []SoundOp
}

func (SoundPlay) Characteristic() Characteristic { return CharSound }

func (m SoundPlay) Marshal() []byte {
	buf := make([]byte, 3, 3+3*len(m.Ops))
	buf[0] = soundTypePlay
	buf[1] = m.Repeat
	buf[2] = uint8(len(m.Ops))
	for _, op := range m.Ops {
		buf = append(buf, op.Duration, byte(op.Note), op.Volume)
	}
	return buf
}

// Config characteristic.

// ConfigVersionRequest asks for the BLE protocol version. The cube answers
// with a ConfigVersionResponse notification.
type ConfigVersionRequest struct{}

func (ConfigVersionRequest) Characteristic() Characteristic { return CharConfig }
func (ConfigVersionRequest) Marshal() []byte                { return []byte{configTypeVersion, 0x00} }

// ConfigSlope sets the slope (level) detection threshold in degrees.
type ConfigSlope struct {
	Threshold uint8
}

func (ConfigSlope) Characteristic() Characteristic { return CharConfig }

func (m ConfigSlope) Marshal() []byte { return []byte{configTypeSlope, 0x00, m.Threshold} }

// ConfigCollision sets the collision detection threshold.
type ConfigCollision struct {
	Threshold uint8
}

func (ConfigCollision) Characteristic() Characteristic { return CharConfig }

func (m ConfigCollision) Marshal() []byte { return []byte{configTypeCollision, 0x00, m.Threshold} }

// ConfigDoubleTap sets the double-tap detection interval.
type ConfigDoubleTap struct {
	Interval uint8
}

func (ConfigDoubleTap) Characteristic() Characteristic { return CharConfig }

func (m ConfigDoubleTap) Marshal() []byte { return []byte{configTypeDoubleTap, 0x00, m.Interval} }

// ConfigVersionResponse carries the BLE protocol version string.
type ConfigVersionResponse struct {
	Version string
}

func (ConfigVersionResponse) Characteristic() Characteristic { return CharConfig }

func (m ConfigVersionResponse) Marshal() []byte {
	buf := []byte{configTypeVersionRes, 0x00}
	return append(buf, m.Version...)
}

func decodeConfig(data []byte) (Message, error) {
	switch data[0] {
	case configTypeVersionRes:
		if len(data) < 2 {
			return nil, truncated(CharConfig, 2, len(data))
		}
		return ConfigVersionResponse{Version: string(data[2:])}, nil
	default:
		return nil, unknownType(CharConfig, data[0])
	}
}
