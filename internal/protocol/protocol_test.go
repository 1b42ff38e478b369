package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestIDPositionVector(t *testing.T) {
	// Hardware-observed layout: tag + six little-endian uint16 fields.
	m := IDPosition{CubeX: 1, CubeY: 2, CubeAngle: 3, SensorX: 4, SensorY: 5, SensorAngle: 6}
	want := []byte{0x01, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00, 0x05, 0x00, 0x06, 0x00}
	if got := m.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("Marshal() = % x, want % x", got, want)
	}

	decoded, err := Decode(CharID, want)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != m {
		t.Errorf("Decode = %+v, want %+v", decoded, m)
	}
}

func TestMotionDetectVector(t *testing.T) {
	m := MotionDetect{Level: false, Collision: true, DoubleTap: false, Posture: PostureFrontUp}
	want := []byte{0x01, 0x00, 0x01, 0x00, 0x04}
	if got := m.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("Marshal() = % x, want % x", got, want)
	}

	decoded, err := Decode(CharMotion, want)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != m {
		t.Errorf("Decode = %+v, want %+v", decoded, m)
	}
}

func TestButtonVector(t *testing.T) {
	m := ButtonFunc{State: ButtonPressed}
	want := []byte{0x01, 0x80}
	if got := m.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("Marshal() = % x, want % x", got, want)
	}

	decoded, err := Decode(CharButton, want)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !decoded.(ButtonFunc).Pressed() {
		t.Error("decoded button should report pressed")
	}
}

func TestBatteryHasNoTypeTag(t *testing.T) {
	decoded, err := Decode(CharBattery, []byte{59})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if lvl := decoded.(BatteryLevel).Level; lvl != 59 {
		t.Errorf("Level = %d, want 59", lvl)
	}
	if got := (BatteryLevel{Level: 59}).Marshal(); !bytes.Equal(got, []byte{59}) {
		t.Errorf("Marshal() = % x, want 3b", got)
	}
}

func TestRoundTripNotifications(t *testing.T) {
	// Every frame the cube can push must survive decode(marshal(x)) == x.
	msgs := []Message{
		IDPosition{CubeX: 250, CubeY: 190, CubeAngle: 270, SensorX: 266, SensorY: 210, SensorAngle: 271},
		IDStandard{Value: 3670016, Angle: 90},
		IDPositionMissed{},
		IDStandardMissed{},
		MotionDetect{Level: true, Collision: false, DoubleTap: true, Posture: PostureHeadUp},
		ButtonFunc{State: ButtonReleased},
		BatteryLevel{Level: 100},
		MotorTargetResponse{ID: 7, Result: ResultOK},
		MotorMultiTargetResponse{ID: 9, Result: ResultFull},
		ConfigVersionResponse{Version: "2.1.0"},
	}
	for _, m := range msgs {
		decoded, err := Decode(m.Characteristic(), m.Marshal())
		if err != nil {
			t.Errorf("%T: decode failed: %v", m, err)
			continue
		}
		if decoded != m {
			t.Errorf("%T: round trip = %+v, want %+v", m, decoded, m)
		}
	}
}

func TestCommandLayouts(t *testing.T) {
	tests := []struct {
		msg  Message
		want []byte
	}{
		{
			MotorSimple{Motor1: MotorLeft, Dir1: MotorForward, Speed1: 30, Motor2: MotorRight, Dir2: MotorForward, Speed2: 30},
			[]byte{0x01, 0x01, 0x01, 30, 0x02, 0x01, 30},
		},
		{
			MotorTimed{Motor1: MotorLeft, Dir1: MotorForward, Speed1: 50, Motor2: MotorRight, Dir2: MotorBackward, Speed2: 10, Duration: 100},
			[]byte{0x02, 0x01, 0x01, 50, 0x02, 0x02, 10, 100},
		},
		{
			MotorTarget{ID: 1, Timeout: 5, MoveType: MoveStraight, MaxSpeed: 80, SpeedChange: SpeedConst, X: 100, Y: 200, Angle: 90},
			[]byte{0x03, 1, 5, 0x02, 80, 0x00, 0x00, 100, 0x00, 200, 0x00, 90, 0x00},
		},
		{
			MotorMultiTarget{ID: 2, Timeout: 10, MoveType: MoveCurve, MaxSpeed: 50, SpeedChange: SpeedAccDec, WriteOpt: WriteAppend,
				Targets: []Target{{X: 1, Y: 2, Angle: 3}, {X: 4, Y: 5, Angle: 6}}},
			[]byte{0x04, 2, 10, 0x00, 50, 0x03, 0x00, 0x01,
				1, 0, 2, 0, 3, 0,
				4, 0, 5, 0, 6, 0},
		},
		{
			MotorAcc{ID: 3, Speed: 40, Acc: 5, RotateSpeed: 300, RotateDir: CubeForward, TransDir: CubeBackward, Priority: PriorityRotation, Duration: 200},
			[]byte{0x05, 3, 40, 5, 0x2c, 0x01, 0x00, 0x01, 0x01, 200},
		},
		{LightAllOff{}, []byte{0x01}},
		{LightOff{Num: 1, ID: 1}, []byte{0x02, 1, 1}},
		{
			LightOn{Duration: 10, Num: 1, ID: 1, Red: 255, Green: 0, Blue: 128},
			[]byte{0x03, 10, 1, 1, 255, 0, 128},
		},
		{
			LightControl{Repeat: 10, Ops: []LightOn{
				{Duration: 10, Num: 1, ID: 1, Red: 255, Green: 0, Blue: 0},
				{Duration: 10, Num: 1, ID: 1, Red: 0, Green: 255, Blue: 0},
			}},
			[]byte{0x04, 10, 2, 10, 1, 1, 255, 0, 0, 10, 1, 1, 0, 255, 0},
		},
		{SoundStop{}, []byte{0x01}},
		{SoundPreset{Preset: PresetEnter, Volume: 255}, []byte{0x02, 0, 255}},
		{
			SoundPlay{Repeat: 3, Ops: []SoundOp{
				{Duration: 50, Note: NoteC5, Volume: 255},
				{Duration: 50, Note: NoteA6, Volume: 255},
			}},
			[]byte{0x03, 3, 2, 50, 60, 255, 50, 81, 255},
		},
		{ConfigVersionRequest{}, []byte{0x01, 0x00}},
		{ConfigSlope{Threshold: 45}, []byte{0x02, 0x00, 45}},
		{ConfigCollision{Threshold: 7}, []byte{0x03, 0x00, 7}},
		{ConfigDoubleTap{Interval: 5}, []byte{0x04, 0x00, 5}},
	}
	for _, tt := range tests {
		if got := tt.msg.Marshal(); !bytes.Equal(got, tt.want) {
			t.Errorf("%T: Marshal() = % x, want % x", tt.msg, got, tt.want)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(CharMotion, []byte{0x7f, 0x00})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatal("err should be a *DecodeError")
	}
	if de.Type != 0x7f || de.Char != CharMotion {
		t.Errorf("DecodeError = %+v", de)
	}
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		char Characteristic
		data []byte
	}{
		{CharID, []byte{0x01, 0x01, 0x00}},   // position needs 13 bytes
		{CharID, []byte{0x02, 0x00}},         // standard id needs 7
		{CharMotion, []byte{0x01, 0x00}},     // detect needs 5
		{CharButton, []byte{0x01}},           // state byte missing
		{CharMotor, []byte{0x83, 0x01}},      // result byte missing
		{CharBattery, nil},                   // empty payload
		{CharConfig, nil},                    // empty payload
	}
	for _, tt := range tests {
		_, err := Decode(tt.char, tt.data)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("Decode(%s, % x): err = %v, want ErrTruncated", tt.char, tt.data, err)
		}
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	chars := []Characteristic{CharID, CharMotor, CharLight, CharSound, CharMotion, CharButton, CharBattery, CharConfig}
	for _, c := range chars {
		for tag := 0; tag < 256; tag++ {
			Decode(c, []byte{byte(tag)})
			Decode(c, nil)
		}
	}
}
