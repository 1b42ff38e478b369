// Package protocol implements the toio cube BLE wire protocol.
//
// Every toio characteristic exchanges small fixed-layout frames. Except for
// the battery characteristic, whose payload is the bare level byte, each
// frame starts with a one-byte type tag followed by little-endian fields at
// fixed offsets. The layouts here follow the vendor specification and must
// stay bit-exact for interoperability.
package protocol

import (
	"errors"
	"fmt"
)

// Service and characteristic UUIDs of the toio cube.
const (
	ServiceUUID = "10b20100-5b3b-4571-9508-cf3efcd7bbae"
	IDCharUUID  = "10b20101-5b3b-4571-9508-cf3efcd7bbae"

	MotorCharUUID   = "10b20102-5b3b-4571-9508-cf3efcd7bbae"
	LightCharUUID   = "10b20103-5b3b-4571-9508-cf3efcd7bbae"
	SoundCharUUID   = "10b20104-5b3b-4571-9508-cf3efcd7bbae"
	MotionCharUUID  = "10b20106-5b3b-4571-9508-cf3efcd7bbae"
	ButtonCharUUID  = "10b20107-5b3b-4571-9508-cf3efcd7bbae"
	BatteryCharUUID = "10b20108-5b3b-4571-9508-cf3efcd7bbae"
	ConfigCharUUID  = "10b201ff-5b3b-4571-9508-cf3efcd7bbae"
)

// Characteristic identifies one of the cube's GATT characteristics.
type Characteristic uint8

const (
	CharID Characteristic = iota
	CharMotor
	CharLight
	CharSound
	CharMotion
	CharButton
	CharBattery
	CharConfig
)

func (c Characteristic) String() string {
	switch c {
	case CharID:
		return "id"
	case CharMotor:
		return "motor"
	case CharLight:
		return "light"
	case CharSound:
		return "sound"
	case CharMotion:
		return "motion"
	case CharButton:
		return "button"
	case CharBattery:
		return "battery"
	case CharConfig:
		return "config"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// UUID returns the characteristic's GATT UUID string.
func (c Characteristic) UUID() string {
	switch c {
	case CharID:
		return IDCharUUID
	case CharMotor:
		return MotorCharUUID
	case CharLight:
		return LightCharUUID
	case CharSound:
		return SoundCharUUID
	case CharMotion:
		return MotionCharUUID
	case CharButton:
		return ButtonCharUUID
	case CharBattery:
		return BatteryCharUUID
	case CharConfig:
		return ConfigCharUUID
	default:
		return ""
	}
}

// Decode failure classes.
var (
	ErrUnknownType = errors.New("protocol: unknown frame type")
	ErrTruncated   = errors.New("protocol: truncated frame")
)

// DecodeError describes why an inbound frame could not be decoded.
type DecodeError struct {
	Char Characteristic
	Type byte // leading type tag, if one was present
	Need int  // bytes required by the layout
	Got  int  // bytes received
	err  error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.err, ErrUnknownType) {
		return fmt.Sprintf("protocol: unknown type 0x%02x on %s characteristic", e.Type, e.Char)
	}
	return fmt.Sprintf("protocol: truncated frame on %s characteristic: need %d bytes, got %d", e.Char, e.Need, e.Got)
}

func (e *DecodeError) Unwrap() error { return e.err }

func unknownType(c Characteristic, t byte) error {
	return &DecodeError{Char: c, Type: t, err: ErrUnknownType}
}

func truncated(c Characteristic, need, got int) error {
	return &DecodeError{Char: c, Need: need, Got: got, err: ErrTruncated}
}

// Message is a frame read from or written to a cube characteristic.
type Message interface {
	// Characteristic returns the characteristic the frame belongs to.
	Characteristic() Characteristic
	// Marshal serializes the frame to its wire layout. It never fails;
	// field values are validated by the callers that construct frames.
	Marshal() []byte
}

// Decode parses a frame received from the given characteristic. It is total
// over the notification set: an unrecognized type tag yields ErrUnknownType
// and a payload shorter than the variant's layout yields ErrTruncated, both
// wrapped in a *DecodeError.
func Decode(char Characteristic, data []byte) (Message, error) {
	if char == CharBattery {
		return decodeBattery(data)
	}
	if len(data) == 0 {
		return nil, truncated(char, 1, 0)
	}
	switch char {
	case CharID:
		return decodeID(data)
	case CharMotor:
		return decodeMotor(data)
	case CharMotion:
		return decodeMotion(data)
	case CharButton:
		return decodeButton(data)
	case CharConfig:
		return decodeConfig(data)
	default:
		return nil, unknownType(char, data[0])
	}
}
