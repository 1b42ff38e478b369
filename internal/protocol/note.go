package protocol

// Note is a MIDI-style note number understood by the sound characteristic.
// The playable range runs from C0 (0) to G10 (126); NoSound inserts a rest.
type Note uint8

const (
	NoteC0 Note = iota
	NoteCS0
	NoteD0
	NoteDS0
	NoteE0
	NoteF0
	NoteFS0
	NoteG0
	NoteGS0
	NoteA0
	NoteAS0
	NoteB0
	NoteC1
	NoteCS1
	NoteD1
	NoteDS1
	NoteE1
	NoteF1
	NoteFS1
	NoteG1
	NoteGS1
	NoteA1
	NoteAS1
	NoteB1
	NoteC2
	NoteCS2
	NoteD2
	NoteDS2
	NoteE2
	NoteF2
	NoteFS2
	NoteG2
	NoteGS2
	NoteA2
	NoteAS2
	NoteB2
	NoteC3
	NoteCS3
	NoteD3
	NoteDS3
	NoteE3
	NoteF3
	NoteFS3
	NoteG3
	NoteGS3
	NoteA3
	NoteAS3
	NoteB3
	NoteC4
	NoteCS4
	NoteD4
	NoteDS4
	NoteE4
	NoteF4
	NoteFS4
	NoteG4
	NoteGS4
	NoteA4
	NoteAS4
	NoteB4
	NoteC5
	NoteCS5
	NoteD5
	NoteDS5
	NoteE5
	NoteF5
	NoteFS5
	NoteG5
	NoteGS5
	NoteA5
	NoteAS5
	NoteB5
	NoteC6
	NoteCS6
	NoteD6
	NoteDS6
	NoteE6
	NoteF6
	NoteFS6
	NoteG6
	NoteGS6
	NoteA6
	NoteAS6
	NoteB6
	NoteC7
	NoteCS7
	NoteD7
	NoteDS7
	NoteE7
	NoteF7
	NoteFS7
	NoteG7
	NoteGS7
	NoteA7
	NoteAS7
	NoteB7
	NoteC8
	NoteCS8
	NoteD8
	NoteDS8
	NoteE8
	NoteF8
	NoteFS8
	NoteG8
	NoteGS8
	NoteA8
	NoteAS8
	NoteB8
	NoteC9
	NoteCS9
	NoteD9
	NoteDS9
	NoteE9
	NoteF9
	NoteFS9
	NoteG9
	NoteGS9
	NoteA9
	NoteAS9
	NoteB9
	NoteC10
	NoteCS10
	NoteD10
	NoteDS10
	NoteE10
	NoteF10
	NoteFS10
	NoteG10
)

// NoSound is a rest: the speaker stays silent for the op's duration.
const NoSound Note = 0x80
