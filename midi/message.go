// Package midi decodes and encodes the MIDI 1.0 transport byte stream.
//
// A Decoder consumes bytes one at a time, keeps running status and hands
// completed messages to a Handler. An Encoder turns messages back into bytes.
package midi

import "fmt"

// Status byte classes for channel-voice messages. The low nibble carries the
// channel.
const (
	StatusNoteOff           = 0x80
	StatusNoteOn            = 0x90
	StatusPolyAftertouch    = 0xA0
	StatusControlChange     = 0xB0
	StatusProgramChange     = 0xC0
	StatusChannelAftertouch = 0xD0
	StatusPitchBend         = 0xE0
)

// System common codes.
const (
	SysExStart      = 0xF0
	MTCQuarterFrame = 0xF1
	SongPosition    = 0xF2
	SongSelect      = 0xF3
	TuneRequest     = 0xF6
	EndOfExclusive  = 0xF7
)

// PitchBendCenter is the 14-bit pitch bend value for no bend.
const PitchBendCenter = 0x2000

const (
	statusMask    = 0x80
	dataMask      = 0x7F
	classMask     = 0xF0
	channelMask   = 0x0F
	pitchBendMask = 0x3FFF

	firstSystem   = 0xF0
	firstRealTime = 0xF8
)

// System real-time codes.
const (
	TimingClock   = 0xF8
	Start         = 0xFA
	Continue      = 0xFB
	Stop          = 0xFC
	ActiveSensing = 0xFE
	Reset         = 0xFF
)

// Controller numbers used by ModWheel.
const (
	CCModWheelMSB = 0x01
	CCModWheelLSB = 0x21
)

// Class identifies how a status byte frames the data bytes that follow it.
type Class int

const (
	ClassData Class = iota // not a status byte
	ClassChannelVoice
	ClassSystemCommon
	ClassRealTime
)

// IsStatus reports whether b has bit 7 set.
func IsStatus(b byte) bool { return b&statusMask != 0 }

// StatusClass classifies a byte.
func StatusClass(b byte) Class {
	switch {
	case !IsStatus(b):
		return ClassData
	case b >= firstRealTime:
		return ClassRealTime
	case b >= firstSystem:
		return ClassSystemCommon
	}
	return ClassChannelVoice
}

// DataLength returns how many data bytes complete a message started by the
// given status byte. ok is false for statuses whose data bytes are not
// decoded (SysEx, undefined system common codes, real-time).
func DataLength(status byte) (n int, ok bool) {
	switch StatusClass(status) {
	case ClassChannelVoice:
		switch status & classMask {
		case StatusProgramChange, StatusChannelAftertouch:
			return 1, true
		}
		return 2, true
	case ClassSystemCommon:
		switch status {
		case MTCQuarterFrame, SongSelect:
			return 1, true
		case SongPosition:
			return 2, true
		case TuneRequest:
			return 0, true
		}
	}
	return 0, false
}

// Message is one decoded MIDI event. The set of implementations is closed to
// the types in this package.
type Message interface {
	fmt.Stringer
	// Status returns the status byte that starts the message on the wire.
	Status() byte
	appendData(dst []byte) []byte
}

type NoteOn struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (m NoteOn) Status() byte { return StatusNoteOn | m.Channel&channelMask }

func (m NoteOn) String() string {
	return fmt.Sprintf("Channel %d: note %d on, velocity = %d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOn) appendData(dst []byte) []byte {
	return append(dst, m.Key&dataMask, m.Velocity&dataMask)
}

type NoteOff struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (m NoteOff) Status() byte { return StatusNoteOff | m.Channel&channelMask }

func (m NoteOff) String() string {
	return fmt.Sprintf("Channel %d: note %d off, velocity = %d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOff) appendData(dst []byte) []byte {
	return append(dst, m.Key&dataMask, m.Velocity&dataMask)
}

// ControlChange also carries channel-mode messages (controllers 120-127).
type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

func (m ControlChange) Status() byte { return StatusControlChange | m.Channel&channelMask }

func (m ControlChange) String() string {
	return fmt.Sprintf("Channel %d: control change %d, value %d", m.Channel, m.Controller, m.Value)
}

func (m ControlChange) appendData(dst []byte) []byte {
	return append(dst, m.Controller&dataMask, m.Value&dataMask)
}

type ProgramChange struct {
	Channel uint8
	Program uint8
}

func (m ProgramChange) Status() byte { return StatusProgramChange | m.Channel&channelMask }

func (m ProgramChange) String() string {
	return fmt.Sprintf("Channel %d: program change to %d", m.Channel, m.Program)
}

func (m ProgramChange) appendData(dst []byte) []byte {
	return append(dst, m.Program&dataMask)
}

// ChannelAftertouch is channel pressure: one value for the whole channel.
type ChannelAftertouch struct {
	Channel uint8
	Value   uint8
}

func (m ChannelAftertouch) Status() byte { return StatusChannelAftertouch | m.Channel&channelMask }

func (m ChannelAftertouch) String() string {
	return fmt.Sprintf("Channel %d: channel pressure %d", m.Channel, m.Value)
}

func (m ChannelAftertouch) appendData(dst []byte) []byte {
	return append(dst, m.Value&dataMask)
}

// PolyAftertouch is polyphonic key pressure.
type PolyAftertouch struct {
	Channel uint8
	Key     uint8
	Value   uint8
}

func (m PolyAftertouch) Status() byte { return StatusPolyAftertouch | m.Channel&channelMask }

func (m PolyAftertouch) String() string {
	return fmt.Sprintf("Channel %d: note %d aftertouch pressure %d", m.Channel, m.Key, m.Value)
}

func (m PolyAftertouch) appendData(dst []byte) []byte {
	return append(dst, m.Key&dataMask, m.Value&dataMask)
}

// PitchBend holds the unsigned 14-bit wheel position. PitchBendCenter means
// no bend.
type PitchBend struct {
	Channel uint8
	Value   uint16
}

func (m PitchBend) Status() byte { return StatusPitchBend | m.Channel&channelMask }

// Signed returns the bend relative to the center, -8192..8191.
func (m PitchBend) Signed() int16 {
	return int16(m.Value&pitchBendMask) - PitchBendCenter
}

func (m PitchBend) String() string {
	return fmt.Sprintf("Channel %d: pitch bend %d (%+d)", m.Channel, m.Value, m.Signed())
}

func (m PitchBend) appendData(dst []byte) []byte {
	return append(dst, byte(m.Value)&dataMask, byte(m.Value>>7)&dataMask)
}

// SystemRealTime is a single byte in 0xF8..0xFF.
type SystemRealTime struct {
	Code byte
}

func (m SystemRealTime) Status() byte { return m.Code | firstRealTime }

func (m SystemRealTime) String() string {
	switch m.Code {
	case TimingClock:
		return "Timing clock"
	case Start:
		return "Start"
	case Continue:
		return "Continue"
	case Stop:
		return "Stop"
	case ActiveSensing:
		return "Active sensing"
	case Reset:
		return "System reset"
	}
	return fmt.Sprintf("Real-time 0x%02x", m.Code)
}

func (m SystemRealTime) appendData(dst []byte) []byte { return dst }

// SystemCommon is a message in 0xF1..0xF7. Only as many data bytes as the
// code defines are meaningful; the rest stay zero.
//
// Only MTCQuarterFrame, SongPosition, SongSelect and TuneRequest are decoded.
// The undefined 0xF4 and 0xF5 codes and EndOfExclusive encode to their bare
// status byte, which a Decoder drops.
type SystemCommon struct {
	Code  byte
	Data1 uint8
	Data2 uint8
}

func (m SystemCommon) Status() byte { return m.Code&0x07 | firstSystem }

// SongPosition returns the 14-bit song position pointer of an 0xF2 message,
// in sixteenth notes.
func (m SystemCommon) SongPosition() uint16 {
	return uint16(m.Data1&dataMask) | uint16(m.Data2&dataMask)<<7
}

func (m SystemCommon) String() string {
	switch m.Code {
	case MTCQuarterFrame:
		return fmt.Sprintf("MTC quarter frame 0x%02x", m.Data1)
	case SongPosition:
		return fmt.Sprintf("Song position %d", m.SongPosition())
	case SongSelect:
		return fmt.Sprintf("Song select %d", m.Data1)
	case TuneRequest:
		return "Tune request"
	}
	return fmt.Sprintf("System common 0x%02x", m.Code)
}

func (m SystemCommon) appendData(dst []byte) []byte {
	n, _ := DataLength(m.Status())
	switch n {
	case 1:
		return append(dst, m.Data1&dataMask)
	case 2:
		return append(dst, m.Data1&dataMask, m.Data2&dataMask)
	}
	return dst
}

// ModWheel splits a 14-bit modulation wheel value into the MSB (CC 1) and
// LSB (CC 33) control changes, in the order they are sent.
func ModWheel(channel uint8, value uint16) [2]ControlChange {
	return [2]ControlChange{
		{Channel: channel, Controller: CCModWheelMSB, Value: uint8(value>>7) & dataMask},
		{Channel: channel, Controller: CCModWheelLSB, Value: uint8(value) & dataMask},
	}
}
