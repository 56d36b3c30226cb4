package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// ToGomidi converts m to a gomidi message, always with its status byte.
func ToGomidi(m Message) gomidi.Message {
	return gomidi.Message(Encode(m))
}

// FromGomidi converts a complete gomidi message. ok is false for messages the
// codec does not model, such as SysEx.
func FromGomidi(msg gomidi.Message) (Message, bool) {
	var ch, a, b uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteOn(&ch, &a, &b):
		return NoteOn{Channel: ch, Key: a, Velocity: b}, true
	case msg.GetNoteOff(&ch, &a, &b):
		// gomidi reports a note on with velocity 0 as a note off.
		if len(msg) > 0 && msg[0]&classMask == StatusNoteOn {
			return NoteOn{Channel: ch, Key: a}, true
		}
		return NoteOff{Channel: ch, Key: a, Velocity: b}, true
	case msg.GetControlChange(&ch, &a, &b):
		return ControlChange{Channel: ch, Controller: a, Value: b}, true
	case msg.GetProgramChange(&ch, &a):
		return ProgramChange{Channel: ch, Program: a}, true
	case msg.GetAfterTouch(&ch, &a):
		return ChannelAftertouch{Channel: ch, Value: a}, true
	case msg.GetPolyAfterTouch(&ch, &a, &b):
		return PolyAftertouch{Channel: ch, Key: a, Value: b}, true
	case msg.GetPitchBend(&ch, &rel, &abs):
		return PitchBend{Channel: ch, Value: abs}, true
	case msg.GetSPP(&abs):
		return SystemCommon{Code: SongPosition, Data1: uint8(abs) & dataMask, Data2: uint8(abs>>7) & dataMask}, true
	case msg.GetSongSelect(&a):
		return SystemCommon{Code: SongSelect, Data1: a}, true
	}

	// Remaining single messages go through a decoder of their own.
	data := []byte(msg)
	if len(data) == 0 || len(data) > MaxMessageLen {
		return nil, false
	}
	var last Message
	d := NewDecoder(nil)
	for _, c := range data {
		if m, ok := d.Feed(c); ok {
			last = m
		}
	}
	return last, last != nil
}
