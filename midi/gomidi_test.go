package midi

import (
	"bytes"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestToGomidiMatchesGomidiConstructors(t *testing.T) {
	tests := []struct {
		msg  Message
		want gomidi.Message
	}{
		{NoteOn{Channel: 1, Key: 60, Velocity: 100}, gomidi.NoteOn(1, 60, 100)},
		{NoteOff{Channel: 2, Key: 61, Velocity: 10}, gomidi.NoteOffVelocity(2, 61, 10)},
		{ControlChange{Channel: 3, Controller: 7, Value: 90}, gomidi.ControlChange(3, 7, 90)},
		{ProgramChange{Channel: 4, Program: 12}, gomidi.ProgramChange(4, 12)},
		{ChannelAftertouch{Channel: 5, Value: 33}, gomidi.AfterTouch(5, 33)},
		{PolyAftertouch{Channel: 6, Key: 64, Value: 44}, gomidi.PolyAfterTouch(6, 64, 44)},
		{PitchBend{Channel: 0, Value: PitchBendCenter}, gomidi.Pitchbend(0, 0)},
	}
	for _, tt := range tests {
		got := ToGomidi(tt.msg)
		if !bytes.Equal([]byte(got), []byte(tt.want)) {
			t.Errorf("ToGomidi(%v) = % X, want % X", tt.msg, []byte(got), []byte(tt.want))
		}
	}
}

func TestFromGomidi(t *testing.T) {
	tests := []struct {
		in   gomidi.Message
		want Message
	}{
		{gomidi.NoteOn(1, 60, 100), NoteOn{Channel: 1, Key: 60, Velocity: 100}},
		{gomidi.NoteOffVelocity(2, 61, 10), NoteOff{Channel: 2, Key: 61, Velocity: 10}},
		{gomidi.ControlChange(3, 7, 90), ControlChange{Channel: 3, Controller: 7, Value: 90}},
		{gomidi.ProgramChange(4, 12), ProgramChange{Channel: 4, Program: 12}},
		{gomidi.AfterTouch(5, 33), ChannelAftertouch{Channel: 5, Value: 33}},
		{gomidi.PolyAfterTouch(6, 64, 44), PolyAftertouch{Channel: 6, Key: 64, Value: 44}},
		{gomidi.Message{0x90, 0x40, 0x00}, NoteOn{Channel: 0, Key: 0x40}},
		{gomidi.Message{0xE0, 0x00, 0x40}, PitchBend{Channel: 0, Value: PitchBendCenter}},
		{gomidi.Message{0xF2, 0x34, 0x12}, SystemCommon{Code: SongPosition, Data1: 0x34, Data2: 0x12}},
		{gomidi.Message{0xF3, 0x05}, SystemCommon{Code: SongSelect, Data1: 5}},
		{gomidi.Message{0xF6}, SystemCommon{Code: TuneRequest}},
		{gomidi.Message{0xF8}, SystemRealTime{Code: TimingClock}},
		{gomidi.Message{0xFA}, SystemRealTime{Code: Start}},
	}
	for _, tt := range tests {
		got, ok := FromGomidi(tt.in)
		if !ok {
			t.Errorf("FromGomidi(% X) not converted", []byte(tt.in))
			continue
		}
		if got != tt.want {
			t.Errorf("FromGomidi(% X) = %#v, want %#v", []byte(tt.in), got, tt.want)
		}
	}
}

func TestFromGomidiRejectsSysEx(t *testing.T) {
	if m, ok := FromGomidi(gomidi.Message{0xF0, 0x7E, 0xF7}); ok {
		t.Errorf("SysEx converted to %v", m)
	}
	if m, ok := FromGomidi(nil); ok {
		t.Errorf("empty message converted to %v", m)
	}
}

func TestGomidiRoundTrip(t *testing.T) {
	for _, m := range allKinds {
		got, ok := FromGomidi(ToGomidi(m))
		if !ok || got != m {
			t.Errorf("FromGomidi(ToGomidi(%#v)) = %#v, %v", m, got, ok)
		}
	}
}
