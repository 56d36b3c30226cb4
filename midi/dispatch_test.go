package midi

import (
	"reflect"
	"testing"
)

func TestHandlerFuncsRoutesEachKind(t *testing.T) {
	var calls []string
	h := &HandlerFuncs{
		OnNoteOn:        func(NoteOn) { calls = append(calls, "note on") },
		OnNoteOff:       func(NoteOff) { calls = append(calls, "note off") },
		OnControlChange: func(ControlChange) { calls = append(calls, "cc") },
		OnPitchBend:     func(PitchBend) { calls = append(calls, "pitch bend") },
		OnRealTime:      func(SystemRealTime) { calls = append(calls, "real-time") },
		OnSystemCommon:  func(SystemCommon) { calls = append(calls, "common") },
	}
	d := NewDecoder(h)
	d.Write([]byte{
		0x90, 0x40, 0x7F,
		0x80, 0x40, 0x00,
		0xB0, 0x01, 0x02,
		0xE0, 0x00, 0x40,
		0xF8,
		0xF6,
		0xC0, 0x01, // no callback registered
	})
	want := []string{"note on", "note off", "cc", "pitch bend", "real-time", "common"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestHandlerFuncsCatchAll(t *testing.T) {
	var kinds, all int
	h := &HandlerFuncs{
		OnProgramChange:     func(ProgramChange) { kinds++ },
		OnChannelAftertouch: func(ChannelAftertouch) { kinds++ },
		OnPolyAftertouch:    func(PolyAftertouch) { kinds++ },
		OnMessage:           func(Message) { all++ },
	}
	d := NewDecoder(h)
	d.Write([]byte{0xC0, 0x01, 0xD0, 0x02, 0xA0, 0x03, 0x04, 0x90, 0x40, 0x7F})
	if kinds != 3 {
		t.Errorf("per-kind callbacks ran %d times, want 3", kinds)
	}
	if all != 4 {
		t.Errorf("OnMessage ran %d times, want 4", all)
	}
}

func TestHandlersFanOut(t *testing.T) {
	var a, b []Message
	hs := Handlers{
		HandlerFunc(func(m Message) { a = append(a, m) }),
		HandlerFunc(func(m Message) { b = append(b, m) }),
	}
	NewDecoder(hs).Write([]byte{0xFA, 0xFC})
	if len(a) != 2 || len(b) != 2 {
		t.Errorf("fan-out delivered %d and %d messages, want 2 each", len(a), len(b))
	}
}
