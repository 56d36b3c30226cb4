package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/chase3718/serial-midi/midi"
)

func TestFilterPorts(t *testing.T) {
	names := []string{"Midi Through:Midi Through Port-0 14:0", "USB MIDI Interface 20:0", "Dummy Out", "Keystation 88"}
	got := filterPorts(names)
	want := []string{"USB MIDI Interface 20:0", "Keystation 88"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterPorts = %v, want %v", got, want)
	}
}

func TestPickPort(t *testing.T) {
	tests := []struct {
		names   []string
		pattern string
		want    string
		ok      bool
	}{
		{[]string{"USB MIDI Interface", "Keystation 88"}, "keystation", "Keystation 88", true},
		{[]string{"USB MIDI Interface", "Keystation 88"}, "usb", "USB MIDI Interface", true},
		{[]string{"USB MIDI Interface"}, "launchpad", "", false},
		{[]string{"USB MIDI Interface"}, "*", "USB MIDI Interface", true},
		{[]string{"USB MIDI Interface", "Keystation 88"}, "*", "", false},
		{nil, "*", "", false},
	}
	for _, tt := range tests {
		got, ok := pickPort(tt.names, tt.pattern)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pickPort(%v, %q) = %q, %v; want %q, %v", tt.names, tt.pattern, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewHandlersForwardsEveryMessage(t *testing.T) {
	var forwarded []midi.Message
	h := newHandlers(&midi.ClockTracker{}, func(m midi.Message) { forwarded = append(forwarded, m) })
	d := midi.NewDecoder(h)
	d.Write([]byte{0x90, 0x40, 0x7F, 0xF8, 0xE0, 0x00, 0x40, 0xF6})
	want := []midi.Message{
		midi.NoteOn{Channel: 0, Key: 0x40, Velocity: 0x7F},
		midi.SystemRealTime{Code: midi.TimingClock},
		midi.PitchBend{Channel: 0, Value: midi.PitchBendCenter},
		midi.SystemCommon{Code: midi.TuneRequest},
	}
	if !reflect.DeepEqual(forwarded, want) {
		t.Errorf("forwarded %v, want %v", forwarded, want)
	}
}

func TestNewHandlersTracksTempo(t *testing.T) {
	now := time.Unix(0, 0)
	clock := &midi.ClockTracker{Now: func() time.Time { return now }}
	d := midi.NewDecoder(newHandlers(clock, nil))
	for i := 0; i <= midi.ClocksPerQuarter; i++ {
		d.Feed(0xF8)
		now = now.Add(250 * time.Millisecond / midi.ClocksPerQuarter)
	}
	if bpm := clock.BPM(); bpm < 239.9 || bpm > 240.1 {
		t.Errorf("BPM() = %f, want 240", bpm)
	}
}
