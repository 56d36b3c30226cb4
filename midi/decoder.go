package midi

// State is the reassembly state of one input stream.
type State struct {
	// RunningStatus is the last status byte that still frames incoming data
	// bytes, or 0 when none is standing.
	RunningStatus byte
	// Pending holds the first data byte of a two-data-byte message while
	// HasPending is set.
	Pending    byte
	HasPending bool
	// Expected is the number of data bytes RunningStatus takes: 0, 1 or 2.
	Expected int
}

// Decoder turns a MIDI byte stream into messages.
//
// A Decoder is not safe for concurrent use; callers feeding it from more than
// one goroutine must serialise Feed and Reset themselves.
type Decoder struct {
	state   State
	handler Handler
	dropped uint64
}

// NewDecoder returns a decoder that hands every completed message to h. h may
// be nil when the caller only uses the return value of Feed.
func NewDecoder(h Handler) *Decoder {
	return &Decoder{handler: h}
}

// State returns a copy of the current reassembly state.
func (d *Decoder) State() State { return d.state }

// Dropped returns how many data bytes were discarded because no message could
// use them.
func (d *Decoder) Dropped() uint64 { return d.dropped }

// Reset forgets running status and any half-received message.
func (d *Decoder) Reset() { d.state = State{} }

// Write feeds every byte of p. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.Feed(b)
	}
	return len(p), nil
}

// Feed consumes one byte. When the byte completes a message, the message is
// dispatched to the handler and returned with ok set.
func (d *Decoder) Feed(b byte) (msg Message, ok bool) {
	switch StatusClass(b) {
	case ClassRealTime:
		// Real-time bytes may sit between the data bytes of another message
		// and must leave its reassembly untouched.
		return d.emit(SystemRealTime{Code: b})
	case ClassSystemCommon:
		d.setStatus(b)
		if b == TuneRequest {
			d.state = State{}
			return d.emit(SystemCommon{Code: b})
		}
		return nil, false
	case ClassChannelVoice:
		d.setStatus(b)
		return nil, false
	}
	return d.data(b)
}

func (d *Decoder) setStatus(b byte) {
	n, _ := DataLength(b)
	d.state = State{RunningStatus: b, Expected: n}
}

func (d *Decoder) data(b byte) (Message, bool) {
	status := d.state.RunningStatus
	if status == 0 {
		d.dropped++
		return nil, false
	}
	n, ok := DataLength(status)
	if !ok || n == 0 {
		d.dropped++
		return nil, false
	}

	var d1, d2 byte
	if n == 2 {
		if !d.state.HasPending {
			d.state.Pending = b
			d.state.HasPending = true
			return nil, false
		}
		d1, d2 = d.state.Pending, b
		d.state.Pending = 0
		d.state.HasPending = false
	} else {
		d1 = b
	}

	ch := status & channelMask
	var msg Message
	switch status & classMask {
	case StatusNoteOff:
		msg = NoteOff{Channel: ch, Key: d1, Velocity: d2}
	case StatusNoteOn:
		msg = NoteOn{Channel: ch, Key: d1, Velocity: d2}
	case StatusPolyAftertouch:
		msg = PolyAftertouch{Channel: ch, Key: d1, Value: d2}
	case StatusControlChange:
		msg = ControlChange{Channel: ch, Controller: d1, Value: d2}
	case StatusProgramChange:
		msg = ProgramChange{Channel: ch, Program: d1}
	case StatusChannelAftertouch:
		msg = ChannelAftertouch{Channel: ch, Value: d1}
	case StatusPitchBend:
		msg = PitchBend{Channel: ch, Value: uint16(d1) | uint16(d2)<<7}
	default:
		// System common is not subject to running status: a further data
		// byte without a new status is ignored.
		msg = SystemCommon{Code: status, Data1: d1, Data2: d2}
		d.state = State{}
	}
	return d.emit(msg)
}

func (d *Decoder) emit(msg Message) (Message, bool) {
	if d.handler != nil {
		d.handler.HandleMessage(msg)
	}
	return msg, true
}
