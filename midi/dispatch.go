package midi

// Handler receives decoded messages. HandleMessage runs synchronously inside
// Decoder.Feed and must not block.
type Handler interface {
	HandleMessage(msg Message)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(msg Message)

func (f HandlerFunc) HandleMessage(msg Message) { f(msg) }

// HandlerFuncs routes each message kind to its own callback. Nil callbacks
// are skipped. OnMessage, when set, sees every message after the per-kind
// callback.
type HandlerFuncs struct {
	OnNoteOn            func(NoteOn)
	OnNoteOff           func(NoteOff)
	OnControlChange     func(ControlChange)
	OnPitchBend         func(PitchBend)
	OnRealTime          func(SystemRealTime)
	OnProgramChange     func(ProgramChange)
	OnChannelAftertouch func(ChannelAftertouch)
	OnPolyAftertouch    func(PolyAftertouch)
	OnSystemCommon      func(SystemCommon)
	OnMessage           func(Message)
}

func (h *HandlerFuncs) HandleMessage(msg Message) {
	switch m := msg.(type) {
	case NoteOn:
		if h.OnNoteOn != nil {
			h.OnNoteOn(m)
		}
	case NoteOff:
		if h.OnNoteOff != nil {
			h.OnNoteOff(m)
		}
	case ControlChange:
		if h.OnControlChange != nil {
			h.OnControlChange(m)
		}
	case PitchBend:
		if h.OnPitchBend != nil {
			h.OnPitchBend(m)
		}
	case SystemRealTime:
		if h.OnRealTime != nil {
			h.OnRealTime(m)
		}
	case ProgramChange:
		if h.OnProgramChange != nil {
			h.OnProgramChange(m)
		}
	case ChannelAftertouch:
		if h.OnChannelAftertouch != nil {
			h.OnChannelAftertouch(m)
		}
	case PolyAftertouch:
		if h.OnPolyAftertouch != nil {
			h.OnPolyAftertouch(m)
		}
	case SystemCommon:
		if h.OnSystemCommon != nil {
			h.OnSystemCommon(m)
		}
	}
	if h.OnMessage != nil {
		h.OnMessage(msg)
	}
}

// Handlers fans a message out to several handlers in order.
type Handlers []Handler

func (hs Handlers) HandleMessage(msg Message) {
	for _, h := range hs {
		h.HandleMessage(msg)
	}
}
