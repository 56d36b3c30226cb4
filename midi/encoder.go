package midi

import (
	"fmt"
	"io"
	"sync"
)

// MaxMessageLen is the longest encoding of any Message.
const MaxMessageLen = 3

// Encode returns the wire bytes for m, always including the status byte.
// Data bytes are masked to 7 bits.
func Encode(m Message) []byte {
	return AppendEncode(make([]byte, 0, MaxMessageLen), m)
}

// AppendEncode appends the wire bytes for m to dst.
func AppendEncode(dst []byte, m Message) []byte {
	return m.appendData(append(dst, m.Status()))
}

// Encoder encodes messages for one output stream.
//
// With RunningStatus set, a channel-voice status byte equal to the previous
// one written is omitted. System common messages cancel the remembered
// status; real-time messages leave it alone. The zero Encoder always writes
// the status byte.
type Encoder struct {
	RunningStatus bool
	last          byte
}

// Encode returns the bytes for m and updates the running status.
func (e *Encoder) Encode(m Message) []byte {
	return e.AppendEncode(make([]byte, 0, MaxMessageLen), m)
}

// AppendEncode appends the bytes for m to dst.
func (e *Encoder) AppendEncode(dst []byte, m Message) []byte {
	status := m.Status()
	switch StatusClass(status) {
	case ClassRealTime:
		return append(dst, status)
	case ClassSystemCommon:
		e.last = 0
		return AppendEncode(dst, m)
	}
	if e.RunningStatus && status == e.last {
		return m.appendData(dst)
	}
	e.last = status
	return AppendEncode(dst, m)
}

// Reset forgets the remembered running status so the next channel message
// carries its status byte.
func (e *Encoder) Reset() { e.last = 0 }

// Observe updates the running status for a raw byte written to the same
// stream by someone else.
func (e *Encoder) Observe(b byte) {
	switch StatusClass(b) {
	case ClassChannelVoice:
		e.last = b
	case ClassSystemCommon:
		e.last = 0
	}
}

// Writer encodes messages onto an io.Writer. Send is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	enc Encoder
	buf [MaxMessageLen]byte
}

// NewWriter returns a Writer. runningStatus enables status byte omission.
func NewWriter(w io.Writer, runningStatus bool) *Writer {
	return &Writer{w: w, enc: Encoder{RunningStatus: runningStatus}}
}

// Send encodes and writes one message.
func (w *Writer) Send(m Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	data := w.enc.AppendEncode(w.buf[:0], m)
	if _, err := w.w.Write(data); err != nil {
		// The receiver may have missed the status byte.
		w.enc.Reset()
		return fmt.Errorf("write %s: %w", m, err)
	}
	return nil
}

// WriteRaw writes bytes that bypass the encoder, keeping the running status
// in step with them.
func (w *Writer) WriteRaw(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range p {
		w.enc.Observe(b)
	}
	if _, err := w.w.Write(p); err != nil {
		w.enc.Reset()
		return err
	}
	return nil
}

// Reset makes the next channel message carry its status byte.
func (w *Writer) Reset() {
	w.mu.Lock()
	w.enc.Reset()
	w.mu.Unlock()
}
