// Package serialmidi runs the MIDI codec over a serial line.
package serialmidi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/chase3718/serial-midi/midi"
)

// BaudRate is the MIDI 1.0 line speed.
const BaudRate = 31250

// Port reads MIDI bytes from a serial line into a decoder and writes encoded
// messages back to it.
type Port struct {
	rw      io.ReadWriter
	closer  io.Closer
	logger  *slog.Logger
	through bool

	mu  sync.Mutex // guards dec
	dec *midi.Decoder
	out *midi.Writer
}

// Option configures a Port.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	handler       midi.Handler
	through       bool
	runningStatus bool
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithHandler sets the handler decoded messages are dispatched to.
func WithHandler(h midi.Handler) Option {
	return func(c *config) { c.handler = h }
}

// WithThrough echoes every received message to the output, like a hardware
// MIDI THRU jack. Messages are echoed once complete, so a Send from another
// goroutine never lands between the bytes of an echoed message. Bytes the
// decoder drops are not echoed.
func WithThrough(on bool) Option {
	return func(c *config) { c.through = on }
}

// WithRunningStatus omits repeated channel status bytes on output.
func WithRunningStatus(on bool) Option {
	return func(c *config) { c.runningStatus = on }
}

// Open opens the named serial device at the given baud rate, 8-N-1.
func Open(name string, baud int, opts ...Option) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	sp, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	p := New(sp, opts...)
	p.logger.Info("serial: port opened", "device", name, "baud", baud)
	return p, nil
}

// New wraps an already open byte stream. If rw is an io.Closer, Close closes
// it.
func New(rw io.ReadWriter, opts ...Option) *Port {
	c := config{logger: slog.Default()}
	for _, o := range opts {
		o(&c)
	}
	p := &Port{
		rw:      rw,
		logger:  c.logger,
		through: c.through,
		dec:     midi.NewDecoder(c.handler),
		out:     midi.NewWriter(rw, c.runningStatus),
	}
	if cl, ok := rw.(io.Closer); ok {
		p.closer = cl
	}
	return p
}

// ListPorts returns the serial devices present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: list ports: %w", err)
	}
	return ports, nil
}

// ReadByte blocks until one byte arrives.
func (p *Port) ReadByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := p.rw.Read(buf[:])
		if n == 1 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// WriteByte writes one raw byte. Raw bytes and Send share one output and the
// running status it carries.
func (p *Port) WriteByte(b byte) error {
	return p.out.WriteRaw([]byte{b})
}

// Feed pushes one byte through the decoder, dispatching any completed
// message to the handler.
func (p *Port) Feed(b byte) (midi.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dec.Feed(b)
}

// Reset drops running status and any half-received message.
func (p *Port) Reset() {
	p.mu.Lock()
	p.dec.Reset()
	p.mu.Unlock()
	p.out.Reset()
	p.logger.Debug("serial: decoder reset")
}

// Dropped returns how many received data bytes were discarded.
func (p *Port) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dec.Dropped()
}

// Send encodes m and writes it to the line.
func (p *Port) Send(m midi.Message) error {
	if err := p.out.Send(m); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	p.logger.Debug("serial: message sent", "msg", m.String())
	return nil
}

// Run reads and decodes bytes until ctx is done or the stream ends. It
// returns nil on cancellation and on io.EOF. Run does not return while a
// read is blocked; close the port to unblock it.
func (p *Port) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		b, err := p.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("serial: read: %w", err)
		}
		m, ok := p.Feed(b)
		if ok && p.through {
			if err := p.out.Send(m); err != nil {
				p.logger.Warn("serial: through write failed", "msg", m.String(), "err", err)
			}
		}
	}
}

// Close closes the underlying device.
func (p *Port) Close() error {
	p.logger.Info("serial: closing port")
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
