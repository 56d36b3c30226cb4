package main

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/serial-midi/midi"
)

// EXCLUDED_PATTERNS: virtual/system ports that are never auto-connected.
var EXCLUDED_PATTERNS = []string{"Midi Through", "Through Port", "Dummy"}

const hostRescanInterval = 1000 * time.Millisecond

// HostBridge connects the serial line to the host's MIDI ports through
// rtmidi. Messages arriving on the host input matching inPattern are handed
// to onMessage; Forward sends serial traffic to the host output matching
// outPattern. Both ports are hot-plugged: Tick reconnects them when they
// appear and drops them when they vanish.
type HostBridge struct {
	mu  sync.Mutex
	drv *rtmididrv.Driver

	inPattern  string
	inPort     drivers.In
	inName     string
	stopFn     func()
	outPattern string
	outPort    drivers.Out
	outName    string
	send       func(gomidi.Message) error

	lastRescanAt time.Time
	onMessage    func(midi.Message)
}

// NewHostBridge initialises the rtmidi driver. An empty pattern disables that
// direction. Call Close() when done.
func NewHostBridge(inPattern, outPattern string, onMessage func(midi.Message)) (*HostBridge, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &HostBridge{
		drv:        drv,
		inPattern:  inPattern,
		outPattern: outPattern,
		onMessage:  onMessage,
	}, nil
}

// Close shuts down both host connections and the rtmidi driver.
func (h *HostBridge) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeIn()
	h.closeOut()
	h.drv.Close()
}

// Forward sends a message decoded from the serial line to the host output.
// It is a no-op while no output is connected.
func (h *HostBridge) Forward(m midi.Message) {
	h.mu.Lock()
	send := h.send
	name := h.outName
	h.mu.Unlock()
	if send == nil {
		return
	}
	if err := send(midi.ToGomidi(m)); err != nil {
		logger.Warn("host: forward failed", "device", name, "msg", m.String(), "err", err)
	}
}

// Tick should be called on a regular interval from the main loop.
func (h *HostBridge) Tick() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	if !h.lastRescanAt.IsZero() && now.Sub(h.lastRescanAt) < hostRescanInterval {
		return
	}
	h.lastRescanAt = now

	if h.inPattern != "" {
		h.tickIn()
	}
	if h.outPattern != "" {
		h.tickOut()
	}
}

// listHostPorts returns the names of the host's MIDI inputs and outputs.
func listHostPorts() (ins, outs []string, err error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("rtmididrv: %w", err)
	}
	defer drv.Close()
	inPorts, err := drv.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("list inputs: %w", err)
	}
	for _, in := range inPorts {
		ins = append(ins, in.String())
	}
	outPorts, err := drv.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	for _, out := range outPorts {
		outs = append(outs, out.String())
	}
	return ins, outs, nil
}

// -------------------- internal --------------------

func (h *HostBridge) tickIn() {
	ins, err := h.drv.Ins()
	if err != nil {
		logger.Error("host: list inputs failed", "err", err)
		return
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	names = filterPorts(names)

	if h.inPort != nil {
		if slices.Contains(names, h.inName) {
			return
		}
		logger.Warn("host: input disappeared", "device", h.inName)
		h.closeIn()
		h.lastRescanAt = time.Time{}
		return
	}

	cand, ok := pickPort(names, h.inPattern)
	if !ok {
		return
	}
	for _, in := range ins {
		if in.String() == cand {
			if err := h.openIn(in); err != nil {
				logger.Error("host: input connect failed", "device", cand, "err", err)
			}
			return
		}
	}
}

func (h *HostBridge) tickOut() {
	outs, err := h.drv.Outs()
	if err != nil {
		logger.Error("host: list outputs failed", "err", err)
		return
	}
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	names = filterPorts(names)

	if h.outPort != nil {
		if slices.Contains(names, h.outName) {
			return
		}
		logger.Warn("host: output disappeared", "device", h.outName)
		h.closeOut()
		h.lastRescanAt = time.Time{}
		return
	}

	cand, ok := pickPort(names, h.outPattern)
	if !ok {
		return
	}
	for _, out := range outs {
		if out.String() == cand {
			if err := h.openOut(out); err != nil {
				logger.Error("host: output connect failed", "device", cand, "err", err)
			}
			return
		}
	}
}

func (h *HostBridge) openIn(in drivers.In) error {
	name := in.String()
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		m, ok := midi.FromGomidi(msg)
		if !ok {
			logger.Debug("host: unhandled message", "msg", msg.String())
			return
		}
		h.onMessage(m)
	}, gomidi.HandleError(func(listenErr error) {
		logger.Warn("host: listener error", "device", name, "err", listenErr)
		// Must not call closeIn from within the listener goroutine.
		go func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.inPort != nil && h.inName == name {
				h.closeIn()
				h.lastRescanAt = time.Time{}
			}
		}()
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}
	h.inPort = in
	h.inName = name
	h.stopFn = stop
	logger.Info("host: input connected", "device", name)
	return nil
}

func (h *HostBridge) openOut(out drivers.Out) error {
	name := out.String()
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	h.outPort = out
	h.outName = name
	h.send = send
	logger.Info("host: output connected", "device", name)
	return nil
}

func (h *HostBridge) closeIn() {
	if h.stopFn != nil {
		h.stopFn()
		h.stopFn = nil
	}
	if h.inPort != nil {
		_ = h.inPort.Close()
		h.inPort = nil
	}
	h.inName = ""
}

func (h *HostBridge) closeOut() {
	if h.outPort != nil {
		_ = h.outPort.Close()
		h.outPort = nil
	}
	h.send = nil
	h.outName = ""
}

// -------------------- utility --------------------

// filterPorts drops virtual/system ports.
func filterPorts(names []string) []string {
	var out []string
	for _, name := range names {
		excluded := false
		for _, pat := range EXCLUDED_PATTERNS {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			logger.Debug("host: port excluded", "device", name)
			continue
		}
		out = append(out, name)
	}
	return out
}

// pickPort returns the first port matching pattern. The pattern "*" picks
// the only port when exactly one is present.
func pickPort(names []string, pattern string) (string, bool) {
	if pattern == "*" {
		if len(names) == 1 {
			return names[0], true
		}
		return "", false
	}
	for _, name := range names {
		if containsCI(name, pattern) {
			return name, true
		}
	}
	return "", false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
