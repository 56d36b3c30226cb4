package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chase3718/serial-midi/midi"
	"github.com/chase3718/serial-midi/serialmidi"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Handlers --------------------

// newHandlers logs every decoded message kind and reports tempo from the
// timing clock. forward, when non-nil, receives every message as well.
func newHandlers(clock *midi.ClockTracker, forward func(midi.Message)) *midi.HandlerFuncs {
	return &midi.HandlerFuncs{
		OnNoteOn: func(m midi.NoteOn) {
			logger.Info("midi: note on", "ch", m.Channel, "key", m.Key, "vel", m.Velocity)
		},
		OnNoteOff: func(m midi.NoteOff) {
			logger.Info("midi: note off", "ch", m.Channel, "key", m.Key, "vel", m.Velocity)
		},
		OnControlChange: func(m midi.ControlChange) {
			logger.Info("midi: control change", "ch", m.Channel, "controller", m.Controller, "value", m.Value)
		},
		OnPitchBend: func(m midi.PitchBend) {
			logger.Info("midi: pitch bend", "ch", m.Channel, "value", m.Value, "offset", m.Signed())
		},
		OnRealTime: func(m midi.SystemRealTime) {
			if bpm, ok := clock.Tick(m); ok {
				logger.Info("midi: tempo", "bpm", fmt.Sprintf("%.1f", bpm))
			}
			if m.Code != midi.TimingClock && m.Code != midi.ActiveSensing {
				logger.Info("midi: real-time", "msg", m.String())
			}
		},
		OnSystemCommon: func(m midi.SystemCommon) {
			logger.Info("midi: system common", "msg", m.String())
		},
		OnMessage: func(m midi.Message) {
			logger.Debug("midi: message", "msg", m.String(), "bytes", fmt.Sprintf("% X", midi.Encode(m)))
			if forward != nil {
				forward(m)
			}
		},
	}
}

// -------------------- Main --------------------

func listPorts() int {
	ports, err := serialmidi.ListPorts()
	if err != nil {
		logger.Error("serial ports unavailable", "err", err)
		return 1
	}
	fmt.Println("=== Serial ports ===")
	for i, p := range ports {
		fmt.Printf("  %d: %s\n", i, p)
	}

	ins, outs, err := listHostPorts()
	if err != nil {
		logger.Error("host ports unavailable", "err", err)
		return 1
	}
	fmt.Println("\n=== Host MIDI inputs ===")
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== Host MIDI outputs ===")
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return 0
}

func run() int {
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	serialDev := flag.String("serial", "/dev/ttyUSB0", "serial port device")
	baud := flag.Int("baud", serialmidi.BaudRate, "serial baud rate")
	through := flag.Bool("through", false, "echo received messages back to the serial output")
	runningStatus := flag.Bool("running-status", false, "omit repeated status bytes on output")
	hostIn := flag.String("host-in", "", "host MIDI input port pattern sent to the serial line (\"*\" = only port)")
	hostOut := flag.String("host-out", "", "host MIDI output port pattern receiving serial traffic (\"*\" = only port)")
	list := flag.Bool("list", false, "list serial and host MIDI ports and exit")
	flag.Parse()

	initLogger(*debug)
	if *list {
		return listPorts()
	}
	logger.Info("serialmidi starting",
		"serial", *serialDev,
		"baud", *baud,
		"debug", *debug,
		"through", *through,
		"running_status", *runningStatus,
		"host_in", *hostIn,
		"host_out", *hostOut,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bridge *HostBridge
	var port *serialmidi.Port
	if *hostIn != "" || *hostOut != "" {
		var err error
		bridge, err = NewHostBridge(*hostIn, *hostOut, func(m midi.Message) {
			if port == nil {
				return
			}
			if err := port.Send(m); err != nil {
				logger.Warn("serial: send failed", "msg", m.String(), "err", err)
			}
		})
		if err != nil {
			logger.Error("host bridge init failed", "err", err)
			return 1
		}
		defer bridge.Close()
	}

	var forward func(midi.Message)
	if bridge != nil {
		forward = bridge.Forward
	}
	handlers := newHandlers(&midi.ClockTracker{}, forward)

	p, err := serialmidi.Open(*serialDev, *baud,
		serialmidi.WithLogger(logger),
		serialmidi.WithHandler(handlers),
		serialmidi.WithThrough(*through),
		serialmidi.WithRunningStatus(*runningStatus),
	)
	if err != nil {
		logger.Error("serial: failed to open port", "device", *serialDev, "baud", *baud, "err", err)
		return 1
	}
	port = p
	defer port.Close()

	errc := make(chan error, 1)
	go func() { errc <- port.Run(ctx) }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	if bridge != nil {
		bridge.Tick()
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "dropped_bytes", port.Dropped())
			return 0
		case err := <-errc:
			if err != nil {
				logger.Error("serial: reader stopped", "err", err)
				return 1
			}
			logger.Info("serial: stream ended", "dropped_bytes", port.Dropped())
			return 0
		case <-ticker.C:
			if bridge != nil {
				bridge.Tick()
			}
		}
	}
}

func main() {
	os.Exit(run())
}
