// Package vm runs programs on a VCPU with its peripherals attached.
package vm

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hexaflex/vcpu/devices/fffe/clock"
	"github.com/hexaflex/vcpu/devices/fffe/console"
	"github.com/hexaflex/vcpu/devices/fffe/cpu"
	"github.com/hexaflex/vcpu/image"
)

// DefaultCheckInterval is the number of steps between context checks.
const DefaultCheckInterval = 1024

// Config defines machine configuration.
type Config struct {
	Input         io.Reader     // Console input. Nil disconnects the console.
	Output        io.Writer     // Console output.
	Trace         cpu.TraceFunc // Optional debug trace handler.
	CheckInterval int           // Steps between context checks.
	Timer         time.Duration // Host interrupt period. Zero disables the clock.
}

// Machine controls the execution of a CPU.
type Machine struct {
	cpu        *cpu.CPU
	clock      *clock.Device
	config     Config
	start      atomic.Int64 // Start of the current run, in unix nanoseconds.
	elapsed    atomic.Int64 // Duration of the last finished run.
	cycleCount atomic.Uint64
	running    atomic.Bool
}

// Load reads a program image from r and creates a machine for it.
func Load(r io.Reader, config Config) (*Machine, error) {
	var img image.Image
	if err := img.Load(r); err != nil {
		return nil, errors.Wrap(err, "load image")
	}
	return New(&img, config)
}

// New creates a machine for the given program image.
func New(img *image.Image, config Config) (*Machine, error) {
	c, err := cpu.New(img, config.Trace)
	if err != nil {
		return nil, err
	}

	if config.Input != nil {
		out := config.Output
		if out == nil {
			out = io.Discard
		}
		c.Connect(console.New(config.Input, out))
	}

	m := &Machine{cpu: c}
	if config.Timer > 0 {
		m.clock = clock.New(config.Timer, c.Interrupt)
		c.Connect(m.clock)
	}

	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultCheckInterval
	}

	m.config = config
	return m, nil
}

// CPU returns the machine's processor.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Clock returns the interrupt timer, or nil if none is connected.
func (m *Machine) Clock() *clock.Device {
	return m.clock
}

// Running returns true if the machine is currently running.
func (m *Machine) Running() bool {
	return m.running.Load()
}

// Cycles returns the number of steps taken by the current or last run.
func (m *Machine) Cycles() uint64 {
	return m.cycleCount.Load()
}

// Elapsed returns the duration of the current or last run.
func (m *Machine) Elapsed() time.Duration {
	if m.running.Load() {
		return time.Since(time.Unix(0, m.start.Load()))
	}
	return time.Duration(m.elapsed.Load())
}

// Frequency returns the clock frequency of the current or last run in herz.
func (m *Machine) Frequency() float64 {
	d := m.Elapsed()
	if d <= 0 {
		return 0
	}
	return float64(m.Cycles()) / d.Seconds()
}

// Interrupt queues a host interrupt on the processor.
// Safe to call from any goroutine.
func (m *Machine) Interrupt() bool {
	return m.cpu.Interrupt()
}

// Run starts the program and steps it until it halts, faults or ctx is
// done. Returns nil on a clean halt.
func (m *Machine) Run(ctx context.Context) error {
	if err := m.cpu.Startup(); err != nil {
		return err
	}
	defer m.cpu.Shutdown()

	m.start.Store(time.Now().UnixNano())
	m.cycleCount.Store(0)
	m.running.Store(true)
	defer m.stop()

	for {
		for i := 0; i < m.config.CheckInterval; i++ {
			if err := m.Step(); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			log.Println(m.cpu.ID(), "stopped:", err)
			return err
		}
	}
}

// Step performs a single execution step.
func (m *Machine) Step() error {
	m.cycleCount.Add(1)
	return m.cpu.Step()
}

// stop marks the end of a run.
func (m *Machine) stop() {
	m.elapsed.Store(int64(time.Since(time.Unix(0, m.start.Load()))))
	m.running.Store(false)
}

// RunAll runs the given machines concurrently. The first one to fail
// stops the others; its error is returned.
func RunAll(ctx context.Context, machines ...*Machine) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range machines {
		m := m
		g.Go(func() error {
			return m.Run(ctx)
		})
	}
	return g.Wait()
}
