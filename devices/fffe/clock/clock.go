// Package clock implements a periodic timer which raises host interrupts.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/devices"
)

// IntFunc queues a host interrupt. Returns false if it was dropped.
type IntFunc func() bool

// Device fires an interrupt every interval while it is running.
type Device struct {
	interval time.Duration
	intFunc  IntFunc
	endPoll  chan struct{}
	wg       sync.WaitGroup
	ticks    atomic.Uint64
	dropped  atomic.Uint64
}

var _ devices.Device = &Device{}

// New creates a clock which calls f once per interval.
func New(interval time.Duration, f IntFunc) *Device {
	return &Device{
		interval: interval,
		intFunc:  f,
	}
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.ClockID
}

// Startup starts the timer.
func (d *Device) Startup() error {
	if d.interval <= 0 {
		return errors.Errorf("invalid timer interval %v", d.interval)
	}
	if d.endPoll != nil {
		return errors.New("clock is already running")
	}

	d.ticks.Store(0)
	d.dropped.Store(0)
	d.endPoll = make(chan struct{})
	d.wg.Add(1)
	go d.poll(d.endPoll)
	return nil
}

// Shutdown stops the timer and waits for it to exit.
func (d *Device) Shutdown() error {
	if d.endPoll == nil {
		return nil
	}
	close(d.endPoll)
	d.wg.Wait()
	d.endPoll = nil
	return nil
}

// Ticks returns the number of interrupts delivered since startup.
func (d *Device) Ticks() uint64 {
	return d.ticks.Load()
}

// Dropped returns the number of interrupts the processor could not queue.
func (d *Device) Dropped() uint64 {
	return d.dropped.Load()
}

// poll triggers periodic interrupts until end is closed.
func (d *Device) poll(end <-chan struct{}) {
	defer d.wg.Done()

	timer := time.NewTicker(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-end:
			return
		case <-timer.C:
			if d.intFunc() {
				d.ticks.Add(1)
			} else {
				d.dropped.Add(1)
			}
		}
	}
}
