package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/arch"
	"github.com/hexaflex/vcpu/devices/fffe/cpu"
	"github.com/hexaflex/vcpu/image"
	"github.com/hexaflex/vcpu/vm"
)

func main() {
	config := parseArgs()

	if !config.Verbose {
		log.SetOutput(io.Discard)
	}

	var err error
	if config.DumpImage {
		err = dumpImage(config)
	} else {
		err = run(config)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads the image and runs it until it halts or faults.
//
// The first interrupt from the terminal is handed to the program as a
// host interrupt. A second one stops the machine.
func run(c *Config) error {
	fd, err := os.Open(c.Image)
	if err != nil {
		return err
	}
	defer fd.Close()

	var trace cpu.TraceFunc
	if c.PrintTrace {
		trace = printTrace
	}

	m, err := vm.Load(fd, vm.Config{
		Input:  os.Stdin,
		Output: os.Stdout,
		Trace:  trace,
		Timer:  c.Timer,
	})
	if err != nil {
		return errors.Wrap(err, c.Image)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
			return
		}

		if !m.Interrupt() {
			cancel()
			return
		}

		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()

	err = m.Run(ctx)

	if c.PrintStats {
		fmt.Fprintf(os.Stderr, "%d cycles in %v (%s)\n", m.Cycles(), m.Elapsed(), prettyFrequency(m.Frequency()))
	}
	return err
}

// dumpImage prints a human readable version of the image to stdout.
func dumpImage(c *Config) error {
	fd, err := os.Open(c.Image)
	if err != nil {
		return err
	}
	defer fd.Close()

	var img image.Image
	if err := img.Load(fd); err != nil {
		return errors.Wrap(err, c.Image)
	}

	fmt.Println(img.String())
	return nil
}

// printTrace writes one line of trace data per executed instruction.
func printTrace(i *cpu.Instruction, r cpu.Registers) {
	fmt.Fprintln(os.Stderr, formatTrace(i, r))
}

// formatTrace renders the instruction followed by the register file.
func formatTrace(i *cpu.Instruction, r cpu.Registers) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-24s", i)
	for reg := arch.RegA; reg < arch.RegStatus; reg++ {
		if reg == arch.RegPC {
			continue
		}
		fmt.Fprintf(&sb, " %s=%04x", arch.RegisterName(reg), r.Value(reg))
	}
	fmt.Fprintf(&sb, " %v", r.Status)
	return sb.String()
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f GHz", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f KHz", v/1e3)
	default:
		return fmt.Sprintf("%.2f Hz", v)
	}
}
