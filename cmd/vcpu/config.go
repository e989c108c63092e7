package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config defines program configuration.
type Config struct {
	Image      string        // Path to the image file to load.
	PrintTrace bool          // Print instruction trace data?
	PrintStats bool          // Print cycle count and clock frequency on exit?
	DumpImage  bool          // Print a human-readable dump of the image and exit.
	Verbose    bool          // Log device startup and shutdown?
	Timer      time.Duration // Host interrupt period; zero disables the clock.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.PrintTrace, "trace", c.PrintTrace, "Print instruction trace data to stderr.")
	flag.BoolVar(&c.PrintStats, "stats", c.PrintStats, "Print cycle count and clock frequency when the program ends.")
	flag.BoolVar(&c.DumpImage, "dump", c.DumpImage, "Print a human-readable version of the image to stdout and exit.")
	flag.DurationVar(&c.Timer, "timer", c.Timer, "Raise a host interrupt at this interval.")
	flag.BoolVar(&c.Verbose, "v", c.Verbose, "Log device startup and shutdown.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c.Image = flag.Arg(0)
	return &c
}
