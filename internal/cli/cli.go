// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/chip8vm/internal/options"
)

// DefaultHz is the default number of cycles per second.
const DefaultHz = 60

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	var opts options.Program
	readOptionFlags(flags, &opts)
	readQuirkFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	opts.Input = args[0]
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: chip8vm [options] <program file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	if len(args) > 1 {
		for _, arg := range args[1:] {
			if arg != "" && arg[0] == '-' {
				return &UsageError{
					msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
				}
			}
		}
		return &UsageError{msg: "only one program file can be run"}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Hz <= 0 && !opts.Fast {
		return fmt.Errorf("invalid cycle rate %d, it has to be positive", opts.Hz)
	}
	if !opts.Headless {
		// log output shares the terminal with the rendered frame
		if opts.Trace {
			return errors.New("-trace can only be used together with -headless")
		}
		if opts.Keys != "" {
			return errors.New("-keys can only be used together with -headless")
		}
	}
	// instruction traces are logged at debug level
	if opts.Trace {
		opts.Debug = true
		opts.Quiet = false
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.IntVar(&opts.Hz, "hz", DefaultHz, "number of cycles executed per second")
	flags.BoolVar(&opts.Fast, "fast", false, "run unthrottled")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "stop after the given number of cycles, 0 runs until interrupted")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal output and print the final screen")
	flags.StringVar(&opts.Keys, "keys", "", "keys typed in headless mode, in order, for example 1qv")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the program and exit")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random number generator seed, 0 uses a random seed")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readQuirkFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.ShiftUsesVY, "quirk-shift", false, "shift instructions shift VY into VX")
	flags.BoolVar(&opts.LoadStoreIncrementsI, "quirk-loadstore", false, "register store and load instructions increment I")
	flags.BoolVar(&opts.JumpUsesVX, "quirk-jump", false, "indexed jump adds VX instead of V0")
	flags.BoolVar(&opts.LogicResetsVF, "quirk-vfreset", false, "logic instructions reset VF")
}
