// Package main implements the main entry point for the CHIP-8 virtual machine
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/chip8vm/internal/app"
	"github.com/retroenv/chip8vm/internal/cli"
	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/runner"
	"github.com/retroenv/chip8vm/internal/terminal"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	app.PrintBanner(logger, opts, version, commit, date)

	if err := run(ctx, logger, opts); err != nil {
		// Ctrl+C or Esc ends the session
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation stopped")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	image, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if opts.Disasm {
		if err := disasm.List(os.Stdout, image); err != nil {
			return fmt.Errorf("disassembling program: %w", err)
		}
		return nil
	}

	app.PrintInfo(logger, opts, image)

	if opts.Headless {
		return runHeadless(ctx, logger, opts, image)
	}
	return runTerminal(ctx, logger, opts, image)
}

// runHeadless runs the program with the keys given on the command line as
// input and prints the final frame.
func runHeadless(ctx context.Context, logger *log.Logger, opts options.Program, image []byte) error {
	screen := display.New(display.DefaultWidth, display.DefaultHeight)
	script := keypad.NewScript([]rune(opts.Keys)...)
	script.Close()
	keys := keypad.New(script)

	machine := cpu.New(logger, screen, keys, config.CPUOptions(opts)...)
	if err := machine.LoadProgram(image); err != nil {
		return err
	}

	r := runner.New(logger, machine, screen, nil, config.RunnerConfig(opts))
	err := r.Run(ctx)
	if errors.Is(err, keypad.ErrEndOfInput) {
		logger.Warn("Program waits for a key press but no more keys are queued")
		err = nil
	}

	fmt.Print(screen.Snapshot().String())
	logger.Info("Emulation finished", log.Int("cycles", int(r.Cycles())))
	return err
}

// runTerminal runs the program interactively in the terminal. Mouse clicks
// paint on the debug overlay of the display.
func runTerminal(ctx context.Context, logger *log.Logger, opts options.Program, image []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen := display.New(display.DefaultWidth, display.DefaultHeight)
	keyboard := terminal.NewKeyboard(cancel)
	keys := keypad.New(keyboard)

	machine := cpu.New(logger, screen, keys, config.CPUOptions(opts)...)
	if err := machine.LoadProgram(image); err != nil {
		return err
	}

	term, err := terminal.New(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	fits, err := term.Fits(screen.Width(), screen.Height())
	if err != nil {
		return err
	}
	if !fits {
		logger.Warn("Terminal is smaller than the framebuffer, output will be clipped")
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("starting terminal session: %w", err)
	}
	defer func() {
		if err := term.Close(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()

	go func() {
		if err := keyboard.Run(term.Input()); err != nil {
			cancel()
		}
	}()

	applyMouse := func() {
		keyboard.ApplyMouse(screen)
	}
	// only errors are logged while the session owns the screen
	sessionLogger := config.CreateLogger(false, true)
	r := runner.New(sessionLogger, machine, screen, terminal.NewRenderer(os.Stdout), config.RunnerConfig(opts),
		runner.WithCycleHook(applyMouse))
	return r.Run(ctx)
}
