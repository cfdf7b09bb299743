// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CPUOptions converts the program options to CPU options.
func CPUOptions(opts options.Program) []cpu.Option {
	cpuOptions := []cpu.Option{
		cpu.WithQuirks(cpu.Quirks{
			ShiftUsesVY:          opts.ShiftUsesVY,
			LoadStoreIncrementsI: opts.LoadStoreIncrementsI,
			JumpUsesVX:           opts.JumpUsesVX,
			LogicResetsVF:        opts.LogicResetsVF,
		}),
		cpu.WithTrace(opts.Trace),
	}
	if opts.Seed != 0 {
		cpuOptions = append(cpuOptions, cpu.WithSeed(opts.Seed))
	}
	return cpuOptions
}

// RunnerConfig converts the program options to the pacing loop configuration.
func RunnerConfig(opts options.Program) runner.Config {
	return runner.Config{
		Hz:        opts.Hz,
		Fast:      opts.Fast,
		MaxCycles: opts.Cycles,
	}
}
