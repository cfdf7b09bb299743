// Package runner implements the outer pacing loop that drives the machine.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/retrogolib/log"
)

// Config contains the pacing loop configuration.
type Config struct {
	Hz        int    // cycles per second, ignored when Fast is set
	Fast      bool   // run cycles without waiting for the next tick
	MaxCycles uint64 // stop after this many cycles, 0 = unlimited
}

// Machine executes one fetch-decode-execute cycle per call.
type Machine interface {
	Step(ctx context.Context) error
}

// Screen exposes the framebuffer state that gets presented.
type Screen interface {
	Version() uint64
	Snapshot() display.Frame
}

// Renderer presents a framebuffer snapshot.
type Renderer interface {
	Render(frame display.Frame) error
}

// Option configures a runner.
type Option func(*Runner)

// WithCycleHook sets a function that is called before every cycle on the
// goroutine that steps the machine.
func WithCycleHook(hook func()) Option {
	return func(r *Runner) {
		r.hook = hook
	}
}

// Runner paces the machine and hands changed frames to the renderer.
type Runner struct {
	logger   *log.Logger
	machine  Machine
	screen   Screen
	renderer Renderer
	cfg      Config
	hook     func()

	cycles       uint64
	lastRendered uint64
	rendered     bool
}

// New returns a new runner. The renderer is optional, without one the
// framebuffer is only updated.
func New(logger *log.Logger, machine Machine, screen Screen, renderer Renderer, cfg Config,
	options ...Option) *Runner {

	r := &Runner{
		logger:   logger,
		machine:  machine,
		screen:   screen,
		renderer: renderer,
		cfg:      cfg,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Cycles returns the number of cycles that executed successfully.
func (r *Runner) Cycles() uint64 {
	return r.cycles
}

// Run executes cycles until the context is cancelled, the cycle limit is
// reached or the machine returns an error.
func (r *Runner) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if !r.cfg.Fast {
		if r.cfg.Hz <= 0 {
			return fmt.Errorf("invalid cycle rate %d", r.cfg.Hz)
		}
		interval := time.Second / time.Duration(r.cfg.Hz)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C

		r.logger.Debug("Starting pacing loop", log.Int("hz", r.cfg.Hz), log.Stringer("interval", interval))
	}

	for r.cfg.MaxCycles == 0 || r.cycles < r.cfg.MaxCycles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.hook != nil {
			r.hook()
		}

		if err := r.machine.Step(ctx); err != nil {
			return fmt.Errorf("executing cycle %d: %w", r.cycles, err)
		}
		r.cycles++

		if err := r.render(); err != nil {
			return err
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}

	r.logger.Debug("Cycle limit reached", log.Int("cycles", int(r.cycles)))
	return nil
}

func (r *Runner) render() error {
	if r.renderer == nil {
		return nil
	}

	version := r.screen.Version()
	if r.rendered && version == r.lastRendered {
		return nil
	}

	if err := r.renderer.Render(r.screen.Snapshot()); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	r.lastRendered = version
	r.rendered = true
	return nil
}
