// Package app provides the main application helpers for the emulator.
package app

import (
	"strings"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints the application name and version.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	if date != "" && strings.Contains(date, "unknown") {
		date = ""
	}
	logger.Info("chip8vm", log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintInfo prints the information about the loaded program and the
// enabled interpreter variants.
func PrintInfo(logger *log.Logger, opts options.Program, image []byte) {
	if opts.Quiet {
		return
	}

	logger.Info("Running CHIP-8 program",
		log.String("file", opts.Input),
		log.Int("size", len(image)),
		log.Hex("start", uint16(memory.ProgramStart)),
	)

	var quirks []string
	if opts.ShiftUsesVY {
		quirks = append(quirks, "shift")
	}
	if opts.LoadStoreIncrementsI {
		quirks = append(quirks, "loadstore")
	}
	if opts.JumpUsesVX {
		quirks = append(quirks, "jump")
	}
	if opts.LogicResetsVF {
		quirks = append(quirks, "vfreset")
	}
	if len(quirks) > 0 {
		logger.Info("Interpreter quirks enabled", log.String("quirks", strings.Join(quirks, ",")))
	}
	if opts.Fast {
		logger.Warn("Running unthrottled, timers advance once per cycle")
	}
}
