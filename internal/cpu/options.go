package cpu

import "math/rand/v2"

// Quirks selects between the behaviors that differ across CHIP-8 interpreters.
// The zero value selects the modern behavior.
type Quirks struct {
	ShiftUsesVY          bool // 8XY6 and 8XYE shift VY into VX instead of shifting VX
	LoadStoreIncrementsI bool // FX55 and FX65 leave I pointing after the last register
	JumpUsesVX           bool // BXNN jumps to XNN plus VX instead of NNN plus V0
	LogicResetsVF        bool // 8XY1, 8XY2 and 8XY3 reset VF to 0
}

// Option configures a CPU.
type Option func(*CPU)

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(c *CPU) {
		c.quirks = quirks
	}
}

// WithRandom sets the random number source used by the RND instruction.
func WithRandom(random *rand.Rand) Option {
	return func(c *CPU) {
		c.random = random
	}
}

// WithSeed seeds the random number source used by the RND instruction.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		c.random = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// WithTrace enables logging of every executed instruction at debug level.
func WithTrace(trace bool) Option {
	return func(c *CPU) {
		c.trace = trace
	}
}
