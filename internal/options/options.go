// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input string // program image to run
}

// Flags contains behavior options.
type Flags struct {
	Hz       int    // cycles per second when throttled
	Fast     bool   // run unthrottled
	Cycles   uint64 // stop after this many cycles, 0 runs until interrupted
	Headless bool   // run without terminal and print the final frame
	Keys     string // symbols typed in headless mode
	Disasm   bool   // print a listing of the program and exit
	Seed     uint64 // random number seed, 0 selects a random seed
	Trace    bool   // log every executed instruction
	Debug    bool
	Quiet    bool
}

// QuirkFlags selects interpreter quirks.
type QuirkFlags struct {
	ShiftUsesVY          bool
	LoadStoreIncrementsI bool
	JumpUsesVX           bool
	LogicResetsVF        bool
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	QuirkFlags
}
