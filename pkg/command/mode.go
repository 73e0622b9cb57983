package command

// Mode gates which commands are valid at a point in the session's life.
// A session starts in ModeConfig (probe and target setup) and moves to
// ModeExec via the init command, mirroring the configuration/run split of
// on-target debug daemons. ModeAny is only meaningful as a registration
// requirement.
type Mode uint8

const (
	ModeAny Mode = iota
	ModeConfig
	ModeExec
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeAny:
		return "any"
	case ModeConfig:
		return "config"
	case ModeExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Allows reports whether a command registered with requirement m may run
// while the context is in current.
func (m Mode) Allows(current Mode) bool {
	return m == ModeAny || m == current
}
