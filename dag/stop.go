package dag

// StopFunc decides from a node's fresh result whether the run ends early.
type StopFunc func(result any) bool

// Stopped is reported in place of every output when a run stops early.
type Stopped struct {
	At Node
}

func (s Stopped) String() string {
	if s.At == nil {
		return "STOPPED"
	}
	return "STOPPED AT " + s.At.Name()
}

// FirstStopped returns the first Stopped marker among outputs.
func FirstStopped(outputs []any) (Stopped, bool) {
	for _, out := range outputs {
		if s, ok := out.(Stopped); ok {
			return s, true
		}
	}
	return Stopped{}, false
}
