package codebook

import "fmt"

// Phase is a stage of document assembly. Phases run strictly in order
// and none is entered twice.
type Phase int

const (
	// PhaseInit is the state before any content is emitted.
	PhaseInit Phase = iota
	// PhaseFrontMatter emits the project overview.
	PhaseFrontMatter
	// PhaseKeyTerms emits the glossary.
	PhaseKeyTerms
	// PhaseDataDictionary emits the one-table summary of all variables.
	PhaseDataDictionary
	// PhaseVariables emits one entry per declared variable.
	PhaseVariables
	// PhaseFigures emits the figures.
	PhaseFigures
	// PhaseAppendix emits the data quality notes.
	PhaseAppendix
	// PhaseDone marks a complete document.
	PhaseDone
)

var phaseNames = [...]string{
	PhaseInit:           "init",
	PhaseFrontMatter:    "front matter",
	PhaseKeyTerms:       "key terms",
	PhaseDataDictionary: "data dictionary",
	PhaseVariables:      "variables",
	PhaseFigures:        "figures",
	PhaseAppendix:       "appendix",
	PhaseDone:           "done",
}

// String returns the phase name.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// phaseMachine enforces forward-only phase transitions.
type phaseMachine struct {
	current Phase
	visited []Phase
}

// advance moves to next, which must come after the current phase.
func (m *phaseMachine) advance(next Phase) error {
	if next <= m.current || next > PhaseDone {
		return fmt.Errorf("invalid phase transition %s -> %s", m.current, next)
	}
	m.current = next
	m.visited = append(m.visited, next)
	return nil
}
