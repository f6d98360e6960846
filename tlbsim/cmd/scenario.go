package cmd

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Operations a scenario step can perform.
const (
	opTLBWI = "tlbwi"
	opTLBWR = "tlbwr"
	opTLBP  = "tlbp"
	opTLBR  = "tlbr"
	opWired = "wired"
	opRead  = "read"
	opWrite = "write"
	opERET  = "eret"
	opReset = "reset"
)

// A Step is one CP0 instruction or memory access of a scenario.
type Step struct {
	Op string `toml:"op"`

	// Index is written to the Index register before tlbwi, tlbp and tlbr.
	Index *uint32 `toml:"index"`

	// Wired is the value written by a wired step.
	Wired uint32 `toml:"wired"`

	PageMask uint32 `toml:"page_mask"`
	EntryHi  uint32 `toml:"entry_hi"`
	EntryLo0 uint32 `toml:"entry_lo0"`
	EntryLo1 uint32 `toml:"entry_lo1"`

	VAddr uint32 `toml:"vaddr"`

	// Expect is the physical address a read or write must produce, or the
	// Index value tlbp must leave.
	Expect *uint32 `toml:"expect"`

	// ExpectFault requires a read or write to raise a TLB exception.
	ExpectFault bool `toml:"expect_fault"`
}

// A Scenario is a list of steps replayed in order on a freshly reset CP0.
type Scenario struct {
	Name  string `toml:"name"`
	Steps []Step `toml:"step"`
}

// LoadScenario reads a scenario from a TOML file.
func LoadScenario(path string) (*Scenario, error) {
	var s Scenario

	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("scenario %s: unknown keys %s",
			path, strings.Join(keys, ", "))
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &s, nil
}

func (s *Scenario) validate() error {
	for i, step := range s.Steps {
		switch step.Op {
		case opTLBWI, opTLBR:
			if step.Index == nil {
				return fmt.Errorf("step %d: %s needs an index", i, step.Op)
			}
		case opRead, opWrite:
			if step.Expect != nil && step.ExpectFault {
				return fmt.Errorf(
					"step %d: expect and expect_fault are exclusive", i)
			}
		case opTLBWR, opTLBP, opWired, opERET, opReset:
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}

	return nil
}
