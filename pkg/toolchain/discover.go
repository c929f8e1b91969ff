package toolchain

import (
	"context"
)

// Toolchain holds the tools an emit run depends on. Ninja is optional and may be nil.
type Toolchain struct {
	Java   *Tool
	Gradle *Tool
	CMake  *Tool
	Ninja  *Tool
}

// Versions returns name to version for every resolved tool
func (tc *Toolchain) Versions() map[string]string {
	out := map[string]string{}
	for _, t := range []*Tool{tc.Java, tc.Gradle, tc.CMake, tc.Ninja} {
		if t != nil {
			out[t.Name] = t.Version
		}
	}
	return out
}

// Discover probes java, gradle, cmake and ninja. A missing ninja only logs a warning.
func (p *Prober) Discover(ctx context.Context) (*Toolchain, error) {
	tc := &Toolchain{}
	var err error

	if tc.Java, err = p.Probe(ctx, Java); err != nil {
		return nil, err
	}
	if tc.Gradle, err = p.Probe(ctx, Gradle); err != nil {
		return nil, err
	}
	if tc.CMake, err = p.Probe(ctx, CMake); err != nil {
		return nil, err
	}
	if tc.Ninja, err = p.Probe(ctx, Ninja); err != nil {
		p.logger.Warn("ninja was not found, CMake will pick its own make program: %v", err)
		tc.Ninja = nil
	}
	return tc, nil
}

// Status is one row of the doctor report
type Status struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Required    bool     `json:"required" yaml:"required"`
	Available   bool     `json:"available" yaml:"available"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Path        string   `json:"path,omitempty" yaml:"path,omitempty"`
	UsedBy      []string `json:"used_by" yaml:"used_by"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Check probes every definition and reports without failing
func (p *Prober) Check(ctx context.Context, defs ...Definition) []Status {
	var out []Status
	for _, def := range defs {
		st := Status{
			Name:        def.Name,
			Description: def.Description,
			Required:    !def.Optional,
			UsedBy:      def.UsedBy,
		}
		if tool, err := p.Probe(ctx, def); err != nil {
			st.Error = err.Error()
		} else {
			st.Available = true
			st.Version = tool.Version
			st.Path = tool.Path
		}
		out = append(out, st)
	}
	return out
}

// All lists every probed definition in report order
func All() []Definition {
	return []Definition{Java, Gradle, CMake, Ninja, Adb}
}
