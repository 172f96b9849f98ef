package manifest

import (
	"fmt"

	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// Evaluate returns the requirements that apply under the given environment
// with the given extras requested. Extra-gated sections are included only
// for requested extras; marker-gated sections are filtered through the
// marker evaluator with the extra variable bound to the section's extra.
//
// A requirement that names the manifest's own distribution is treated as
// an extra reference: its extras are expanded transitively instead of the
// self-dependency being emitted. Expansion tolerates cycles; reporting
// them is the analyzer's job.
func (m *Manifest) Evaluate(env marker.Environment, extras []string) ([]*requirement.Requirement, error) {
	requested := make(map[string]bool)
	queue := make([]string, 0, len(extras))
	for _, e := range extras {
		key := requirement.CanonicalName(e)
		if !m.HasExtra(key) {
			return nil, fmt.Errorf("unknown extra %q", e)
		}
		if !requested[key] {
			requested[key] = true
			queue = append(queue, key)
		}
	}

	selfName := ""
	if m.Name != "" {
		selfName = requirement.CanonicalName(m.Name)
	}

	var out []*requirement.Requirement
	emitted := make(map[string]bool)
	processed := make(map[string]bool) // extras whose sections were walked

	// emit walks the sections for one extra key ("" = base) and collects
	// applicable requirements, queueing self-referenced extras.
	emit := func(key string) error {
		for _, s := range m.SectionsFor(key) {
			if s.Marker != nil {
				ok, err := s.Marker.Eval(env.WithExtra(s.Extra))
				if err != nil {
					return fmt.Errorf("section %s: %w", s.headerString(), err)
				}
				if !ok {
					continue
				}
			}
			for _, e := range s.Entries {
				req := e.Requirement
				if selfName != "" && req.CanonicalNameKey() == selfName {
					for _, extra := range req.Extras {
						ek := requirement.CanonicalName(extra)
						if !requested[ek] {
							requested[ek] = true
							queue = append(queue, ek)
						}
					}
					continue
				}
				ok, err := req.Matches(env.WithExtra(s.Extra))
				if err != nil {
					return fmt.Errorf("line %d: %w", e.Line, err)
				}
				if !ok {
					continue
				}
				if sig := req.String(); !emitted[sig] {
					emitted[sig] = true
					out = append(out, req)
				}
			}
		}
		return nil
	}

	if err := emit(""); err != nil {
		return nil, err
	}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if processed[key] {
			continue
		}
		processed[key] = true
		if err := emit(key); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// SelfReferences returns, per extra (including "" for the base section),
// the extras pulled in through self-referential requirements. Used to
// build the extras dependency graph.
func (m *Manifest) SelfReferences() map[string][]string {
	if m.Name == "" {
		return nil
	}
	selfName := requirement.CanonicalName(m.Name)

	refs := make(map[string][]string)
	for _, s := range m.Sections {
		key := ""
		if s.Extra != "" {
			key = requirement.CanonicalName(s.Extra)
		}
		for _, e := range s.Entries {
			if e.Requirement.CanonicalNameKey() != selfName {
				continue
			}
			for _, extra := range e.Requirement.Extras {
				refs[key] = append(refs[key], requirement.CanonicalName(extra))
			}
		}
	}
	return refs
}
