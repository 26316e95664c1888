package cppdata

import (
	"sort"

	"github.com/conduit-lang/cppbind/internal/errors"
)

// Validate checks the model for inconsistencies that would make every
// downstream stage meaningless: duplicate types, unknown or cyclic bases
// and malformed instantiation registry entries. Dependency types are valid
// base and registry targets. A nil result means the model is consistent;
// otherwise the returned ErrorList holds only fatal entries.
func (d *Data) Validate(deps ...Dependency) error {
	resolver := NewResolver(d, deps...)
	var errs errors.ErrorList

	seen := make(map[string]bool, len(d.Types))
	for _, td := range d.Types {
		if seen[td.Name] {
			errs = append(errs, errors.NewDuplicateType(td.Name).WithHeader(td.Header))
		}
		seen[td.Name] = true
	}

	graph := NewInheritanceGraph()
	for _, td := range d.Types {
		if !td.IsClass() {
			continue
		}
		graph.AddClass(td.Name)
		for _, base := range td.Class.Bases {
			baseData, ok := resolver.FindType(base.Base.Name)
			if !base.IsClass() || !ok || !baseData.IsClass() {
				errs = append(errs, errors.NewUnknownBase(td.Name, base.Base.Name).WithHeader(td.Header))
				continue
			}
			graph.AddBase(td.Name, base.Base.Name)
		}
	}
	if _, cyclic := graph.TopologicalOrder(); len(cyclic) > 0 {
		errs = append(errs, errors.NewInheritanceCycle(cyclic))
	}

	keys := make([]string, 0, len(d.TemplateInstantiations))
	for name := range d.TemplateInstantiations {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		td, ok := resolver.FindType(name)
		switch {
		case !ok:
			errs = append(errs, errors.NewUnknownInstantiation(name))
		case !td.IsTemplate():
			errs = append(errs, errors.NewInstantiationNotTemplate(name).WithHeader(td.Header))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
