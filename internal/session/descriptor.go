package session

import "github.com/spyglass-re/spyglass/internal/engine"

// ProgramDescriptor is a minimal immutable identity snapshot of a program.
// Fields are nil when the host does not expose them; callers get null in
// serialized output rather than an error.
type ProgramDescriptor struct {
	Name         *string `json:"name"`
	Path         *string `json:"path"`
	Architecture *string `json:"architecture"`
	Entry        *uint64 `json:"entry"`
}

// EmptyDescriptor is the placeholder returned when no program is bound.
func EmptyDescriptor() ProgramDescriptor {
	return ProgramDescriptor{}
}

// DescribeProgram derives a descriptor from a live program. Pure: it reads
// whatever fields the host exposes and leaves the rest nil. The descriptor is
// recomputed on demand and never cached across a rebind.
func DescribeProgram(p engine.Program) ProgramDescriptor {
	if p == nil {
		return EmptyDescriptor()
	}

	var d ProgramDescriptor

	filename, hasFilename := p.Filename()
	if hasFilename {
		d.Path = &filename
	}

	// The display name prefers the loader's main-binary name and falls back
	// to the filename.
	if loader, ok := p.Loader(); ok {
		if mainObject, ok := loader.MainObject(); ok {
			if entry, ok := mainObject.Entry(); ok {
				d.Entry = &entry
			}
			if binary, ok := mainObject.Binary(); ok && binary != "" {
				d.Name = &binary
			}
		}
	}
	if d.Name == nil && hasFilename {
		d.Name = &filename
	}

	if arch, ok := p.Arch(); ok {
		if name, ok := arch.Name(); ok {
			d.Architecture = &name
		}
	}

	return d
}
