// Package manifest implements the per-format manifest adapters: read the
// current version out of a manifest's in-memory content and, on write,
// splice in a new version while leaving every other byte untouched.
package manifest

import (
	"errors"
	"fmt"

	"github.com/conveyor-release/conveyor/pkg/config"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

// ErrNoVersion reports a manifest that parsed cleanly but carries no
// recognizable version field. Callers match it with errors.Is to
// distinguish a missing field from a malformed document.
var ErrNoVersion = errors.New("manifest: no version field")

// Handler is implemented once per config.Format. It never touches the
// filesystem directly — the orchestrator owns reading and writing the
// underlying file; Handler only operates on in-memory content so that it
// can be exercised against arbitrary paths (including a module's
// sub-directory go.mod, which additionally needs its own path for tag
// derivation).
type Handler interface {
	// ReadVersion extracts the current version from content.
	ReadVersion(content []byte) (semver.Version, error)
	// WriteVersion returns content with the version field's bytes replaced
	// by newVersion, leaving every other byte identical. path is the
	// manifest's file path; only the GoMod handler uses it, as the file
	// name handed to the go.mod parser.
	WriteVersion(content []byte, newVersion semver.Version, path string) ([]byte, error)
}

// For returns the Handler for the given format.
func For(format config.Format) (Handler, error) {
	switch format {
	case config.FormatCargo:
		return cargoHandler{}, nil
	case config.FormatPyProject:
		return pyprojectHandler{}, nil
	case config.FormatNPM:
		return npmHandler{}, nil
	case config.FormatGoMod:
		return gomodHandler{}, nil
	default:
		return nil, fmt.Errorf("manifest: no handler for format %q", format)
	}
}
