// Package config provides the public configuration types the release core
// consumes. The core never loads or resolves these itself — that is an
// external collaborator's job (CLI flags, a TOML/YAML loader, environment
// variables) — it only accepts an already-populated *Project.
package config

import (
	"fmt"
	"os"
)

// PreLabelEnvVar is the only environment variable the tool consults: a
// pre-release label applied when no --pre-label flag is given.
const PreLabelEnvVar = "KNOPE_PRERELEASE_LABEL"

// ResolvePreLabel resolves the effective pre-release label from the flag
// value and the environment; the flag wins. Called once at the edge, so the
// core itself never reads the environment.
func ResolvePreLabel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PreLabelEnvVar)
}

// Format is the manifest file format, detected purely by file name.
type Format string

const (
	FormatCargo     Format = "cargo" // Cargo.toml
	FormatPyProject Format = "pyproject"
	FormatNPM       Format = "npm"   // package.json
	FormatGoMod     Format = "gomod" // go.mod
)

// DetectFormat maps a manifest file name to its Format. Detection is by
// name only, never by content.
func DetectFormat(filename string) (Format, error) {
	switch filename {
	case "Cargo.toml":
		return FormatCargo, nil
	case "pyproject.toml":
		return FormatPyProject, nil
	case "package.json":
		return FormatNPM, nil
	case "go.mod":
		return FormatGoMod, nil
	default:
		return "", fmt.Errorf("config: unrecognized manifest file name %q", filename)
	}
}

// VersionedFile is a single manifest the orchestrator will read and, if the
// package's version changes, rewrite.
type VersionedFile struct {
	Format Format `json:"format" yaml:"format"`
	Path   string `json:"path" yaml:"path"`
}

// ChangeTypeConfig maps a conventional-commit footer token (or changeset
// change type) to a changelog section heading. Generalizes the three fixed
// default sections into a per-package, registrable set.
type ChangeTypeConfig struct {
	Token   string `json:"token" yaml:"token"`     // footer token or changeset type, e.g. "feat", "Security"
	Section string `json:"section" yaml:"section"` // changelog heading, e.g. "Features"
}

// DefaultChangeTypes returns the three sections every package gets:
// Breaking Changes, Features, Fixes. ExtraFooterTokens can add sections or
// replace one of these by reusing its token.
func DefaultChangeTypes() []ChangeTypeConfig {
	return []ChangeTypeConfig{
		{Token: "breaking", Section: "Breaking Changes"},
		{Token: "feat", Section: "Features"},
		{Token: "fix", Section: "Fixes"},
	}
}

// Package is a single release unit: a name, the manifests that carry its
// version, the conventional-commit scopes that apply to it, an optional
// changelog path, and any extra footer tokens it wants recognized as
// changelog sections beyond the three defaults.
type Package struct {
	Name              string             `json:"name" yaml:"name"`
	Files             []VersionedFile    `json:"files" yaml:"files"`
	Scopes            []string           `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	ChangelogPath     string             `json:"changelog_path,omitempty" yaml:"changelog_path,omitempty"`
	ExtraFooterTokens []ChangeTypeConfig `json:"extra_footer_tokens,omitempty" yaml:"extra_footer_tokens,omitempty"`
}

// ChangeTypes returns this package's full section set: the three defaults
// plus any registered extras. Extras with a token matching a default replace
// that default's section name.
func (p Package) ChangeTypes() []ChangeTypeConfig {
	result := append([]ChangeTypeConfig(nil), DefaultChangeTypes()...)
	for _, extra := range p.ExtraFooterTokens {
		replaced := false
		for i, ct := range result {
			if ct.Token == extra.Token {
				result[i] = extra
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, extra)
		}
	}
	return result
}

// TagPrefix returns the git tag prefix for this package: empty for a
// single-package project's sole package, "<name>/" otherwise. The caller
// (release orchestrator) decides which case applies based on len(Packages).
func (p Package) TagPrefix(multiPackage bool) string {
	if !multiPackage {
		return ""
	}
	return p.Name + "/"
}

// OverrideVersion is a single --override-version entry. Package is empty
// when the project has exactly one package.
type OverrideVersion struct {
	Package string
	Version string
}

// Project is the fully-resolved configuration the core receives. Nothing in
// this struct is loaded by the core itself.
type Project struct {
	Packages  []Package
	PreLabel  string // from --pre-label flag or KNOPE_PRERELEASE_LABEL; flag wins
	Overrides []OverrideVersion
	DryRun    bool
	Verbose   bool
}

// IsValid performs structural validation the core relies on before
// planning; it does not validate file existence (that surfaces as an I/O
// error at read time).
func (p *Project) IsValid() error {
	if len(p.Packages) == 0 {
		return fmt.Errorf("config: project must declare at least one package")
	}
	seen := make(map[string]bool, len(p.Packages))
	for _, pkg := range p.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("config: package name is required")
		}
		if seen[pkg.Name] {
			return fmt.Errorf("config: duplicate package name %q", pkg.Name)
		}
		seen[pkg.Name] = true
		if len(pkg.Files) == 0 {
			return fmt.Errorf("config: package %q must declare at least one versioned file", pkg.Name)
		}
	}
	seenOverride := make(map[string]bool, len(p.Overrides))
	for _, ov := range p.Overrides {
		if seenOverride[ov.Package] {
			return fmt.Errorf("config: duplicate --override-version entry for package %q", ov.Package)
		}
		seenOverride[ov.Package] = true
	}
	return nil
}

// PackageByName returns the package with the given name, or nil.
func (p *Project) PackageByName(name string) *Package {
	for i := range p.Packages {
		if p.Packages[i].Name == name {
			return &p.Packages[i]
		}
	}
	return nil
}

// OverrideFor returns the override version spec targeting the named package,
// if any. In a single-package project the override's Package field is empty
// and matches by default.
func (p *Project) OverrideFor(name string) (string, bool) {
	singlePackage := len(p.Packages) == 1
	for _, ov := range p.Overrides {
		if ov.Package == name || (singlePackage && ov.Package == "") {
			return ov.Version, true
		}
	}
	return "", false
}
