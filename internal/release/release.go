// Package release is the top-level orchestrator: Gather → Plan → Apply.
// All planning — every manifest parse, every changeset parse, every version
// computation — completes before any write, so a failure during planning
// leaves the filesystem untouched. Dry-run mode replaces each write with a
// report line.
package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/conveyor-release/conveyor/internal/aggregate"
	"github.com/conveyor-release/conveyor/internal/changelog"
	"github.com/conveyor-release/conveyor/internal/consignment"
	"github.com/conveyor-release/conveyor/internal/corerr"
	"github.com/conveyor-release/conveyor/internal/fileutil"
	"github.com/conveyor-release/conveyor/internal/gitrepo"
	"github.com/conveyor-release/conveyor/internal/logger"
	"github.com/conveyor-release/conveyor/internal/manifest"
	"github.com/conveyor-release/conveyor/internal/planner"
	"github.com/conveyor-release/conveyor/pkg/config"
	"github.com/conveyor-release/conveyor/pkg/semver"
)

// ChangesetDir is the directory (relative to the project root) changeset
// files are read from and deleted out of.
const ChangesetDir = ".changeset"

// FileWrite is one buffered filesystem mutation, computed during planning
// and performed (or reported) during apply.
type FileWrite struct {
	Path    string
	Content []byte
}

// PackagePlan is one package's slice of the release plan.
type PackagePlan struct {
	Package        config.Package
	Current        semver.Version
	Next           semver.Version
	Rule           semver.BumpRule
	Tags           []string // primary tag first, then any Go sub-module tags
	ManifestWrites []FileWrite
	ChangelogWrite *FileWrite
}

// Plan is the full, validated release plan: nothing in it has touched the
// filesystem yet.
type Plan struct {
	Packages         []PackagePlan
	DeleteChangesets []string
}

// Report collects the run's user-facing outcome lines, printed to stdout
// by the caller.
type Report struct {
	Lines []string
}

func (r *Report) addf(format string, args ...interface{}) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r *Report) String() string {
	return strings.Join(r.Lines, "\n")
}

// Orchestrator wires the collaborators together for one run.
type Orchestrator struct {
	Config *config.Project
	Repo   gitrepo.Repository
	// Root is the working directory; manifest paths, changelog paths, and
	// the changeset directory are resolved relative to it.
	Root string
	Log  *logger.Logger
	// Now supplies the changelog date. Defaults to time.Now.
	Now func() time.Time
}

func (o *Orchestrator) log() *logger.Logger {
	if o.Log == nil {
		return logger.Nop()
	}
	return o.Log
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Run prepares the full plan and then applies it (or reports it, in
// dry-run mode).
func (o *Orchestrator) Run() (*Report, error) {
	plan, err := o.Prepare()
	if err != nil {
		return nil, err
	}
	return o.Apply(plan)
}

// Prepare is the gather-and-plan half: it reads commits, tags, changesets,
// and manifests, and produces a Plan or a typed error. It performs no
// writes.
func (o *Orchestrator) Prepare() (*Plan, error) {
	if err := o.Config.IsValid(); err != nil {
		return nil, err
	}

	consignments, err := consignment.ReadDir(filepath.Join(o.Root, ChangesetDir))
	if err != nil {
		return nil, corerr.NewChangesetParseError(filepath.Join(o.Root, ChangesetDir), err)
	}
	if len(consignments) > 0 {
		o.log().Debug("changesets loaded",
			"count", len(consignments),
			"packages", strings.Join(consignment.PackageNames(consignments), ", "))
	}

	allTags, err := o.Repo.Tags()
	if err != nil {
		return nil, err
	}

	multi := len(o.Config.Packages) > 1
	plan := &Plan{}
	planned := map[string]bool{}
	var skipped []string

	for _, pkg := range o.Config.Packages {
		pp, ok, err := o.planPackage(pkg, multi, allTags, consignments)
		if err != nil {
			return nil, err
		}
		if !ok {
			skipped = append(skipped, pkg.Name)
			continue
		}
		plan.Packages = append(plan.Packages, pp)
		planned[pkg.Name] = true
	}

	if len(plan.Packages) == 0 {
		return nil, corerr.NewNoChangeError(strings.Join(skipped, ", "))
	}

	plan.DeleteChangesets = changesetsToDelete(consignments, planned)
	return plan, nil
}

// planPackage produces one package's plan. ok is false when the package has
// no release-worthy change (and no override), which is not an error unless
// every package is skipped.
func (o *Orchestrator) planPackage(pkg config.Package, multi bool, allTags []gitrepo.Tag, consignments []*consignment.Consignment) (PackagePlan, bool, error) {
	lg := o.log().WithPackage(pkg.Name)
	prefix := pkg.TagPrefix(multi)
	namePrefix := strings.TrimSuffix(prefix, "/")

	anchor, found, err := o.Repo.NearestTag(gitrepo.StableTagPattern(namePrefix))
	if err != nil {
		return PackagePlan{}, false, err
	}
	anchorHash := ""
	if found {
		anchorHash = anchor.CommitHash
		lg.Debug("since-anchor resolved", "tag", anchor.Name)
	} else {
		lg.Debug("no prior release tag, considering full history")
	}

	commits, err := o.Repo.CommitsSince(anchorHash)
	if err != nil {
		return PackagePlan{}, false, err
	}

	current, contents, err := o.readCurrentVersion(pkg, allTags, namePrefix)
	if err != nil {
		return PackagePlan{}, false, err
	}

	result := aggregate.Aggregate(pkg, commits, consignments)
	for _, c := range result.ConsideredCommits {
		rule, hasRule := c.BumpRule()
		lg.Debug("considered commit",
			"type", c.Type, "scope", c.Scope, "breaking", c.Breaking,
			"rule", ruleName(rule, hasRule), "description", c.Description)
	}

	rule := result.Rule
	if spec, ok := o.Config.OverrideFor(pkg.Name); ok {
		v, err := semver.Parse(spec)
		if err != nil {
			return PackagePlan{}, false, corerr.NewOverrideVersionInvalidError(spec)
		}
		rule = semver.OverrideTo(v)
	} else if !result.HasChange() {
		lg.Debug("no release-worthy change")
		return PackagePlan{}, false, nil
	}

	cand, err := planner.Plan(current, rule, o.Config.PreLabel, planner.ParseTags(allTags, prefix), prefix)
	if err != nil {
		return PackagePlan{}, false, err
	}
	lg.Debug("planned version", "current", current.String(), "next", cand.Version.String())

	pp := PackagePlan{
		Package: pkg,
		Current: current,
		Next:    cand.Version,
		Rule:    rule,
		Tags:    []string{cand.Tag},
	}

	for _, f := range pkg.Files {
		h, err := manifest.For(f.Format)
		if err != nil {
			return PackagePlan{}, false, corerr.NewUnsupportedFormatError(f.Path)
		}
		newContent, err := h.WriteVersion(contents[f.Path], cand.Version, f.Path)
		if err != nil {
			return PackagePlan{}, false, corerr.NewManifestParseError(f.Path, err)
		}
		pp.ManifestWrites = append(pp.ManifestWrites, FileWrite{Path: filepath.Join(o.Root, f.Path), Content: newContent})

		if f.Format == config.FormatGoMod {
			if dir := filepath.Dir(f.Path); dir != "." && dir != "" {
				pp.Tags = append(pp.Tags, dir+"/v"+cand.Version.String())
			}
		}
	}

	if pkg.ChangelogPath != "" {
		w, err := o.planChangelog(pkg, cand.Version, result.Sections)
		if err != nil {
			return PackagePlan{}, false, err
		}
		pp.ChangelogWrite = &w
	}

	return pp, true, nil
}

// readCurrentVersion reads the package's current version from its declared
// manifests, returning the raw content of every manifest for the later
// write pass. A go.mod without a version comment contributes no version;
// when no manifest yields one, the version is inferred from the package's
// highest stable tag, falling back to the go.mod module path's /vN major.
func (o *Orchestrator) readCurrentVersion(pkg config.Package, allTags []gitrepo.Tag, namePrefix string) (semver.Version, map[string][]byte, error) {
	contents := make(map[string][]byte, len(pkg.Files))
	var versions []semver.Version
	goModMajor := 0

	for _, f := range pkg.Files {
		h, err := manifest.For(f.Format)
		if err != nil {
			return semver.Version{}, nil, corerr.NewUnsupportedFormatError(f.Path)
		}
		content, err := os.ReadFile(filepath.Join(o.Root, f.Path))
		if err != nil {
			return semver.Version{}, nil, corerr.NewIoError(f.Path, err)
		}
		contents[f.Path] = content

		v, err := h.ReadVersion(content)
		switch {
		case err == nil:
			versions = append(versions, v)
		case errors.Is(err, manifest.ErrGoModNoVersionComment):
			if major, ok, majErr := manifest.ModuleMajor(content); majErr == nil && ok && major > goModMajor {
				goModMajor = major
			}
		case errors.Is(err, manifest.ErrNoVersion):
			return semver.Version{}, nil, corerr.NewManifestMissingVersionError(f.Path)
		default:
			return semver.Version{}, nil, corerr.NewManifestParseError(f.Path, err)
		}
	}

	if len(versions) > 0 {
		for _, v := range versions[1:] {
			if !v.Equal(versions[0]) {
				return semver.Version{}, nil, corerr.NewInconsistentVersionsError(pkg.Name)
			}
		}
		return versions[0], contents, nil
	}

	prefix := ""
	if namePrefix != "" {
		prefix = namePrefix + "/"
	}
	var best semver.Version
	found := false
	for _, t := range planner.ParseTags(allTags, prefix) {
		if !t.IsPre() && (!found || t.GreaterThan(best)) {
			best = t
			found = true
		}
	}
	if found {
		return best, contents, nil
	}
	if goModMajor >= 2 {
		return semver.Version{Major: goModMajor}, contents, nil
	}
	// No manifest carries a version and no release tag exists: there is
	// nothing to seed versioning from. Tag the current release (or add a
	// version comment to go.mod) before running the tool.
	return semver.Version{}, nil, corerr.NewGitMissingTagError(gitrepo.StableTagPattern(namePrefix).String())
}

func (o *Orchestrator) planChangelog(pkg config.Package, next semver.Version, sections []aggregate.SectionEntries) (FileWrite, error) {
	path := filepath.Join(o.Root, pkg.ChangelogPath)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return FileWrite{}, corerr.NewIoError(pkg.ChangelogPath, err)
	}

	clSections := make([]changelog.Section, len(sections))
	for i, s := range sections {
		clSections[i] = changelog.Section{Title: s.Section, Entries: s.Entries}
	}

	updated, err := changelog.Update(string(existing), next, o.now(), clSections)
	if err != nil {
		return FileWrite{}, err
	}
	return FileWrite{Path: path, Content: []byte(updated)}, nil
}

// changesetsToDelete lists the source path of every changeset mentioning at
// least one planned package, sorted for deterministic ordering.
func changesetsToDelete(consignments []*consignment.Consignment, planned map[string]bool) []string {
	seen := map[string]bool{}
	var paths []string
	for name := range planned {
		for _, c := range consignment.FilterByPackage(consignments, name) {
			if seen[c.SourcePath] {
				continue
			}
			seen[c.SourcePath] = true
			paths = append(paths, c.SourcePath)
		}
	}
	sort.Strings(paths)
	return paths
}

// Apply performs the plan's writes in deterministic order: packages in
// config order (manifests, then changelog), then changeset deletions, then
// tags. In dry-run mode every mutation becomes a report line instead. An
// I/O failure mid-apply is surfaced immediately with no rollback.
func (o *Orchestrator) Apply(plan *Plan) (*Report, error) {
	report := &Report{}

	for _, pp := range plan.Packages {
		report.addf("%s: %s -> %s", pp.Package.Name, pp.Current, pp.Next)

		for _, w := range pp.ManifestWrites {
			if o.Config.DryRun {
				report.addf("  would write %s", w.Path)
				continue
			}
			if err := os.WriteFile(w.Path, w.Content, 0644); err != nil {
				return report, corerr.NewIoError(w.Path, err)
			}
			report.addf("  wrote %s", w.Path)
		}

		if w := pp.ChangelogWrite; w != nil {
			if o.Config.DryRun {
				report.addf("  would write %s", w.Path)
			} else {
				if err := fileutil.LockedWrite(w.Path, w.Content, 0644); err != nil {
					return report, corerr.NewIoError(w.Path, err)
				}
				report.addf("  wrote %s", w.Path)
			}
		}
	}

	for _, path := range plan.DeleteChangesets {
		if o.Config.DryRun {
			report.addf("would delete %s", path)
			continue
		}
		if err := consignment.Delete(path); err != nil {
			return report, corerr.NewIoError(path, err)
		}
		report.addf("deleted %s", path)
	}

	for _, pp := range plan.Packages {
		for _, tag := range pp.Tags {
			if o.Config.DryRun {
				report.addf("would tag %s", tag)
				continue
			}
			if err := o.Repo.CreateTag(tag, ""); err != nil {
				return report, err
			}
			report.addf("tagged %s", tag)
		}
	}

	return report, nil
}

func ruleName(rule semver.BumpRule, hasRule bool) string {
	if !hasRule {
		return "none"
	}
	switch rule.Kind {
	case semver.RuleMajor:
		return "major"
	case semver.RuleMinor:
		return "minor"
	case semver.RulePatch:
		return "patch"
	case semver.RulePre:
		return "pre(" + rule.Label + ")"
	case semver.RuleRelease:
		return "release"
	case semver.RuleOverride:
		return "override(" + rule.Override.String() + ")"
	default:
		return "none"
	}
}
