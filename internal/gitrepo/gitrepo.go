// Package gitrepo is the Git query interface the release core needs:
// enumerate commits, list tags, and resolve the nearest ancestor tag —
// by commit-graph distance, never by committer timestamp.
package gitrepo

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is a single commit's data the conventional-commit parser and
// changelog writer need.
type Commit struct {
	Hash    string
	Subject string
	Body    string
	When    time.Time
	Parents []string
}

// Tag is a single tag reference resolved to the commit it points at
// (annotated tags are dereferenced to their target commit).
type Tag struct {
	Name       string
	CommitHash string
}

// Repository is the four-operation Git query surface the core depends on.
// Implementers may back it with go-git or shell out to the git binary;
// ancestor-only tag selection is mandatory regardless of backend.
type Repository interface {
	// Head returns HEAD's commit hash.
	Head() (string, error)
	// Tags lists every tag in the repository, dereferenced to commits.
	Tags() ([]Tag, error)
	// CommitsSince returns every commit reachable from HEAD but not from
	// anchorHash (inclusive of HEAD, exclusive of anchorHash and anything
	// reachable from it), in descending committer-time order.
	CommitsSince(anchorHash string) ([]Commit, error)
	// NearestTag returns the tag matching pattern that is an ancestor of
	// HEAD with the fewest hops from HEAD, breaking ties arbitrarily. ok is
	// false if no matching tag is an ancestor of HEAD.
	NearestTag(pattern *regexp.Regexp) (tag Tag, ok bool, err error)
	// CreateTag creates a tag at HEAD: annotated if message is non-empty,
	// lightweight otherwise.
	CreateTag(name, message string) error
}

type repository struct {
	repo *git.Repository
}

// Open opens the Git repository rooted at dir (or its nearest parent
// containing a .git directory, mirroring git's own directory-climbing
// behavior).
func Open(dir string) (Repository, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: opening repository at %s: %w", dir, err)
	}
	return &repository{repo: r}, nil
}

func (r *repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("gitrepo: resolving HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (r *repository) Tags() ([]Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: listing tags: %w", err)
	}
	defer iter.Close()

	var tags []Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commitHash, derefErr := r.dereferenceToCommit(ref.Hash())
		if derefErr != nil {
			return nil // skip tags that don't point to a commit (e.g. a tree tag)
		}
		tags = append(tags, Tag{Name: ref.Name().Short(), CommitHash: commitHash.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: iterating tags: %w", err)
	}
	return tags, nil
}

// dereferenceToCommit resolves a tag's target hash to the commit it
// ultimately points at, following annotated tag objects.
func (r *repository) dereferenceToCommit(hash plumbing.Hash) (plumbing.Hash, error) {
	if commit, err := r.repo.CommitObject(hash); err == nil {
		return commit.Hash, nil
	}
	tagObj, err := r.repo.TagObject(hash)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	target, err := tagObj.Commit()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return target.Hash, nil
}

// ancestorDistances walks the commit graph backward from start via a BFS
// over the parent links, recording each visited hash's hop-count from
// start. Graph distance, never committer timestamps, decides which tag is
// nearest.
func (r *repository) ancestorDistances(start plumbing.Hash) (map[plumbing.Hash]int, error) {
	distances := map[plumbing.Hash]int{start: 0}
	queue := []plumbing.Hash{start}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		d := distances[h]

		commit, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("gitrepo: reading commit %s: %w", h, err)
		}
		for _, parent := range commit.ParentHashes {
			if _, seen := distances[parent]; seen {
				continue
			}
			distances[parent] = d + 1
			queue = append(queue, parent)
		}
	}
	return distances, nil
}

func (r *repository) NearestTag(pattern *regexp.Regexp) (Tag, bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return Tag{}, false, fmt.Errorf("gitrepo: resolving HEAD: %w", err)
	}

	distances, err := r.ancestorDistances(head.Hash())
	if err != nil {
		return Tag{}, false, err
	}

	tags, err := r.Tags()
	if err != nil {
		return Tag{}, false, err
	}

	var best Tag
	bestDist := -1
	for _, tag := range tags {
		if !pattern.MatchString(tag.Name) {
			continue
		}
		dist, ok := distances[plumbing.NewHash(tag.CommitHash)]
		if !ok {
			continue // not an ancestor of HEAD
		}
		if bestDist == -1 || dist < bestDist {
			best = tag
			bestDist = dist
		}
	}

	return best, bestDist != -1, nil
}

func (r *repository) CommitsSince(anchorHash string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("gitrepo: resolving HEAD: %w", err)
	}

	headAncestors, err := r.ancestorDistances(head.Hash())
	if err != nil {
		return nil, err
	}

	excluded := map[plumbing.Hash]bool{}
	if anchorHash != "" {
		anchorAncestors, err := r.ancestorDistances(plumbing.NewHash(anchorHash))
		if err != nil {
			return nil, fmt.Errorf("gitrepo: resolving since-anchor %s: %w", anchorHash, err)
		}
		for h := range anchorAncestors {
			excluded[h] = true
		}
	}

	var commits []Commit
	for h := range headAncestors {
		if excluded[h] {
			continue
		}
		obj, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("gitrepo: reading commit %s: %w", h, err)
		}
		commits = append(commits, toCommit(obj))
	}

	sort.Slice(commits, func(i, j int) bool { return commits[i].When.After(commits[j].When) })
	return commits, nil
}

func toCommit(obj *object.Commit) Commit {
	parents := make([]string, len(obj.ParentHashes))
	for i, p := range obj.ParentHashes {
		parents[i] = p.String()
	}
	subject, body := splitMessage(obj.Message)
	return Commit{
		Hash:    obj.Hash.String(),
		Subject: subject,
		Body:    body,
		When:    obj.Committer.When,
		Parents: parents,
	}
}

func splitMessage(message string) (subject, body string) {
	for i, r := range message {
		if r == '\n' {
			return message[:i], trimLeadingNewline(message[i+1:])
		}
	}
	return message, ""
}

func trimLeadingNewline(s string) string {
	for len(s) > 0 && s[0] == '\n' {
		s = s[1:]
	}
	return s
}

func (r *repository) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("gitrepo: resolving HEAD: %w", err)
	}

	var opts *git.CreateTagOptions
	if message != "" {
		cfg, cfgErr := r.repo.Config()
		taggerName, taggerEmail := "conveyor", "conveyor@localhost"
		if cfgErr == nil {
			if cfg.User.Name != "" {
				taggerName = cfg.User.Name
			}
			if cfg.User.Email != "" {
				taggerEmail = cfg.User.Email
			}
		}
		opts = &git.CreateTagOptions{
			Tagger:  &object.Signature{Name: taggerName, Email: taggerEmail, When: time.Now()},
			Message: message,
		}
	}

	if _, err := r.repo.CreateTag(name, head.Hash(), opts); err != nil {
		return fmt.Errorf("gitrepo: creating tag %s: %w", name, err)
	}
	return nil
}

// TagPattern builds the tag-matching regex: an optional
// "<prefix>/" then an optional "v" then X.Y.Z with an optional pre-release
// suffix.
func TagPattern(prefix string) *regexp.Regexp {
	p := ""
	if prefix != "" {
		p = regexp.QuoteMeta(prefix) + "/"
	}
	return regexp.MustCompile(`^` + p + `v?\d+\.\d+\.\d+(-.*)?$`)
}

// StableTagPattern is TagPattern without the pre-release suffix. The
// since-anchor for change enumeration is always a stable release tag:
// pre-release tags never consume commits, they only advance the planner's
// counters.
func StableTagPattern(prefix string) *regexp.Regexp {
	p := ""
	if prefix != "" {
		p = regexp.QuoteMeta(prefix) + "/"
	}
	return regexp.MustCompile(`^` + p + `v?\d+\.\d+\.\d+$`)
}
