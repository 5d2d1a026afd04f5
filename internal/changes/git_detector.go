package changes

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

// GitDetector enumerates working-tree status (and, when lastCommit is
// given, diffs from lastCommit to HEAD) by shelling out to the git CLI.
type GitDetector struct {
	// Timeout bounds each git invocation; zero means no timeout.
	Timeout time.Duration
}

// NewGitDetector returns a detector with a conservative default timeout.
func NewGitDetector() *GitDetector {
	return &GitDetector{Timeout: 30 * time.Second}
}

// Detect reports git's working-tree status against lastCommit (or HEAD
// if lastCommit is empty), mapped onto the Change enum. priorHashes is
// unused by this strategy — git's own tracked state supersedes it — but
// still satisfies Detector so callers can switch strategies
// transparently.
func (d *GitDetector) Detect(projectRoot string, lastCommit string, _ map[string]uint64) ([]Change, error) {
	root, err := d.repoRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	ref := lastCommit
	if ref == "" {
		ref = "HEAD"
	}

	tracked, err := d.diffNameStatus(root, ref)
	if err != nil {
		return nil, err
	}

	untracked, err := d.untrackedFiles(root)
	if err != nil {
		return nil, err
	}

	return append(tracked, untracked...), nil
}

func (d *GitDetector) repoRoot(projectRoot string) (string, error) {
	out, err := d.run(projectRoot, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", lsiferrors.NewIoError("git rev-parse --show-toplevel", projectRoot, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (d *GitDetector) diffNameStatus(root, ref string) ([]Change, error) {
	out, err := d.run(root, "diff", ref, "--name-status", "-M")
	if err != nil {
		// A brand new repo with no commits yet has no HEAD to diff against.
		out, err = d.run(root, "diff", "--cached", "--name-status", "-M")
		if err != nil {
			return nil, lsiferrors.NewIoError("git diff --name-status", root, err)
		}
	}
	return parseNameStatus(out), nil
}

func (d *GitDetector) untrackedFiles(root string) ([]Change, error) {
	out, err := d.run(root, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, lsiferrors.NewIoError("git ls-files --others", root, err)
	}

	var changes []Change
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path != "" {
			changes = append(changes, Change{Path: path, Status: Untracked})
		}
	}
	return changes, scanner.Err()
}

func (d *GitDetector) run(dir string, args ...string) ([]byte, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if d.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// parseNameStatus parses `git diff --name-status` lines into Changes,
// resolving renames (status "Rxxx" with two paths) to Renamed{from}.
func parseNameStatus(output []byte) []Change {
	var changes []Change
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]

		switch status[0] {
		case 'A':
			changes = append(changes, Change{Path: fields[1], Status: Added})
		case 'D':
			changes = append(changes, Change{Path: fields[1], Status: Deleted})
		case 'M':
			changes = append(changes, Change{Path: fields[1], Status: Modified})
		case 'R':
			if len(fields) >= 3 {
				changes = append(changes, Change{Path: fields[2], Status: Renamed, RenamedFrom: fields[1]})
			}
		case 'C':
			if len(fields) >= 3 {
				changes = append(changes, Change{Path: fields[2], Status: Added})
			}
		default:
			changes = append(changes, Change{Path: fields[1], Status: Modified})
		}
	}
	return changes
}
