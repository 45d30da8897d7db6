package version

import (
	"fmt"
	"os/exec"
	"strings"
)

var (
	Version = "0.3.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// Resolve returns the version string, with a git-derived suffix appended when
// running from a checkout whose HEAD is not a release tag.
func Resolve() string {
	return resolveVersion(Version, runGit)
}

// Long returns the version with build metadata, as printed by `speechtxt version`.
func Long() string {
	return formatLong(Resolve(), Commit, Date)
}

func formatLong(version, commit, date string) string {
	var meta []string
	if commit != "" && commit != "unknown" {
		meta = append(meta, "commit "+commit)
	}
	if date != "" && date != "unknown" {
		meta = append(meta, "built "+date)
	}
	if len(meta) == 0 {
		return "v" + version
	}
	return fmt.Sprintf("v%s (%s)", version, strings.Join(meta, ", "))
}

func resolveVersion(base string, git func(...string) (string, error)) string {
	if base == "" {
		base = "0.0.0"
	}

	suffix := gitSuffix(base, git)
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func gitSuffix(base string, git func(...string) (string, error)) string {
	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return ""
	}
	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return ""
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(desc, "v"+base+"-")
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
