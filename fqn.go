package toolcase

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ToolNameSeparator separates the toolkit and tool components of a
// fully-qualified name string, as in "Slack.SendMessage".
const ToolNameSeparator = "."

// versionSeparator introduces an optional toolkit version suffix, as in
// "Slack.SendMessage@0.2.0".
const versionSeparator = "@"

// VersionLatest is the sentinel version that resolves to the highest
// registered toolkit version, same as omitting the version entirely.
const VersionLatest = "latest"

// FullyQualifiedName identifies a tool by name, toolkit, and optional
// toolkit version. Name and ToolkitName compare case-insensitively;
// ToolkitVersion compares exactly. The zero ToolkitVersion means "absent".
type FullyQualifiedName struct {
	Name           string
	ToolkitName    string
	ToolkitVersion string
}

// NewFullyQualifiedName builds an FQN. version may be empty.
func NewFullyQualifiedName(name, toolkitName, version string) FullyQualifiedName {
	return FullyQualifiedName{Name: name, ToolkitName: toolkitName, ToolkitVersion: version}
}

// ParseFullyQualifiedName parses "Toolkit.Tool" or "Toolkit.Tool@version".
func ParseFullyQualifiedName(s string) (FullyQualifiedName, error) {
	var fqn FullyQualifiedName
	name := s
	if at := strings.LastIndex(s, versionSeparator); at >= 0 {
		name = s[:at]
		fqn.ToolkitVersion = s[at+1:]
		if fqn.ToolkitVersion == "" {
			return FullyQualifiedName{}, fmt.Errorf("malformed tool name %q: empty version", s)
		}
	}
	toolkit, tool, ok := strings.Cut(name, ToolNameSeparator)
	if !ok || toolkit == "" || tool == "" {
		return FullyQualifiedName{}, fmt.Errorf("malformed tool name %q: want Toolkit%sTool", s, ToolNameSeparator)
	}
	fqn.ToolkitName = toolkit
	fqn.Name = tool
	return fqn, nil
}

// String renders "Toolkit.Tool" with an "@version" suffix when a version is set.
func (f FullyQualifiedName) String() string {
	s := f.ToolkitName + ToolNameSeparator + f.Name
	if f.ToolkitVersion != "" {
		s += versionSeparator + f.ToolkitVersion
	}
	return s
}

// Equal reports full equality: case-insensitive on the name components and
// exact on the version (absent equals only absent).
func (f FullyQualifiedName) Equal(other FullyQualifiedName) bool {
	return f.EqualsIgnoringVersion(other) && f.ToolkitVersion == other.ToolkitVersion
}

// EqualsIgnoringVersion reports equality on the case-folded name components
// only, disregarding both versions.
func (f FullyQualifiedName) EqualsIgnoringVersion(other FullyQualifiedName) bool {
	return strings.EqualFold(f.Name, other.Name) &&
		strings.EqualFold(f.ToolkitName, other.ToolkitName)
}

// fqnKey is the canonical map key for an FQN: lowercased name components,
// verbatim version. Two FQNs that are Equal produce the same key.
type fqnKey struct {
	name    string
	toolkit string
	version string
}

func (f FullyQualifiedName) key() fqnKey {
	return fqnKey{
		name:    strings.ToLower(f.Name),
		toolkit: strings.ToLower(f.ToolkitName),
		version: f.ToolkitVersion,
	}
}

// pairKey identifies the (toolkit, tool) pair across all versions.
type pairKey struct {
	name    string
	toolkit string
}

func (f FullyQualifiedName) pairKey() pairKey {
	return pairKey{
		name:    strings.ToLower(f.Name),
		toolkit: strings.ToLower(f.ToolkitName),
	}
}

// compareVersions orders toolkit versions for "latest" resolution. An absent
// version is lower than any explicit one. When both sides parse as semantic
// versions they compare component-wise; otherwise they compare as strings.
func compareVersions(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	av, bv := canonicalSemver(a), canonicalSemver(b)
	if av != "" && bv != "" {
		return semver.Compare(av, bv)
	}
	return strings.Compare(a, b)
}

// canonicalSemver returns the "v"-prefixed form of s when s is a valid
// semantic version, or "" when it is not.
func canonicalSemver(s string) string {
	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if semver.IsValid(v) {
		return v
	}
	return ""
}
