// Package scope maps caller-visible collection names to workspace-qualified
// storage names and back.
//
// Workspace identifiers are opaque, case-sensitive strings. Scoping is
// deterministic and invertible: the storage name is the workspace, the
// separator, then the short name, so the short name is always recoverable by
// stripping the known prefix.
package scope

import "strings"

// Separator joins the workspace prefix and the short collection name.
const Separator = "/"

// Resolver scopes and unscopes collection names for one workspace. The zero
// workspace disables scoping entirely; every name passes through unchanged.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	workspace string
}

// NewResolver returns a resolver for the given workspace. An empty workspace
// yields a pass-through resolver.
func NewResolver(workspace string) *Resolver {
	return &Resolver{workspace: workspace}
}

// Workspace returns the active workspace, empty when scoping is disabled.
func (r *Resolver) Workspace() string {
	return r.workspace
}

// Scope maps a short collection name to its storage-qualified name.
func (r *Resolver) Scope(short string) string {
	if r.workspace == "" {
		return short
	}
	return r.workspace + Separator + short
}

// Unscope maps a storage-qualified name back to its short name. The second
// return reports whether the name belongs to this resolver's workspace; a
// foreign name is returned unchanged with false so listings can exclude it
// rather than erroring.
func (r *Resolver) Unscope(scoped string) (string, bool) {
	if r.workspace == "" {
		return scoped, true
	}
	prefix := r.workspace + Separator
	if !strings.HasPrefix(scoped, prefix) {
		return scoped, false
	}
	return strings.TrimPrefix(scoped, prefix), true
}

// FilterOwned unscopes every entry and drops the ones that do not belong to
// the active workspace. Without a workspace the input is returned as-is,
// matching legacy unscoped behavior.
func (r *Resolver) FilterOwned(scoped []string) []string {
	if r.workspace == "" {
		return scoped
	}
	owned := make([]string, 0, len(scoped))
	for _, name := range scoped {
		if short, ok := r.Unscope(name); ok {
			owned = append(owned, short)
		}
	}
	return owned
}
