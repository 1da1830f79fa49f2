package core

import (
	"github.com/elliotchance/orderedmap/v3"

	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// MergeOverride walks lists in order and upserts every item by key: a new key
// is appended, a known key keeps its first position and takes the later value.
// Items with an empty key are skipped.
func MergeOverride[T any](lists [][]T, keyOf func(T) string) *orderedmap.OrderedMap[string, T] {
	merged := orderedmap.NewOrderedMap[string, T]()
	for _, list := range lists {
		for _, item := range list {
			if key := keyOf(item); key != "" {
				merged.Set(key, item)
			}
		}
	}
	return merged
}

// Registry is the ordered, permission-filtered set of actions available on
// one list view for one request
type Registry struct {
	actions *orderedmap.OrderedMap[string, Action]
}

// BuildRegistry computes the actions available on v for the view's user.
//
// Model-backed views start from the baseline entries, then apply the entries
// of every kind in the chain from the most general to the most specific, so
// later declarations override earlier ones with the same key. Other views only
// resolve their own kind's entries. Actions whose required permission is not
// granted are dropped last.
func BuildRegistry(v View, baseline []ActionEntry, perms auth.PermissionChecker) *Registry {
	kind := v.Kind()
	if !v.CanSelect() || kind == nil || kind.ActionsDisabled() {
		return EmptyRegistry()
	}

	var lists [][]Action
	if IsModelBacked(v) {
		lists = append(lists, resolveEntries(v, baseline))
		for _, k := range kind.Chain() {
			lists = append(lists, resolveEntries(v, k.Actions))
		}
	} else {
		lists = append(lists, resolveEntries(v, kind.Actions))
	}

	merged := MergeOverride(lists, func(a Action) string { return a.Key })

	user := v.User()
	var denied []string
	for key, action := range merged.AllFromFront() {
		if action.Permission == "" {
			continue
		}
		if perms == nil || !perms.HasPermission(user, action.Permission) {
			denied = append(denied, key)
		}
	}
	for _, key := range denied {
		merged.Delete(key)
	}

	return &Registry{actions: merged}
}

// EmptyRegistry returns a registry offering no actions
func EmptyRegistry() *Registry {
	return &Registry{actions: orderedmap.NewOrderedMap[string, Action]()}
}

func resolveEntries(v View, entries []ActionEntry) []Action {
	resolved := make([]Action, 0, len(entries))
	for _, entry := range entries {
		if action, ok := entry.resolve(v); ok {
			resolved = append(resolved, action)
		}
	}
	return resolved
}

// Get returns the action registered under key
func (r *Registry) Get(key string) (Action, bool) {
	return r.actions.Get(key)
}

// Len returns the number of available actions
func (r *Registry) Len() int {
	return r.actions.Len()
}

// Keys returns the action keys in registry order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, r.actions.Len())
	for key := range r.actions.Keys() {
		keys = append(keys, key)
	}
	return keys
}

// Actions returns the actions in registry order
func (r *Registry) Actions() []Action {
	actions := make([]Action, 0, r.actions.Len())
	for _, action := range r.actions.AllFromFront() {
		actions = append(actions, action)
	}
	return actions
}
