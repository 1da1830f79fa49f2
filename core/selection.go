package core

import (
	"errors"
)

// Form fields consumed by bulk action submissions
const (
	ActionField         = "action"
	ActionCheckboxName  = "_selected_action"
	SelectAcrossField   = "select_across"
	SelectAcrossEnabled = "1"
)

var (
	// ErrNoSelection is returned when neither rows nor select-across were submitted
	ErrNoSelection = errors.New("no rows selected")
	// ErrIllegalAction is returned for unknown or forbidden action submissions
	ErrIllegalAction = errors.New("illegal action")
)

// UserMessage returns the user-facing text for user-correctable errors,
// or "" for anything else
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSelection):
		return "Please select at least one row first."
	case errors.Is(err, ErrIllegalAction):
		return "Illegal operation."
	}
	return ""
}

// IsSelectAcross reports whether the submitted select_across value asks for
// every row matching the current filter
func IsSelectAcross(value string) bool {
	return value == SelectAcrossEnabled
}

// SelectionTarget is either an explicit set of row keys or every row matching
// the view's current filter
type SelectionTarget struct {
	all  bool
	keys []string
}

// AllMatching targets every row matching the current filter across pages
func AllMatching() SelectionTarget {
	return SelectionTarget{all: true}
}

// Explicit targets the given row keys, de-duplicated in submission order.
// Blank keys are dropped.
func Explicit(keys []string) SelectionTarget {
	seen := make(map[string]struct{}, len(keys))
	unique := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	return SelectionTarget{keys: unique}
}

// IsAll reports whether the target spans every matching row
func (t SelectionTarget) IsAll() bool {
	return t.all
}

// Keys returns the explicit row keys; empty for AllMatching targets
func (t SelectionTarget) Keys() []string {
	return t.keys
}

// Mode names the selection mode for logs
func (t SelectionTarget) Mode() string {
	if t.all {
		return "all"
	}
	return "explicit"
}

// ResolveSelection turns the submitted selection into a target.
// Select-across wins over explicit keys.
func ResolveSelection(rawKeys []string, selectAcross bool) (SelectionTarget, error) {
	if selectAcross {
		return AllMatching(), nil
	}
	target := Explicit(rawKeys)
	if len(target.keys) == 0 {
		return SelectionTarget{}, ErrNoSelection
	}
	return target, nil
}

// Apply builds the concrete target query from the view's base query. The base
// query is cloned and unpaginated; explicit targets are narrowed to their keys.
// Keys that do not parse as the resource's primary key cannot match any row.
func (t SelectionTarget) Apply(base *Query, resource *Resource) *Query {
	target := base.Clone().Unpaginated()
	if t.all {
		return target
	}

	values := make([]any, 0, len(t.keys))
	for _, raw := range t.keys {
		if value, err := resource.ParseKey(raw); err == nil {
			values = append(values, value)
		}
	}
	return target.WithKeys(resource.IDField, values)
}
