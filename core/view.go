package core

import (
	"net/http"

	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// View is the list page a bulk action is offered on and dispatched against.
// It lives for a single request.
type View interface {
	// Resource is the model behind the listing, or nil for listings that are
	// not backed by a persisted model
	Resource() *Resource

	// Kind is the view kind whose chain declares the available actions
	Kind() *ViewKind

	// CanSelect reports whether rows can be selected at all
	CanSelect() bool

	// AllowsBulkActions is false for grid-style listings that render actions
	// but refuse bulk submissions
	AllowsBulkActions() bool

	// BaseQuery is the current filtered and sorted query, without pagination
	BaseQuery() *Query

	// ResultCount is the number of rows matching BaseQuery across all pages
	ResultCount() int64

	// VisibleCount is the number of rows rendered on the current page
	VisibleCount() int

	Adapter() Adapter
	Request() *http.Request
	User() *auth.AuthUser

	// HasPermission asks the permission checker about the view's user
	HasPermission(permission string) bool

	// MessageUser queues a transient user-facing message
	MessageUser(msg string)

	// CurrentURL is the exact path and query the request came from
	CurrentURL() string
}

// IsModelBacked reports whether the view lists a persisted model
func IsModelBacked(v View) bool {
	return v.Resource() != nil
}

// ViewKind is one link of a list view's declaration chain. Kinds extend a
// parent, declare their own actions, and may register named methods that
// action entries refer to by name.
type ViewKind struct {
	Name    string
	Parent  *ViewKind
	Actions []ActionEntry

	methods  map[string]ActionFunc
	disabled bool
}

// NewViewKind creates a root view kind
func NewViewKind(name string) *ViewKind {
	return &ViewKind{Name: name}
}

// Extend derives a child kind inheriting k's declarations
func (k *ViewKind) Extend(name string) *ViewKind {
	return &ViewKind{Name: name, Parent: k}
}

// WithActions appends entries to the kind's own action declarations
func (k *ViewKind) WithActions(entries ...ActionEntry) *ViewKind {
	k.Actions = append(k.Actions, entries...)
	return k
}

// WithMethod registers a named method resolvable by Method entries
func (k *ViewKind) WithMethod(name string, fn ActionFunc) *ViewKind {
	if k.methods == nil {
		k.methods = make(map[string]ActionFunc)
	}
	k.methods[name] = fn
	return k
}

// DisableActions switches action selection off for this kind and every kind
// extending it
func (k *ViewKind) DisableActions() *ViewKind {
	k.disabled = true
	return k
}

// Chain returns the kinds from the most general ancestor to k itself
func (k *ViewKind) Chain() []*ViewKind {
	var chain []*ViewKind
	for kind := k; kind != nil; kind = kind.Parent {
		chain = append(chain, kind)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ActionsDisabled reports whether k or any ancestor disabled actions
func (k *ViewKind) ActionsDisabled() bool {
	for kind := k; kind != nil; kind = kind.Parent {
		if kind.disabled {
			return true
		}
	}
	return false
}

// LookupMethod resolves a named method, most specific kind first
func (k *ViewKind) LookupMethod(name string) (ActionFunc, bool) {
	for kind := k; kind != nil; kind = kind.Parent {
		if fn, ok := kind.methods[name]; ok && fn != nil {
			return fn, true
		}
	}
	return nil, false
}
