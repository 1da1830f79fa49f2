package core

import (
	"context"
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/iancoleman/strcase"
)

// DefaultActionIcon is used when neither the declaration nor the handler names an icon
const DefaultActionIcon = "tasks"

// Action describes one bulk action available on a list view
type Action struct {
	// Key is the value submitted in the "action" field and the merge key
	Key string `json:"key"`

	// DisplayName is the label shown in the UI. It may contain the
	// {verbose_name} and {verbose_name_plural} placeholders.
	DisplayName string `json:"display_name"`

	Icon string `json:"icon"`

	// Permission, when set, must be granted to the current user
	Permission string `json:"permission,omitempty"`

	Handler Handler `json:"-"`
}

// ActionFunc is the functional action shape. A nil handler return means the
// dispatcher should redirect back to the list.
type ActionFunc func(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error)

// StatefulAction is an action instance bound to the view it runs against
type StatefulAction interface {
	// Init binds the action to the invoking view before Execute
	Init(v View)

	// Execute runs the action against the target rows. A nil handler return
	// means the dispatcher should redirect back to the list.
	Execute(ctx context.Context, target *Query) (http.Handler, error)
}

// ActionType describes a stateful action type
type ActionType struct {
	// TypeName defaults to the Go type name of the value New returns
	TypeName string

	// Name is the action key; defaults to "act_" + snake_case(TypeName)
	Name string

	// VerboseName is the label; defaults to TypeName
	VerboseName string

	Icon string

	// HasPermission is the type-level capability check. Required.
	HasPermission func(v View) bool

	// New creates a fresh, unbound instance. Required.
	New func() StatefulAction
}

func (t *ActionType) typeName() string {
	if t.TypeName != "" {
		return t.TypeName
	}
	instance := t.New()
	if instance == nil {
		return ""
	}
	rt := reflect.TypeOf(instance)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt.Name()
}

// HandlerKind tags the shape of an action handler
type HandlerKind int

const (
	HandlerStateful HandlerKind = iota + 1
	HandlerFunc
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerStateful:
		return "stateful"
	case HandlerFunc:
		return "func"
	}
	return "unknown"
}

// Handler is either a stateful action type or an ActionFunc
type Handler struct {
	kind       HandlerKind
	actionType *ActionType
	fn         ActionFunc
}

// StatefulHandler wraps a stateful action type
func StatefulHandler(t *ActionType) Handler {
	return Handler{kind: HandlerStateful, actionType: t}
}

// FuncHandler wraps a functional action
func FuncHandler(fn ActionFunc) Handler {
	return Handler{kind: HandlerFunc, fn: fn}
}

// Kind returns the handler's shape
func (h Handler) Kind() HandlerKind {
	return h.kind
}

// Type returns the stateful action type, or nil for functional handlers
func (h Handler) Type() *ActionType {
	return h.actionType
}

type entryKind int

const (
	entryStateful entryKind = iota + 1
	entryFunc
	entryMethod
)

// ActionEntry is one action declaration in a view kind's action list.
// Entries are resolved into Actions per request; entries that cannot be
// resolved are left out of the registry.
type ActionEntry struct {
	kind       entryKind
	actionType *ActionType
	fn         ActionFunc
	method     string

	name        string
	description string
	icon        string
	permission  string
	allow       func(View) bool
}

// Stateful declares a stateful action type
func Stateful(t *ActionType) ActionEntry {
	return ActionEntry{kind: entryStateful, actionType: t}
}

// Func declares a functional action. Without Named, the key is the
// function's own name in snake_case; anonymous functions need Named.
func Func(fn ActionFunc) ActionEntry {
	return ActionEntry{kind: entryFunc, fn: fn}
}

// Method declares an action by the name of a method registered on the view kind chain
func Method(name string) ActionEntry {
	return ActionEntry{kind: entryMethod, method: name}
}

// Named overrides the action key
func (e ActionEntry) Named(key string) ActionEntry {
	e.name = key
	return e
}

// Described sets the label (the short description)
func (e ActionEntry) Described(label string) ActionEntry {
	e.description = label
	return e
}

// WithIcon sets the icon
func (e ActionEntry) WithIcon(icon string) ActionEntry {
	e.icon = icon
	return e
}

// RequirePermission sets the permission the current user must hold
func (e ActionEntry) RequirePermission(permission string) ActionEntry {
	e.permission = permission
	return e
}

// When attaches a predicate; the action is only offered when it returns true
func (e ActionEntry) When(allow func(View) bool) ActionEntry {
	e.allow = allow
	return e
}

// resolve turns the declaration into an Action for the given view.
// The bool is false when the entry is malformed or its capability check fails.
func (e ActionEntry) resolve(v View) (Action, bool) {
	if e.allow != nil && !e.allow(v) {
		return Action{}, false
	}

	switch e.kind {
	case entryStateful:
		return e.resolveStateful(v)
	case entryFunc:
		if e.fn == nil {
			return Action{}, false
		}
		return e.resolveFunc(e.fn, firstNonEmpty(e.name, strcase.ToSnake(funcName(e.fn))))
	case entryMethod:
		if v.Kind() == nil {
			return Action{}, false
		}
		fn, ok := v.Kind().LookupMethod(e.method)
		if !ok {
			return Action{}, false
		}
		return e.resolveFunc(fn, firstNonEmpty(e.name, e.method))
	}

	return Action{}, false
}

func (e ActionEntry) resolveStateful(v View) (Action, bool) {
	t := e.actionType
	if t == nil || t.New == nil || t.HasPermission == nil {
		return Action{}, false
	}
	if !t.HasPermission(v) {
		return Action{}, false
	}

	typeName := t.typeName()
	key := firstNonEmpty(e.name, t.Name)
	if key == "" && typeName != "" {
		key = "act_" + strcase.ToSnake(typeName)
	}
	if key == "" {
		return Action{}, false
	}

	return Action{
		Key:         key,
		DisplayName: firstNonEmpty(e.description, t.VerboseName, typeName),
		Icon:        firstNonEmpty(e.icon, t.Icon, DefaultActionIcon),
		Permission:  e.permission,
		Handler:     StatefulHandler(t),
	}, true
}

func (e ActionEntry) resolveFunc(fn ActionFunc, key string) (Action, bool) {
	if key == "" {
		return Action{}, false
	}

	return Action{
		Key:         key,
		DisplayName: firstNonEmpty(e.description, key),
		Icon:        firstNonEmpty(e.icon, DefaultActionIcon),
		Permission:  e.permission,
		Handler:     FuncHandler(fn),
	}, true
}

// FormatLabel fills the model vocabulary placeholders of an action label
func FormatLabel(label string, resource *Resource) string {
	if resource == nil {
		return label
	}
	return strings.NewReplacer(
		"{verbose_name_plural}", resource.VerboseNamePlural(),
		"{verbose_name}", resource.VerboseName(),
	).Replace(label)
}

var anonymousFuncName = regexp.MustCompile(`^(func)?\d+$`)

// funcName returns the declared name of a function, or "" for closures
func funcName(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return ""
	}

	name := rf.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	name = strings.TrimSuffix(name, "-fm")
	if anonymousFuncName.MatchString(name) {
		return ""
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
