package core

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

func TestMergeOverride(t *testing.T) {
	type item struct{ key, value string }

	merged := MergeOverride([][]item{
		{{"a", "a1"}, {"b", "b1"}, {"", "skipped"}},
		{{"c", "c1"}, {"a", "a2"}},
		{{"b", "b2"}},
	}, func(i item) string { return i.key })

	var keys, values []string
	for key, it := range merged.AllFromFront() {
		keys = append(keys, key)
		values = append(values, it.value)
	}

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected keys %v, got %v", want, keys)
	}
	if want := []string{"a2", "b2", "c1"}; !reflect.DeepEqual(values, want) {
		t.Errorf("Expected values %v, got %v", want, values)
	}
}

func TestBuildRegistry_ChainOrderAndOverride(t *testing.T) {
	purge := &ActionType{Name: "purge", VerboseName: "Purge", HasPermission: always, New: func() StatefulAction { return &touchAction{} }}

	site := NewViewKind("ListView").WithActions(Func(markPublished))
	kind := site.Extend("ArticleListView").WithActions(
		Func(exportArticles).Named("mark_published").Described("Publish now"),
		Func(exportArticles),
		Stateful(purge).Described("Purge for good"),
	)

	v := newTestView(t, url.Values{})
	v.kind = kind

	reg := BuildRegistry(v, []ActionEntry{Stateful(purge)}, auth.AllowAll)

	if want := []string{"purge", "mark_published", "export_articles"}; !reflect.DeepEqual(reg.Keys(), want) {
		t.Fatalf("Expected keys %v, got %v", want, reg.Keys())
	}

	published, _ := reg.Get("mark_published")
	if published.DisplayName != "Publish now" {
		t.Errorf("Expected the specific kind to override the label, got %q", published.DisplayName)
	}

	purged, _ := reg.Get("purge")
	if purged.DisplayName != "Purge for good" || purged.Handler.Kind() != HandlerStateful {
		t.Errorf("Expected the later stateful declaration to win, got %+v", purged)
	}

	actions := reg.Actions()
	if len(actions) != reg.Len() || actions[0].Key != "purge" {
		t.Errorf("Expected Actions in registry order, got %v", actions)
	}
}

func TestBuildRegistry_Empty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(v *testView)
	}{
		{
			name:  "rows not selectable",
			setup: func(v *testView) { v.canSelect = false },
		},
		{
			name:  "no view kind",
			setup: func(v *testView) { v.kind = nil },
		},
		{
			name: "disabled on an ancestor",
			setup: func(v *testView) {
				parent := NewViewKind("ListView").DisableActions()
				v.kind = parent.Extend("ArticleListView").WithActions(Func(markPublished))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(t, url.Values{})
			v.kind.WithActions(Func(markPublished))
			tt.setup(v)

			reg := BuildRegistry(v, []ActionEntry{Func(exportArticles)}, auth.AllowAll)
			if reg.Len() != 0 {
				t.Errorf("Expected empty registry, got %v", reg.Keys())
			}
		})
	}
}

func TestBuildRegistry_NotModelBacked(t *testing.T) {
	parent := NewViewKind("ListView").WithActions(Func(exportArticles))
	kind := parent.Extend("DashboardView").WithActions(Func(markPublished))

	v := newTestView(t, url.Values{})
	v.resource = nil
	v.kind = kind

	reg := BuildRegistry(v, []ActionEntry{Func(exportArticles).Named("baseline")}, auth.AllowAll)

	if want := []string{"mark_published"}; !reflect.DeepEqual(reg.Keys(), want) {
		t.Errorf("Expected only the kind's own actions %v, got %v", want, reg.Keys())
	}
}

func TestBuildRegistry_Permissions(t *testing.T) {
	editor := &auth.AuthUser{Username: "ed", Roles: []string{"editor"}}
	perms := auth.RolePermissions{"editor": {"publish_article"}}

	tests := []struct {
		name  string
		user  *auth.AuthUser
		perms auth.PermissionChecker
		want  []string
	}{
		{name: "granted", user: editor, perms: perms, want: []string{"mark_published", "export_articles"}},
		{name: "not granted", user: &auth.AuthUser{Roles: []string{"viewer"}}, perms: perms, want: []string{"export_articles"}},
		{name: "anonymous", user: nil, perms: perms, want: []string{"export_articles"}},
		{name: "no checker", user: editor, perms: nil, want: []string{"export_articles"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(t, url.Values{})
			v.user = tt.user
			v.kind.WithActions(
				Func(markPublished).RequirePermission("publish_article"),
				Func(exportArticles),
			)

			reg := BuildRegistry(v, nil, tt.perms)
			if !reflect.DeepEqual(reg.Keys(), tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, reg.Keys())
			}
		})
	}
}

func TestBuildRegistry_PermissionAppliesToOverride(t *testing.T) {
	v := newTestView(t, url.Values{})
	v.kind.WithActions(Func(exportArticles).Named("mark_published").RequirePermission("publish_article"))

	reg := BuildRegistry(v, []ActionEntry{Func(markPublished)}, auth.RolePermissions{})
	if reg.Len() != 0 {
		t.Errorf("Expected the overriding declaration's permission to apply, got %v", reg.Keys())
	}
}

func TestBuildRegistry_OmitsUnresolvable(t *testing.T) {
	noNew := &ActionType{Name: "broken", HasPermission: always}
	denied := &ActionType{Name: "denied", HasPermission: never, New: func() StatefulAction { return &touchAction{} }}

	v := newTestView(t, url.Values{})
	v.kind.WithActions(
		Stateful(nil),
		Stateful(noNew),
		Stateful(denied),
		Func(nil),
		Func(func(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) { return nil, nil }),
		Method("missing"),
		Func(markPublished).When(never),
		Func(exportArticles).When(always),
	)

	reg := BuildRegistry(v, nil, auth.AllowAll)
	if want := []string{"export_articles"}; !reflect.DeepEqual(reg.Keys(), want) {
		t.Errorf("Expected %v, got %v", want, reg.Keys())
	}
}

func TestBuildRegistry_NamedClosure(t *testing.T) {
	v := newTestView(t, url.Values{})
	v.kind.WithActions(
		Func(func(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) { return nil, nil }).
			Named("archive"),
	)

	reg := BuildRegistry(v, nil, auth.AllowAll)
	action, ok := reg.Get("archive")
	if !ok {
		t.Fatal("Expected a named closure to resolve")
	}
	if action.DisplayName != "archive" || action.Icon != DefaultActionIcon {
		t.Errorf("Expected key as label and default icon, got %+v", action)
	}
}

func TestBuildRegistry_Methods(t *testing.T) {
	site := NewViewKind("ListView").WithMethod("archive", markPublished)
	kind := site.Extend("ArticleListView").WithActions(
		Method("archive"),
		Method("archive").Named("archive_now").Described("Archive now").WithIcon("box"),
	)

	v := newTestView(t, url.Values{})
	v.kind = kind

	reg := BuildRegistry(v, nil, auth.AllowAll)
	if want := []string{"archive", "archive_now"}; !reflect.DeepEqual(reg.Keys(), want) {
		t.Fatalf("Expected %v, got %v", want, reg.Keys())
	}

	now, _ := reg.Get("archive_now")
	if now.DisplayName != "Archive now" || now.Icon != "box" || now.Handler.Kind() != HandlerFunc {
		t.Errorf("Unexpected method action %+v", now)
	}
}

func TestBuildRegistry_StatefulDefaults(t *testing.T) {
	touch := &ActionType{HasPermission: always, New: func() StatefulAction { return &touchAction{} }}

	v := newTestView(t, url.Values{})
	v.kind.WithActions(Stateful(touch))

	reg := BuildRegistry(v, nil, auth.AllowAll)
	action, ok := reg.Get("act_touch_action")
	if !ok {
		t.Fatalf("Expected key derived from the type name, got %v", reg.Keys())
	}
	if action.DisplayName != "touchAction" {
		t.Errorf("Expected type name as label, got %q", action.DisplayName)
	}
	if action.Icon != DefaultActionIcon {
		t.Errorf("Expected default icon, got %q", action.Icon)
	}
	if action.Handler.Type() != touch {
		t.Error("Expected the handler to carry the action type")
	}
}

func TestBuildRegistry_StatefulCapabilitySeesView(t *testing.T) {
	var seen View
	guarded := &ActionType{
		Name: "guarded",
		HasPermission: func(v View) bool {
			seen = v
			return v.HasPermission("touch_article")
		},
		New: func() StatefulAction { return &touchAction{} },
	}

	v := newTestView(t, url.Values{})
	v.perms = auth.RolePermissions{}
	v.kind.WithActions(Stateful(guarded))

	if reg := BuildRegistry(v, nil, auth.AllowAll); reg.Len() != 0 {
		t.Errorf("Expected the type-level check to omit the action, got %v", reg.Keys())
	}
	if seen != v {
		t.Error("Expected the capability check to receive the view")
	}
}
