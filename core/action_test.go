package core

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

type publisher struct{}

func (p *publisher) publishAll(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) {
	return nil, nil
}

func TestFuncName(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		want string
	}{
		{"package function", markPublished, "markPublished"},
		{"method value", (&publisher{}).publishAll, "publishAll"},
		{"closure", func() {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := funcName(tt.fn); got != tt.want {
				t.Errorf("funcName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatLabel(t *testing.T) {
	resource := &Resource{DisplayName: "Order Item", PluralName: "Order Items"}

	tests := []struct {
		label    string
		resource *Resource
		want     string
	}{
		{"Delete selected {verbose_name_plural}", resource, "Delete selected order items"},
		{"Archive this {verbose_name}", resource, "Archive this order item"},
		{"Export", resource, "Export"},
		{"Delete selected {verbose_name_plural}", nil, "Delete selected {verbose_name_plural}"},
	}

	for _, tt := range tests {
		if got := FormatLabel(tt.label, tt.resource); got != tt.want {
			t.Errorf("FormatLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestHandlerKind(t *testing.T) {
	touch := &ActionType{Name: "touch", HasPermission: always, New: func() StatefulAction { return &touchAction{} }}

	stateful := StatefulHandler(touch)
	if stateful.Kind() != HandlerStateful || stateful.Type() != touch || stateful.Kind().String() != "stateful" {
		t.Errorf("Unexpected stateful handler %+v", stateful)
	}

	fn := FuncHandler(markPublished)
	if fn.Kind() != HandlerFunc || fn.Type() != nil || fn.Kind().String() != "func" {
		t.Errorf("Unexpected func handler %+v", fn)
	}

	if (Handler{}).Kind().String() != "unknown" {
		t.Error("Expected the zero handler to be unknown")
	}
}

func TestActionEntry_MethodPrefersMostSpecificKind(t *testing.T) {
	var called string
	general := func(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) {
		called = "general"
		return nil, nil
	}
	specific := func(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) {
		called = "specific"
		return nil, nil
	}

	site := NewViewKind("ListView").WithMethod("archive", general)
	kind := site.Extend("ArticleListView").WithMethod("archive", specific)

	fn, ok := kind.LookupMethod("archive")
	if !ok {
		t.Fatal("Expected archive to resolve")
	}
	_, _ = fn(context.Background(), nil, nil, nil)
	if called != "specific" {
		t.Errorf("Expected the most specific method, got %s", called)
	}

	if _, ok := kind.LookupMethod("missing"); ok {
		t.Error("Expected unknown methods not to resolve")
	}
}

func TestViewKind_Chain(t *testing.T) {
	root := NewViewKind("ListView")
	middle := root.Extend("PublishingListView")
	leaf := middle.Extend("ArticleListView")

	if got := leaf.Chain(); !reflect.DeepEqual(got, []*ViewKind{root, middle, leaf}) {
		t.Errorf("Expected root first, got %v", got)
	}
	if leaf.ActionsDisabled() {
		t.Error("Expected actions enabled")
	}

	middle.DisableActions()
	if !leaf.ActionsDisabled() || root.ActionsDisabled() {
		t.Error("Expected disabling to affect descendants only")
	}
}
