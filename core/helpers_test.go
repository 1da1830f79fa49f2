package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

type Article struct {
	ID        uint      `db:"id"`
	Title     string    `db:"title"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
}

// nopAdapter satisfies Adapter for tests that never reach storage
type nopAdapter struct{}

func (nopAdapter) Find(ctx context.Context, resource *Resource, query *Query) (*Result, error) {
	return &Result{}, nil
}

func (nopAdapter) Count(ctx context.Context, resource *Resource, query *Query) (int64, error) {
	return 0, nil
}

func (nopAdapter) Update(ctx context.Context, resource *Resource, query *Query, changes map[string]any) (int64, error) {
	return 0, nil
}

func (nopAdapter) Delete(ctx context.Context, resource *Resource, query *Query) (int64, error) {
	return 0, nil
}

// testView is a configurable View over the Article resource
type testView struct {
	resource   *Resource
	kind       *ViewKind
	canSelect  bool
	allowsBulk bool
	base       *Query
	request    *http.Request
	user       *auth.AuthUser
	perms      auth.PermissionChecker
	messages   []string
}

func (v *testView) Resource() *Resource            { return v.resource }
func (v *testView) Kind() *ViewKind                { return v.kind }
func (v *testView) CanSelect() bool                { return v.canSelect }
func (v *testView) AllowsBulkActions() bool        { return v.allowsBulk }
func (v *testView) BaseQuery() *Query              { return v.base }
func (v *testView) ResultCount() int64             { return 0 }
func (v *testView) VisibleCount() int              { return 0 }
func (v *testView) Adapter() Adapter               { return nopAdapter{} }
func (v *testView) Request() *http.Request         { return v.request }
func (v *testView) User() *auth.AuthUser           { return v.user }
func (v *testView) MessageUser(msg string)         { v.messages = append(v.messages, msg) }
func (v *testView) CurrentURL() string             { return "/admin/Article?published=false" }
func (v *testView) HasPermission(perm string) bool { return v.perms.HasPermission(v.user, perm) }

func newArticleResource(t *testing.T) *Resource {
	t.Helper()
	bo := New(nopAdapter{}, auth.WithNoAuth())
	bo.RegisterResource(&Article{})
	resource, ok := bo.GetResource("Article")
	if !ok {
		t.Fatal("Article not registered")
	}
	return resource
}

// newTestView builds a selectable, model-backed view whose request carries form
func newTestView(t *testing.T, form url.Values) *testView {
	t.Helper()
	resource := newArticleResource(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/Article?published=false", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return &testView{
		resource:   resource,
		kind:       resource.Kind,
		canSelect:  true,
		allowsBulk: true,
		base:       NewQuery().WithFilters(map[string]any{"Published": false}).WithPagination(10, 20),
		request:    req,
		perms:      auth.AllowAll,
	}
}

func markPublished(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) {
	return nil, nil
}

func exportArticles(ctx context.Context, v View, r *http.Request, target *Query) (http.Handler, error) {
	return nil, nil
}

// touchAction is a stateful action recording what it was bound to
type touchAction struct {
	view View
}

func (a *touchAction) Init(v View) { a.view = v }

func (a *touchAction) Execute(ctx context.Context, target *Query) (http.Handler, error) {
	return nil, nil
}

func always(View) bool { return true }
func never(View) bool  { return false }
