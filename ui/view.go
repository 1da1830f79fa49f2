package ui

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/preslavrachev/backoffice-actions/core"
	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// Layouts a resource list can be rendered in
const (
	LayoutTable = "table"
	LayoutGrid  = "grid"
)

// ListView is the resource list page for one request. It implements core.View.
type ListView struct {
	bo       *core.BackOffice
	resource *core.Resource
	request  *http.Request
	query    *core.Query
	result   *core.Result
	user     *auth.AuthUser
	layout   string
	messages []string
}

var _ core.View = (*ListView)(nil)

// NewListView builds the list view of resource from the request's query parameters
func NewListView(bo *core.BackOffice, resource *core.Resource, r *http.Request) *ListView {
	user, _ := auth.GetAuthUser(r.Context())

	layout := LayoutTable
	if r.URL.Query().Get("layout") == LayoutGrid {
		layout = LayoutGrid
	}

	return &ListView{
		bo:       bo,
		resource: resource,
		request:  r,
		query:    parseQueryFromRequest(r, resource, bo.GetConfig().ItemsPerPage),
		user:     user,
		layout:   layout,
	}
}

// Load fetches the current page of rows
func (v *ListView) Load(ctx context.Context) error {
	result, err := v.bo.GetAdapter().Find(ctx, v.resource, v.query.Clone())
	if err != nil {
		return fmt.Errorf("list %s: %w", v.resource.Name, err)
	}
	v.result = result
	return nil
}

// Items returns the rows of the current page
func (v *ListView) Items() []any {
	if v.result == nil {
		return nil
	}
	return v.result.Items
}

// Result returns the loaded page, or nil before Load
func (v *ListView) Result() *core.Result {
	return v.result
}

// Layout returns LayoutTable or LayoutGrid
func (v *ListView) Layout() string {
	return v.layout
}

// Messages returns the messages queued during this request
func (v *ListView) Messages() []string {
	return v.messages
}

func (v *ListView) Resource() *core.Resource { return v.resource }

func (v *ListView) Kind() *core.ViewKind { return v.resource.Kind }

func (v *ListView) CanSelect() bool { return v.resource.Selectable }

// AllowsBulkActions is false in the grid layout, which shows the action bar
// but does not accept submissions
func (v *ListView) AllowsBulkActions() bool { return v.layout != LayoutGrid }

func (v *ListView) BaseQuery() *core.Query { return v.query.Clone().Unpaginated() }

func (v *ListView) ResultCount() int64 {
	if v.result == nil {
		return 0
	}
	return v.result.TotalCount
}

func (v *ListView) VisibleCount() int { return len(v.Items()) }

func (v *ListView) Adapter() core.Adapter { return v.bo.GetAdapter() }

func (v *ListView) Request() *http.Request { return v.request }

func (v *ListView) User() *auth.AuthUser { return v.user }

func (v *ListView) HasPermission(permission string) bool {
	checker := v.bo.GetConfig().Permissions
	return checker != nil && checker.HasPermission(v.user, permission)
}

func (v *ListView) MessageUser(msg string) {
	if msg != "" {
		v.messages = append(v.messages, msg)
	}
}

func (v *ListView) CurrentURL() string { return currentURL(v.request) }

// parseQueryFromRequest parses URL query parameters into a Query. Every
// parameter that is not reserved is an equality filter on the model field of
// the same name.
func parseQueryFromRequest(r *http.Request, resource *core.Resource, pageSize int) *core.Query {
	query := core.NewQuery()
	params := r.URL.Query()

	filters := make(map[string]any)
	for key, values := range params {
		if len(values) == 0 || isReservedParam(key) || !resource.HasField(key) {
			continue
		}
		if value, err := resource.ParseFieldValue(key, values[0]); err == nil {
			filters[key] = value
		} else {
			filters[key] = values[0]
		}
	}
	query.WithFilters(filters)

	if sortBy := params.Get("sort"); sortBy != "" && resource.HasField(sortBy) {
		direction := core.SortAsc
		if params.Get("direction") == string(core.SortDesc) {
			direction = core.SortDesc
		}
		query.WithSort(sortBy, direction)
	}

	limit := pageSize
	if parsed, err := strconv.Atoi(params.Get("limit")); err == nil {
		limit = parsed
	}
	offset := 0
	if parsed, err := strconv.Atoi(params.Get("offset")); err == nil {
		offset = parsed
	}
	query.WithPagination(limit, offset)

	return query
}

// isReservedParam checks if a parameter is reserved for UI functionality
func isReservedParam(param string) bool {
	reserved := []string{
		"limit", "offset", "sort", "direction",
		"layout", "load_more", "partial",
	}

	for _, r := range reserved {
		if param == r {
			return true
		}
	}
	return false
}
