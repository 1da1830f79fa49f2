// Package ui serves the admin list pages and their bulk action submissions.
package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/preslavrachev/backoffice-actions/core"
	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// Handler returns an HTTP handler for the admin panel mounted on the configured base path
func Handler(bo *core.BackOffice) http.Handler {
	basePath := strings.TrimRight(bo.GetConfig().BasePath, "/")

	handler := &BackOfficeHandler{
		bo:         bo,
		basePath:   basePath,
		dispatcher: core.NewDispatcher(bo.Logger()),
		flash:      NewFlashStore(),
		logger:     bo.Logger().Named("ui"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(basePath+"/", handler.indexHandler)

	var finalHandler http.Handler = mux
	for i := len(bo.GetConfig().Middleware) - 1; i >= 0; i-- {
		finalHandler = bo.GetConfig().Middleware[i](finalHandler)
	}
	if authConfig := bo.GetAuth(); authConfig != nil {
		finalHandler = auth.CreateAuthMiddleware(authConfig)(finalHandler)
	}

	return finalHandler
}

// BackOfficeHandler wraps BackOffice to provide HTTP handler methods
type BackOfficeHandler struct {
	bo         *core.BackOffice
	basePath   string
	dispatcher *core.Dispatcher
	flash      *FlashStore
	logger     *zap.Logger
}

// indexHandler routes the index page and the resource list pages
func (h *BackOfficeHandler) indexHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, h.basePath), "/")

	if path == "" {
		h.renderIndex(w, r)
		return
	}

	if strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	resource, exists := h.bo.GetResource(path)
	if !exists || resource.Hidden {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.renderResourceList(w, r, resource)
	case http.MethodPost:
		h.handleBulkAction(w, r, resource)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		h.writeHTTPError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BackOfficeHandler) renderIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetAuthUser(r.Context())
	page := Layout(h.bo.GetConfig().Title, user, Index(h.basePath, h.bo.GetResources()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("render index", zap.Error(err))
	}
}

// renderResourceList serves the list page, showing messages left by the
// previous bulk action
func (h *BackOfficeHandler) renderResourceList(w http.ResponseWriter, r *http.Request, resource *core.Resource) {
	view := NewListView(h.bo, resource, r)
	if err := view.Load(r.Context()); err != nil {
		h.logger.Error("load list", zap.String("resource", resource.Name), zap.Error(err))
		h.writeHTTPError(w, "Failed to load items", http.StatusInternalServerError)
		return
	}

	for _, msg := range h.flash.Pop(w, r, h.basePath+"/") {
		view.MessageUser(msg)
	}

	h.renderList(w, r, view, h.bo.ActionsFor(view))
}

// handleBulkAction dispatches a bulk action submission from a list page
func (h *BackOfficeHandler) handleBulkAction(w http.ResponseWriter, r *http.Request, resource *core.Resource) {
	view := NewListView(h.bo, resource, r)
	if err := view.Load(r.Context()); err != nil {
		h.logger.Error("load list", zap.String("resource", resource.Name), zap.Error(err))
		h.writeHTTPError(w, "Failed to load items", http.StatusInternalServerError)
		return
	}

	reg := h.bo.ActionsFor(view)
	fallback := &listPage{h: h, view: view, reg: reg}

	response, err := h.dispatcher.Dispatch(r.Context(), view, reg, fallback)
	if err != nil {
		h.logger.Error("bulk action", zap.String("resource", resource.Name), zap.Error(err))
		h.writeHTTPErrorWithToast(w, "The action failed", http.StatusInternalServerError, "error")
		return
	}

	// anything but the inline list page leaves this request, so messages
	// have to wait for the next page load
	if _, inline := response.(*listPage); !inline {
		h.flash.Save(w, h.basePath+"/", view.Messages())
	}

	response.ServeHTTP(w, r)
}

// listPage renders a loaded list view; it is the dispatcher's fallback response
type listPage struct {
	h    *BackOfficeHandler
	view *ListView
	reg  *core.Registry
}

func (p *listPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.h.renderList(w, r, p.view, p.reg)
}

func (h *BackOfficeHandler) renderList(w http.ResponseWriter, r *http.Request, view *ListView, reg *core.Registry) {
	bar, showBar := BuildActionBar(view, reg)
	if reg.Len() == 0 {
		showBar = false
	}

	data := ListPageData{
		View:     view,
		Bar:      bar,
		ShowBar:  showBar,
		Messages: view.Messages(),
		BasePath: h.basePath,
	}

	if result := view.Result(); result != nil && result.Query.IsPaginated() {
		page := result.Query.Pagination
		if page.Offset > 0 {
			data.PrevPageURL = NewAdminURL(h.basePath, view.Resource().Name).
				PreserveFromRequest(r).
				WithPagination(max(page.Offset-page.Limit, 0), page.Limit).
				String()
		}
		if result.HasMore {
			next := result.Query.NextPage().Pagination
			data.NextPageURL = NewAdminURL(h.basePath, view.Resource().Name).
				PreserveFromRequest(r).
				WithPagination(next.Offset, next.Limit).
				String()
		}
	}

	if len(data.Messages) > 0 {
		h.setToast(w, strings.Join(data.Messages, " "), "info")
	}

	page := Layout(view.Resource().PluralName, view.User(), List(data))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.logger.Error("render list", zap.String("resource", view.Resource().Name), zap.Error(err))
	}
}

// setToast asks the HTMX front end to show a toast notification
func (h *BackOfficeHandler) setToast(w http.ResponseWriter, message, toastType string) {
	payload, err := json.Marshal(map[string]any{
		"showToast": map[string]string{"message": message, "type": toastType},
	})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// writeHTTPError writes an HTTP error response
func (h *BackOfficeHandler) writeHTTPError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, "<html><body><h1>Error %d</h1><p>%s</p></body></html>", statusCode, message)
}

// writeHTTPErrorWithToast writes an HTTP error response with toast notification
func (h *BackOfficeHandler) writeHTTPErrorWithToast(w http.ResponseWriter, message string, statusCode int, toastType string) {
	h.setToast(w, message, toastType)
	h.writeHTTPError(w, message, statusCode)
}
