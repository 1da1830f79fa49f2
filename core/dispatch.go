package core

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Redirect sends the client back to the page a bulk action was submitted
// from, so the following GET renders the rows as they are after the action
type Redirect struct {
	URL string
}

// ServeHTTP implements http.Handler
func (rd *Redirect) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, rd.URL, http.StatusSeeOther)
}

// Dispatcher executes bulk action submissions against a list view
type Dispatcher struct {
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher logging to logger
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Dispatch handles one submission on v.
//
// Without an "action" field, fallback is returned untouched. Unknown actions,
// listings that refuse bulk actions and empty selections queue exactly one
// user message and return fallback. Otherwise the action runs once against
// the resolved target query: a handler it returns is passed through, and no
// handler yields a Redirect to v.CurrentURL(). Errors from the action are
// returned as is, wrapped with the action key; nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, v View, reg *Registry, fallback http.Handler) (http.Handler, error) {
	r := v.Request()
	if err := r.ParseForm(); err != nil {
		d.logger.Warn("bulk action form unreadable", zap.Error(err))
		return fallback, nil
	}

	if _, submitted := r.PostForm[ActionField]; !submitted {
		return fallback, nil
	}

	key := r.PostForm.Get(ActionField)
	action, ok := reg.Get(key)
	if !ok || !v.AllowsBulkActions() || !IsModelBacked(v) {
		d.reject(v, key, ErrIllegalAction)
		return fallback, nil
	}

	selection, err := ResolveSelection(
		r.PostForm[ActionCheckboxName],
		IsSelectAcross(r.PostForm.Get(SelectAcrossField)),
	)
	if err != nil {
		d.reject(v, key, err)
		return fallback, nil
	}

	target := selection.Apply(v.BaseQuery(), v.Resource())

	d.logger.Info("dispatching bulk action",
		zap.String("resource", v.Resource().Name),
		zap.String("action", key),
		zap.Stringer("handler", action.Handler.Kind()),
		zap.String("selection", selection.Mode()),
		zap.Int("keys", len(selection.Keys())))

	response, err := invoke(ctx, action, v, target)
	if err != nil {
		d.logger.Error("bulk action failed", zap.String("action", key), zap.Error(err))
		return nil, fmt.Errorf("action %s: %w", key, err)
	}

	if response != nil {
		return response, nil
	}
	return &Redirect{URL: v.CurrentURL()}, nil
}

func (d *Dispatcher) reject(v View, key string, reason error) {
	d.logger.Info("bulk action rejected", zap.String("action", key), zap.Error(reason))
	v.MessageUser(UserMessage(reason))
}

// invoke runs the action's handler against the target query
func invoke(ctx context.Context, action Action, v View, target *Query) (http.Handler, error) {
	switch action.Handler.kind {
	case HandlerStateful:
		instance := action.Handler.actionType.New()
		instance.Init(v)
		return instance.Execute(ctx, target)
	case HandlerFunc:
		return action.Handler.fn(ctx, v, v.Request(), target)
	}
	return nil, fmt.Errorf("%w: action %q has no handler", ErrIllegalAction, action.Key)
}
