// Package actions provides the built-in bulk actions.
package actions

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/iancoleman/strcase"

	"github.com/preslavrachev/backoffice-actions/core"
)

// Confirmation form field re-posted by the delete confirmation page
const (
	ConfirmField = "post"
	ConfirmValue = "yes"
)

// DeleteSelected deletes the selected rows after a confirmation page
var DeleteSelected = &core.ActionType{
	TypeName:      "DeleteSelectedAction",
	Name:          "delete_selected",
	VerboseName:   "Delete selected {verbose_name_plural}",
	Icon:          "trash",
	HasPermission: canDelete,
	New:           func() core.StatefulAction { return &deleteSelected{} },
}

// Baseline returns the actions offered on every model-backed list view
func Baseline() []core.ActionEntry {
	return []core.ActionEntry{core.Stateful(DeleteSelected)}
}

// DeletePermission is the permission required to bulk delete rows of resource
func DeletePermission(resource *core.Resource) string {
	return "delete_" + strcase.ToSnake(resource.Name)
}

func canDelete(v core.View) bool {
	resource := v.Resource()
	if resource == nil || resource.ReadOnly {
		return false
	}
	return v.HasPermission(DeletePermission(resource))
}

type deleteSelected struct {
	view core.View
}

func (a *deleteSelected) Init(v core.View) {
	a.view = v
}

func (a *deleteSelected) Execute(ctx context.Context, target *core.Query) (http.Handler, error) {
	resource := a.view.Resource()
	adapter := a.view.Adapter()

	if a.view.Request().PostForm.Get(ConfirmField) != ConfirmValue {
		count, err := adapter.Count(ctx, resource, target)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", resource.TableName, err)
		}
		return templ.Handler(confirmDeletePage(a.view, count)), nil
	}

	deleted, err := adapter.Delete(ctx, resource, target)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", resource.TableName, err)
	}

	noun := resource.VerboseNamePlural()
	if deleted == 1 {
		noun = resource.VerboseName()
	}
	a.view.MessageUser(fmt.Sprintf("Successfully deleted %d %s.", deleted, noun))
	return nil, nil
}

// confirmDeletePage asks the user to confirm and re-posts the same selection
func confirmDeletePage(v core.View, count int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		resource := v.Resource()
		form := v.Request().PostForm

		noun := resource.VerboseNamePlural()
		if count == 1 {
			noun = resource.VerboseName()
		}

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>%s</title></head><body>
<h1>Are you sure?</h1>
<p>You are about to delete %d %s. This cannot be undone.</p>
<form method="post" action="%s">
`,
			templ.EscapeString("Delete "+resource.PluralName),
			count,
			templ.EscapeString(noun),
			templ.EscapeString(v.CurrentURL())); err != nil {
			return err
		}

		hidden := []struct{ name, value string }{
			{core.ActionField, form.Get(core.ActionField)},
			{ConfirmField, ConfirmValue},
		}
		if core.IsSelectAcross(form.Get(core.SelectAcrossField)) {
			hidden = append(hidden, struct{ name, value string }{core.SelectAcrossField, core.SelectAcrossEnabled})
		}
		for _, key := range form[core.ActionCheckboxName] {
			hidden = append(hidden, struct{ name, value string }{core.ActionCheckboxName, key})
		}

		for _, field := range hidden {
			if _, err := fmt.Fprintf(w, `<input type="hidden" name="%s" value="%s">
`, templ.EscapeString(field.name), templ.EscapeString(field.value)); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, `<button type="submit">Yes, I'm sure</button>
<a href="%s">No, take me back</a>
</form>
</body></html>`, templ.EscapeString(v.CurrentURL()))
		return err
	})
}
