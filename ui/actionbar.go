package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/preslavrachev/backoffice-actions/core"
)

// MaxVisibleActions is the number of actions rendered as buttons; the rest go
// into the overflow menu
const MaxVisibleActions = 5

// ActionChoice is one selectable action in the action bar
type ActionChoice struct {
	Key   string
	Label string
	Icon  string
}

// ActionBar is everything the list page needs to render the bulk action controls
type ActionBar struct {
	SelectionNoteNone string
	SelectionNoteAll  string
	Visible           []ActionChoice
	Overflow          []ActionChoice
	ResultCount       int64
	Enabled           bool
}

// BuildActionBar turns the view's registry into the action bar payload. The
// bool is false when the view has no rows to act on.
func BuildActionBar(v core.View, reg *core.Registry) (ActionBar, bool) {
	count := v.ResultCount()
	if count == 0 {
		return ActionBar{}, false
	}

	bar := ActionBar{
		SelectionNoteNone: fmt.Sprintf("0 of %d selected", v.VisibleCount()),
		SelectionNoteAll:  fmt.Sprintf("All %d selected", count),
		ResultCount:       count,
		Enabled:           v.AllowsBulkActions(),
	}
	if count == 1 {
		bar.SelectionNoteAll = "1 selected"
	}

	var resource *core.Resource
	if core.IsModelBacked(v) {
		resource = v.Resource()
	}

	for i, action := range reg.Actions() {
		choice := ActionChoice{
			Key:   action.Key,
			Label: core.FormatLabel(action.DisplayName, resource),
			Icon:  action.Icon,
		}
		if i < MaxVisibleActions {
			bar.Visible = append(bar.Visible, choice)
		} else {
			bar.Overflow = append(bar.Overflow, choice)
		}
	}

	return bar, true
}

// ActionBarComponent renders the action bar. It must be placed inside the
// list form so its controls submit together with the row checkboxes.
func ActionBarComponent(bar ActionBar) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		disabled := ""
		if !bar.Enabled {
			disabled = " disabled"
		}

		if _, err := fmt.Fprintf(w, `<div class="actions" data-result-count="%d">
<span class="action-counter" data-note-none="%s" data-note-all="%s">%s</span>
<label class="select-across"><input type="checkbox" name="%s" value="%s"%s> %s</label>
`,
			bar.ResultCount,
			templ.EscapeString(bar.SelectionNoteNone),
			templ.EscapeString(bar.SelectionNoteAll),
			templ.EscapeString(bar.SelectionNoteNone),
			core.SelectAcrossField, core.SelectAcrossEnabled, disabled,
			templ.EscapeString(bar.SelectionNoteAll)); err != nil {
			return err
		}

		for _, choice := range bar.Visible {
			if _, err := fmt.Fprintf(w, `<button type="submit" name="%s" value="%s" data-icon="%s"%s>%s</button>
`,
				core.ActionField,
				templ.EscapeString(choice.Key),
				templ.EscapeString(choice.Icon),
				disabled,
				templ.EscapeString(choice.Label)); err != nil {
				return err
			}
		}

		if len(bar.Overflow) > 0 {
			if _, err := fmt.Fprintf(w, `<select name="%s"%s>
<option value="">More actions</option>
`, core.ActionField, disabled); err != nil {
				return err
			}
			for _, choice := range bar.Overflow {
				if _, err := fmt.Fprintf(w, `<option value="%s" data-icon="%s">%s</option>
`,
					templ.EscapeString(choice.Key),
					templ.EscapeString(choice.Icon),
					templ.EscapeString(choice.Label)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, `</select>
<button type="submit"%s>Go</button>
`, disabled); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}
