package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/preslavrachev/backoffice-actions/core"
	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// ListPageData is what the list page template renders
type ListPageData struct {
	View        *ListView
	Bar         ActionBar
	ShowBar     bool
	Messages    []string
	PrevPageURL string
	NextPageURL string
	BasePath    string
}

// Layout wraps content in the admin page chrome
func Layout(title string, user *auth.AuthUser, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
</head>
<body>
`, templ.EscapeString(title)); err != nil {
			return err
		}
		if user != nil {
			if _, err := fmt.Fprintf(w, "<header class=\"user\">Signed in as %s</header>\n", templ.EscapeString(user.Username)); err != nil {
				return err
			}
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// Index lists the registered resources
func Index(basePath string, resources []*core.Resource) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Administration</h1>\n<ul class=\"resources\">\n"); err != nil {
			return err
		}
		for _, resource := range resources {
			if resource.Hidden {
				continue
			}
			if _, err := fmt.Fprintf(w, "<li><a href=\"%s\">%s</a></li>\n",
				templ.EscapeString(NewAdminURL(basePath, resource.Name).String()),
				templ.EscapeString(resource.PluralName)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

// MessageList renders the user messages of the current request
func MessageList(messages []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(messages) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, "<ul class=\"messages\">\n"); err != nil {
			return err
		}
		for _, msg := range messages {
			if _, err := fmt.Fprintf(w, "<li>%s</li>\n", templ.EscapeString(msg)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

// List renders the resource list with its action checkbox column. Rows and
// action bar share one form posting back to the current URL.
func List(data ListPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		view := data.View
		resource := view.Resource()
		fields := resource.FieldNames()
		selectable := view.CanSelect() && data.ShowBar

		if _, err := fmt.Fprintf(w, "<h1>%s</h1>\n", templ.EscapeString(resource.PluralName)); err != nil {
			return err
		}
		if err := MessageList(data.Messages).Render(ctx, w); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "<form method=\"post\" action=\"%s\" id=\"changelist-form\">\n",
			templ.EscapeString(view.CurrentURL())); err != nil {
			return err
		}
		if data.ShowBar {
			if err := ActionBarComponent(data.Bar).Render(ctx, w); err != nil {
				return err
			}
		}

		var err error
		if view.Layout() == LayoutGrid {
			err = renderGrid(w, view, fields, selectable)
		} else {
			err = renderTable(w, view, fields, selectable)
		}
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, "</form>\n"); err != nil {
			return err
		}
		return renderPager(w, data)
	})
}

func renderTable(w io.Writer, view *ListView, fields []string, selectable bool) error {
	resource := view.Resource()

	var b strings.Builder
	b.WriteString("<table class=\"result-list\">\n<thead><tr>")
	if selectable {
		b.WriteString(`<th class="action-checkbox-column"><input type="checkbox" id="action-toggle" ` +
			`onclick="document.querySelectorAll('input.action-select').forEach(c => c.checked = this.checked)"></th>`)
	}
	for _, field := range fields {
		b.WriteString("<th>" + templ.EscapeString(field) + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")

	if len(view.Items()) == 0 {
		colspan := len(fields)
		if selectable {
			colspan++
		}
		fmt.Fprintf(&b, "<tr><td colspan=\"%d\">0 %s</td></tr>\n", colspan, templ.EscapeString(resource.VerboseNamePlural()))
	}

	for _, item := range view.Items() {
		b.WriteString("<tr>")
		if selectable {
			b.WriteString("<td class=\"action-checkbox\">" + actionCheckbox(resource, item) + "</td>")
		}
		for _, field := range fields {
			b.WriteString("<td>" + formatCell(core.GetFieldValue(item, field)) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderGrid(w io.Writer, view *ListView, fields []string, selectable bool) error {
	resource := view.Resource()

	var b strings.Builder
	b.WriteString("<div class=\"result-grid\">\n")
	for _, item := range view.Items() {
		b.WriteString("<div class=\"card\">")
		if selectable {
			b.WriteString(actionCheckbox(resource, item))
		}
		b.WriteString("<dl>")
		for _, field := range fields {
			b.WriteString("<dt>" + templ.EscapeString(field) + "</dt><dd>" + formatCell(core.GetFieldValue(item, field)) + "</dd>")
		}
		b.WriteString("</dl></div>\n")
	}
	b.WriteString("</div>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// actionCheckbox renders the per-row selection checkbox carrying the row key
func actionCheckbox(resource *core.Resource, item any) string {
	return fmt.Sprintf(`<input type="checkbox" class="action-select" name="%s" value="%s">`,
		core.ActionCheckboxName, templ.EscapeString(resource.KeyOf(item)))
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return `<span class="bool-true">&#10003;</span>`
		}
		return `<span class="bool-false">&#10007;</span>`
	case fmt.Stringer:
		return templ.EscapeString(v.String())
	}
	return templ.EscapeString(fmt.Sprintf("%v", value))
}

func renderPager(w io.Writer, data ListPageData) error {
	if data.PrevPageURL == "" && data.NextPageURL == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString("<nav class=\"paginator\">")
	if data.PrevPageURL != "" {
		b.WriteString(`<a rel="prev" href="` + templ.EscapeString(data.PrevPageURL) + `">Previous</a>`)
	}
	if data.NextPageURL != "" {
		b.WriteString(`<a rel="next" href="` + templ.EscapeString(data.NextPageURL) + `">Next</a>`)
	}
	b.WriteString("</nav>\n")

	_, err := io.WriteString(w, b.String())
	return err
}
