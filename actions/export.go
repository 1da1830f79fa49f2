package actions

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/preslavrachev/backoffice-actions/core"
)

// ExportCSV streams the selected rows as a CSV download
var ExportCSV = &core.ActionType{
	TypeName:      "ExportCSVAction",
	Name:          "export_csv",
	VerboseName:   "Export selected {verbose_name_plural} as CSV",
	Icon:          "download",
	HasPermission: canExport,
	New:           func() core.StatefulAction { return &exportCSV{} },
}

// ExportPermission is the permission required to export rows of resource
func ExportPermission(resource *core.Resource) string {
	return "export_" + strcase.ToSnake(resource.Name)
}

func canExport(v core.View) bool {
	resource := v.Resource()
	return resource != nil && v.HasPermission(ExportPermission(resource))
}

type exportCSV struct {
	view core.View
}

func (a *exportCSV) Init(v core.View) {
	a.view = v
}

func (a *exportCSV) Execute(ctx context.Context, target *core.Query) (http.Handler, error) {
	resource := a.view.Resource()

	result, err := a.view.Adapter().Find(ctx, resource, target)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", resource.TableName, err)
	}

	fields := resource.FieldNames()
	records := make([][]string, 0, len(result.Items)+1)

	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = resource.GetColumnName(field)
	}
	records = append(records, header)

	for _, item := range result.Items {
		record := make([]string, len(fields))
		for i, field := range fields {
			record[i] = csvValue(core.GetFieldValue(item, field))
		}
		records = append(records, record)
	}

	filename := fmt.Sprintf("%s.csv", resource.TableName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_ = csv.NewWriter(w).WriteAll(records)
	}), nil
}

func csvValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", value)
}
