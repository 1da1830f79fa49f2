// Package sql implements core.Adapter on top of database/sql through sqlx.
package sql

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"go.uber.org/zap"

	"github.com/preslavrachev/backoffice-actions/core"
)

// Adapter implements the core.Adapter interface using sqlx
type Adapter struct {
	db     *sqlx.DB
	logger *SQLLogger
}

// New creates a new SQL adapter. Statement logging starts disabled.
func New(db *sqlx.DB, logger *zap.Logger) *Adapter {
	return NewWithDebug(db, logger, false)
}

// NewWithDebug creates a new SQL adapter with statement logging switched by debugEnabled
func NewWithDebug(db *sqlx.DB, logger *zap.Logger, debugEnabled bool) *Adapter {
	scanner := sqlx.NewDb(db.DB, db.DriverName()).Unsafe()
	scanner.Mapper = reflectx.NewMapperFunc("db", strcase.ToSnake)

	return &Adapter{
		db:     scanner,
		logger: NewSQLLogger(logger, debugEnabled),
	}
}

// SetDebugEnabled enables or disables SQL debug logging
func (a *Adapter) SetDebugEnabled(enabled bool) {
	a.logger.SetEnabled(enabled)
}

// getTableName returns the resource's table or derives it from the model type
func (a *Adapter) getTableName(resource *core.Resource) string {
	if resource.TableName != "" {
		return resource.TableName
	}

	modelType := resource.ModelType
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return strcase.ToSnake(modelType.Name()) + "s"
}

// whereClause renders the filters and key set of the query. Filters are
// emitted in field name order so identical queries produce identical SQL.
func (a *Adapter) whereClause(resource *core.Resource, query *core.Query) (string, []any, error) {
	var conditions []string
	var args []any

	fields := make([]string, 0, len(query.Filters))
	for field := range query.Filters {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	for _, field := range fields {
		if !resource.HasField(field) {
			return "", nil, fmt.Errorf("unknown filter field %q on %s", field, resource.Name)
		}
		conditions = append(conditions, resource.GetColumnName(field)+" = ?")
		args = append(args, query.Filters[field])
	}

	if query.KeyIn != nil {
		if !resource.HasField(query.KeyIn.Field) {
			return "", nil, fmt.Errorf("unknown key field %q on %s", query.KeyIn.Field, resource.Name)
		}
		if len(query.KeyIn.Values) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, resource.GetColumnName(query.KeyIn.Field)+" IN (?)")
			args = append(args, query.KeyIn.Values)
		}
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// orderClause renders the sort fields, skipping fields the model does not declare
func (a *Adapter) orderClause(resource *core.Resource, query *core.Query) string {
	var clauses []string
	for _, sort := range query.Sort {
		if !resource.HasField(sort.Field) {
			continue
		}
		direction := "ASC"
		if sort.Direction == core.SortDesc {
			direction = "DESC"
		}
		clauses = append(clauses, resource.GetColumnName(sort.Field)+" "+direction)
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// bind expands IN placeholders and rebinds to the driver's bindvar style
func (a *Adapter) bind(query string, args []any) (string, []any, error) {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return a.db.Rebind(expanded), expandedArgs, nil
}

// Find retrieves the rows matching the query. Unpaginated queries return every match.
func (a *Adapter) Find(ctx context.Context, resource *core.Resource, query *core.Query) (*core.Result, error) {
	if query == nil {
		return nil, fmt.Errorf("query cannot be nil")
	}

	query.ApplyDefaultSort(resource)

	totalCount, err := a.Count(ctx, resource, query)
	if err != nil {
		return nil, err
	}

	where, args, err := a.whereClause(resource, query)
	if err != nil {
		return nil, err
	}

	queryStr := "SELECT * FROM " + a.getTableName(resource) + where + a.orderClause(resource, query)
	if query.IsPaginated() {
		queryStr += fmt.Sprintf(" LIMIT %d OFFSET %d", query.Pagination.Limit, query.Pagination.Offset)
	}

	queryStr, args, err = a.bind(queryStr, args)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	start := time.Now()
	rows, err := a.db.QueryxContext(ctx, queryStr, args...)
	if err != nil {
		a.logger.LogError(queryStr, args, time.Since(start), err)
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	items := []any{}
	for rows.Next() {
		item := reflect.New(resource.ModelType.Elem()).Interface()
		if err := rows.StructScan(item); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	a.logger.LogQuery(queryStr, args, time.Since(start), len(items))

	hasMore := query.IsPaginated() && int64(query.Pagination.Offset)+int64(len(items)) < totalCount

	return &core.Result{
		Items:      items,
		TotalCount: totalCount,
		HasMore:    hasMore,
		Query:      *query,
	}, nil
}

// Count returns the number of rows matching the query, ignoring pagination
func (a *Adapter) Count(ctx context.Context, resource *core.Resource, query *core.Query) (int64, error) {
	if query == nil {
		query = core.NewQuery()
	}

	where, args, err := a.whereClause(resource, query)
	if err != nil {
		return 0, err
	}

	queryStr, args, err := a.bind("SELECT COUNT(*) FROM "+a.getTableName(resource)+where, args)
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	var count int64
	start := time.Now()
	if err := a.db.GetContext(ctx, &count, queryStr, args...); err != nil {
		a.logger.LogError(queryStr, args, time.Since(start), err)
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	a.logger.LogQuery(queryStr, args, time.Since(start), 1)

	return count, nil
}

// Update sets the given fields on every row matching the query
func (a *Adapter) Update(ctx context.Context, resource *core.Resource, query *core.Query, changes map[string]any) (int64, error) {
	if resource.ReadOnly {
		return 0, fmt.Errorf("resource %s is read-only", resource.Name)
	}
	if len(changes) == 0 {
		return 0, nil
	}

	fields := make([]string, 0, len(changes))
	for field := range changes {
		if !resource.HasField(field) {
			return 0, fmt.Errorf("unknown field %q on %s", field, resource.Name)
		}
		if field == resource.IDField {
			return 0, fmt.Errorf("primary key %s cannot be updated", field)
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	setClauses := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields))
	for _, field := range fields {
		setClauses = append(setClauses, resource.GetColumnName(field)+" = ?")
		values = append(values, changes[field])
	}

	where, args, err := a.whereClause(resource, query)
	if err != nil {
		return 0, err
	}

	queryStr := "UPDATE " + a.getTableName(resource) + " SET " + strings.Join(setClauses, ", ") + where
	return a.execInTx(ctx, queryStr, append(values, args...))
}

// Delete removes every row matching the query in a single transaction
func (a *Adapter) Delete(ctx context.Context, resource *core.Resource, query *core.Query) (int64, error) {
	if resource.ReadOnly {
		return 0, fmt.Errorf("resource %s is read-only", resource.Name)
	}

	where, args, err := a.whereClause(resource, query)
	if err != nil {
		return 0, err
	}

	return a.execInTx(ctx, "DELETE FROM "+a.getTableName(resource)+where, args)
}

func (a *Adapter) execInTx(ctx context.Context, query string, args []any) (int64, error) {
	query, args, err := a.bind(query, args)
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	start := time.Now()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		a.logger.LogError(query, args, time.Since(start), err)
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}
	a.logger.LogExec(query, args, time.Since(start), result)

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return affected, nil
}
