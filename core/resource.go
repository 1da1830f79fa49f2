package core

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// Resource represents a registered resource with its metadata
type Resource struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	PluralName  string       `json:"plural_name"`
	Model       any          `json:"-"`
	ModelType   reflect.Type `json:"-"`
	IDField     string       `json:"id_field"`
	TableName   string       `json:"table_name"`
	Hidden      bool         `json:"hidden"`
	ReadOnly    bool         `json:"read_only"`
	DefaultSort SortField    `json:"default_sort"`

	// Selectable controls the action checkbox column and the action bar
	Selectable bool `json:"selectable"`

	// Kind is the list view kind whose chain declares the resource's actions
	Kind *ViewKind `json:"-"`
}

// VerboseName is the lower-cased singular display name used in action labels
func (r *Resource) VerboseName() string {
	return strings.ToLower(r.DisplayName)
}

// VerboseNamePlural is the lower-cased plural display name used in action labels
func (r *Resource) VerboseNamePlural() string {
	return strings.ToLower(r.PluralName)
}

// GetEffectiveDefaultSort returns the default sort for this resource:
// explicit configuration first, then a CreatedAt field, then the ID field
func (r *Resource) GetEffectiveDefaultSort() SortField {
	if r.DefaultSort.Field != "" {
		return r.DefaultSort
	}

	t := r.structType()
	for i := 0; i < t.NumField(); i++ {
		name := strings.ToLower(t.Field(i).Name)
		if name == "createdat" || name == "created_at" {
			return SortField{Field: t.Field(i).Name, Direction: SortDesc}
		}
	}

	return SortField{Field: r.IDField, Direction: SortAsc}
}

// DiscoverPrimaryKey finds the primary key field of the model
func (r *Resource) DiscoverPrimaryKey() error {
	t := r.structType()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.IsExported() && isPrimaryKeyField(field) {
			r.IDField = field.Name
			return nil
		}
	}

	return fmt.Errorf("no primary key field found in struct %s", t.Name())
}

// ParseKey converts a submitted row identifier into a value of the primary key's type
func (r *Resource) ParseKey(raw string) (any, error) {
	return r.ParseFieldValue(r.IDField, raw)
}

// ParseFieldValue converts a submitted string into a value of the field's type
func (r *Resource) ParseFieldValue(fieldName, raw string) (any, error) {
	field, ok := r.structType().FieldByName(fieldName)
	if !ok {
		return nil, fmt.Errorf("field %s not found on %s", fieldName, r.Name)
	}

	switch field.Type.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 10, field.Type.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", fieldName, raw, err)
		}
		return reflect.ValueOf(v).Convert(field.Type).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, field.Type.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", fieldName, raw, err)
		}
		return reflect.ValueOf(v).Convert(field.Type).Interface(), nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", fieldName, raw, err)
		}
		return reflect.ValueOf(v).Convert(field.Type).Interface(), nil
	case reflect.String:
		return reflect.ValueOf(raw).Convert(field.Type).Interface(), nil
	}

	return nil, fmt.Errorf("unsupported type %s for field %s", field.Type, fieldName)
}

// KeyOf returns the primary key value of an item as a string
func (r *Resource) KeyOf(item any) string {
	value := GetFieldValue(item, r.IDField)
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// GetColumnName resolves the database column name for a field following priority order:
// 1. Struct tag parsing (db, gorm, json)
// 2. Snake_case fallback
func (r *Resource) GetColumnName(fieldName string) string {
	if columnName := r.parseStructTags(fieldName); columnName != "" {
		return columnName
	}
	return strcase.ToSnake(fieldName)
}

// parseStructTags extracts database column name from struct tags
// Priority order: db -> gorm -> json
func (r *Resource) parseStructTags(fieldName string) string {
	field, exists := r.structType().FieldByName(fieldName)
	if !exists {
		return ""
	}

	if dbTag := field.Tag.Get("db"); dbTag != "" && dbTag != "-" {
		return dbTag
	}

	// gorm tag (format: gorm:"column:name")
	if gormTag := field.Tag.Get("gorm"); strings.Contains(gormTag, "column:") {
		columnPart := strings.TrimSpace(strings.SplitN(gormTag, "column:", 2)[1])
		if idx := strings.IndexAny(columnPart, ";,"); idx != -1 {
			columnPart = columnPart[:idx]
		}
		return strings.TrimSpace(columnPart)
	}

	if jsonTag := field.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
		name, _, _ := strings.Cut(jsonTag, ",")
		return name
	}

	return ""
}

func (r *Resource) structType() reflect.Type {
	t := r.ModelType
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// isPrimaryKeyField checks the db tag, then falls back to a field named ID
func isPrimaryKeyField(field reflect.StructField) bool {
	dbTag := field.Tag.Get("db")
	if dbTag == "id" || strings.Contains(dbTag, "primary") {
		return true
	}
	return field.Name == "ID"
}

// GetFieldValue extracts field value from a struct using reflection
func GetFieldValue(item any, fieldName string) any {
	if item == nil {
		return nil
	}

	val := reflect.ValueOf(item)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil
	}

	field := val.FieldByName(fieldName)
	if !field.IsValid() {
		return nil
	}

	return field.Interface()
}

// HasField reports whether the model declares an exported field named fieldName
func (r *Resource) HasField(fieldName string) bool {
	field, ok := r.structType().FieldByName(fieldName)
	return ok && field.IsExported()
}

// FieldNames returns the exported field names of the model in declaration order
func (r *Resource) FieldNames() []string {
	t := r.structType()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if field := t.Field(i); field.IsExported() && !field.Anonymous {
			names = append(names, field.Name)
		}
	}
	return names
}
