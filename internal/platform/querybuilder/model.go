package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var columnCache sync.Map // reflect.Type -> []modelColumn

type modelColumn struct {
	name  string
	index int
}

// InsertModel builds a single-row INSERT from the `db` tags of a struct.
// Untagged and `db:"-"` fields are skipped.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	columns := modelColumns(value.Type())
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("model %s has no db columns", value.Type())
	}

	names := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		names[i] = col.name
		values[i] = value.Field(col.index).Interface()
	}
	return InsertInto(table).Columns(names...).Values(values...).Suffix(suffix).ToSQL()
}

func modelColumns(typ reflect.Type) []modelColumn {
	if cached, ok := columnCache.Load(typ); ok {
		return cached.([]modelColumn)
	}

	columns := make([]modelColumn, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, modelColumn{name: name, index: i})
	}
	columnCache.Store(typ, columns)
	return columns
}
