package load

import (
	"context"
	"strconv"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Loader записывает построенное хранилище в целевое хранилище таблиц.
// Каждая загрузка полностью заменяет содержимое таблиц.
type Loader interface {
	Name() string
	Load(ctx context.Context, w *models.Warehouse) error
}

// formatValue приводит значение к текстовому виду; пустое значение - пустая строка
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return ""
	}
}

// sqlValue приводит значение к аргументу database/sql
func sqlValue(v any) any {
	if p, ok := v.(*float64); ok {
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}
