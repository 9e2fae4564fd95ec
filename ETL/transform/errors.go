package transform

import (
	"errors"
	"fmt"
)

// NormalizationError - значение не удалось привести к каноническому естественному ключу
type NormalizationError struct {
	Dimension string
	Value     string
	Reason    string
}

func (e *NormalizationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Dimension, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %q", e.Dimension, e.Reason, e.Value)
}

// DateParseError - дата не разбирается или лежит вне допустимого диапазона
type DateParseError struct {
	Value  string
	Reason string
}

func (e *DateParseError) Error() string {
	if e.Value == "" {
		return "дата: " + e.Reason
	}
	return fmt.Sprintf("дата %q: %s", e.Value, e.Reason)
}

// ValidationError - обязательное поле записи отсутствует или некорректно
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("поле %s: %s", e.Field, e.Reason)
}

// DuplicateError - запись повторяет уже принятый идентификатор
type DuplicateError struct {
	Table string
	Key   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: идентификатор %s уже принят", e.Table, e.Key)
}

// DimensionError указывает измерение, разрешение которого не удалось
type DimensionError struct {
	Dimension string
	Err       error
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("измерение %s: %v", e.Dimension, e.Err)
}

func (e *DimensionError) Unwrap() error {
	return e.Err
}

// failedDimension возвращает имя измерения из цепочки ошибок, если оно есть
func failedDimension(err error) string {
	var dimErr *DimensionError
	if errors.As(err, &dimErr) {
		return dimErr.Dimension
	}
	return ""
}
