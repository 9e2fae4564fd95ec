package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var groupedNumber = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// RawRecord представляет сырую запись источника: имя поля -> строковое или числовое значение
type RawRecord map[string]any

// Поля записи транзакции помощи
const (
	FieldIATIID              = "iati_id"
	FieldValueUSD            = "value_usd"
	FieldTransactionDate     = "transaction_date"
	FieldDate                = "date"
	FieldHumanitarian        = "humanitarian"
	FieldCountry             = "country"
	FieldCountryCode         = "country_code"
	FieldCountryName         = "country_name"
	FieldSectorCode          = "sector_code"
	FieldSectorName          = "sector_name"
	FieldReportingOrg        = "reporting_org"
	FieldReportingOrgType    = "reporting_org_type"
	FieldReportingOrgRole    = "reporting_org_role"
	FieldAidTypeCode         = "aid_type_code"
	FieldAidTypeName         = "aid_type_name"
	FieldTransactionTypeCode = "transaction_type_code"
	FieldTransactionTypeName = "transaction_type_name"
)

// Поля записи страновых показателей
const (
	FieldYear         = "year"
	FieldPopulation   = "population"
	FieldGDPPerCapita = "gdp_per_capita"
)

// String возвращает первое непустое значение среди указанных полей в виде обрезанной строки
func (r RawRecord) String(names ...string) (string, bool) {
	for _, name := range names {
		v, ok := r[name]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(formatRawValue(v))
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// Float разбирает поле как конечное число. Второй результат false, если поле отсутствует
func (r RawRecord) Float(name string) (float64, bool, error) {
	v, ok := r[name]
	if !ok || v == nil {
		return 0, false, nil
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	default:
		s := strings.TrimSpace(formatRawValue(v))
		if s == "" {
			return 0, false, nil
		}
		if strings.Contains(s, ",") {
			// Допускаются только запятые-разделители разрядов; десятичная запятая неоднозначна
			if !groupedNumber.MatchString(s) {
				return 0, true, fmt.Errorf("значение %q не является числом", s)
			}
			s = strings.ReplaceAll(s, ",", "")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, fmt.Errorf("значение %q не является числом", s)
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, fmt.Errorf("значение %v не является конечным числом", f)
	}
	return f, true, nil
}

func formatRawValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
