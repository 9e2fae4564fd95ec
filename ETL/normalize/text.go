package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// CleanName приводит отображаемое имя к NFKC и схлопывает пробелы
func CleanName(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// FoldKey строит ключ сравнения имен: без диакритики, без учета регистра, с единичными пробелами
func FoldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return folder.String(CleanName(stripped))
}

// Code обрезает пробелы и переводит код в верхний регистр
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
