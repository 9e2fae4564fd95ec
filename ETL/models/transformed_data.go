package models

// Rejection описывает запись, отклоненную на уровне отдельной записи
type Rejection struct {
	Table     string `json:"table" yaml:"table"`
	RecordID  string `json:"record_id" yaml:"record_id"`
	Dimension string `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Reason    string `json:"reason" yaml:"reason"`
}

// Warning описывает конфликт атрибутов или иное некритичное замечание
type Warning struct {
	Table  string `json:"table" yaml:"table"`
	Key    string `json:"key" yaml:"key"`
	Reason string `json:"reason" yaml:"reason"`
}

// TableStats содержит счетчики по одной таблице
type TableStats struct {
	Rows     int `json:"rows" yaml:"rows"`
	Ingested int `json:"ingested" yaml:"ingested"`
	Rejected int `json:"rejected" yaml:"rejected"`
	Warned   int `json:"warned" yaml:"warned"`
	Revised  int `json:"revised,omitempty" yaml:"revised,omitempty"`
}

// BuildSummary содержит сводку построения хранилища по таблицам
type BuildSummary struct {
	RunID  string                `json:"run_id" yaml:"run_id"`
	Status string                `json:"status" yaml:"status"`
	Tables map[string]TableStats `json:"tables" yaml:"tables"`
	Error  string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// Totals возвращает суммарные счетчики по всем таблицам
func (s BuildSummary) Totals() TableStats {
	var total TableStats
	for _, t := range s.Tables {
		total.Rows += t.Rows
		total.Ingested += t.Ingested
		total.Rejected += t.Rejected
		total.Warned += t.Warned
		total.Revised += t.Revised
	}
	return total
}

// Warehouse содержит итоговые таблицы звездной схемы, готовые к записи
type Warehouse struct {
	// Измерения
	Times            []TimeDimension
	Countries        []CountryDimension
	Sectors          []SectorDimension
	Organizations    []OrganizationDimension
	AidTypes         []AidTypeDimension
	TransactionTypes []TransactionTypeDimension

	// Факты
	AidTransactions []AidTransactionFact
	CountryContexts []CountryContextFact

	// Дополнительные показатели fact_country_context в порядке столбцов
	ExtraIndicators []string

	// Журналы
	Rejections []Rejection
	Warnings   []Warning

	// Обобщенные строки измерений для проверки целостности
	DimensionRows map[string][]DimensionRow

	Summary BuildSummary
}
