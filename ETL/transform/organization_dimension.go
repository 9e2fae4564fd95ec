package transform

import (
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

// Роли организаций
const (
	RoleFunder  = "funder"
	RoleUnknown = "unknown"
)

// OrganizationDimensionProcessor отвечает за измерение организаций.
// Естественный ключ - (имя без учета регистра и диакритики, тип организации).
type OrganizationDimensionProcessor struct {
	*DimensionTable
	lookups *normalize.Lookups
}

// NewOrganizationDimensionProcessor создает новый экземпляр OrganizationDimensionProcessor
func NewOrganizationDimensionProcessor(resolver *keys.Resolver, log *BuildLog, lookups *normalize.Lookups) *OrganizationDimensionProcessor {
	return &OrganizationDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimOrganization, []string{"org_name", "org_type", "role"}, resolver, log),
		lookups:        lookups,
	}
}

// Normalize строит член организации, отчитывающейся о транзакции
func (p *OrganizationDimensionProcessor) Normalize(raw models.RawRecord) (Member, error) {
	value, ok := raw.String(models.FieldReportingOrg)
	if !ok {
		return orgMember(unknownName, unknownCode, RoleUnknown), nil
	}

	name := normalize.CleanName(value)
	orgType := unknownCode
	if t, ok := raw.String(models.FieldReportingOrgType); ok {
		orgType = normalize.Code(t)
	}

	role := RoleFunder
	if r, ok := raw.String(models.FieldReportingOrgRole); ok {
		if mapped, known := p.lookups.OrgRole(r); known {
			role = mapped
		} else {
			role = normalize.FoldKey(r)
		}
	}

	return orgMember(name, orgType, role), nil
}

// Ingest нормализует запись и фиксирует организацию
func (p *OrganizationDimensionProcessor) Ingest(raw models.RawRecord) (int, error) {
	return Ingest(p, raw)
}

func orgMember(name, orgType, role string) Member {
	return Member{
		NaturalKey: models.NaturalKey{normalize.FoldKey(name), orgType},
		Attributes: map[string]string{"org_name": name, "org_type": orgType, "role": role},
	}
}
