package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

type fixture struct {
	resolver *keys.Resolver
	lookups  *normalize.Lookups
	log      *BuildLog
	dims     *Dimensions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lookups, err := normalize.DefaultLookups()
	require.NoError(t, err)

	resolver := keys.NewResolver()
	log := NewBuildLog(nil)
	return &fixture{
		resolver: resolver,
		lookups:  lookups,
		log:      log,
		dims:     NewDimensions(resolver, lookups, log, 1950, 2100),
	}
}

func attrs(rows []models.DimensionRow, name string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Attributes[name])
	}
	return out
}
