package keys

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func TestResolveAllocatesSequentialKeys(t *testing.T) {
	r := NewResolver()

	key, created := r.Resolve(models.DimCountry, models.NaturalKey{"KE"})
	assert.Equal(t, 1, key)
	assert.True(t, created)

	key, created = r.Resolve(models.DimCountry, models.NaturalKey{"AF"})
	assert.Equal(t, 2, key)
	assert.True(t, created)

	key, created = r.Resolve(models.DimCountry, models.NaturalKey{"KE"})
	assert.Equal(t, 1, key)
	assert.False(t, created)

	// У каждого измерения собственная последовательность
	key, _ = r.Resolve(models.DimTime, models.NaturalKey{"2000", "1"})
	assert.Equal(t, 1, key)
}

func TestResolveDistinguishesCompositeKeys(t *testing.T) {
	r := NewResolver()

	a, _ := r.Resolve(models.DimTime, models.NaturalKey{"2000", "1"})
	b, _ := r.Resolve(models.DimTime, models.NaturalKey{"2000", "0"})
	assert.NotEqual(t, a, b)

	got, ok := r.Lookup(models.DimTime, models.NaturalKey{"2000", "0"})
	require.True(t, ok)
	assert.Equal(t, b, got)

	_, ok = r.Lookup(models.DimTime, models.NaturalKey{"1999", "3"})
	assert.False(t, ok)
}

func TestAllKeysOrderedByKey(t *testing.T) {
	r := NewResolver()
	for _, code := range []string{"KE", "AF", "NO"} {
		r.Resolve(models.DimCountry, models.NaturalKey{code})
	}

	all := r.AllKeys(models.DimCountry)
	require.Len(t, all, 3)
	assert.Equal(t, []Mapping{
		{NaturalKey: models.NaturalKey{"KE"}, Key: 1},
		{NaturalKey: models.NaturalKey{"AF"}, Key: 2},
		{NaturalKey: models.NaturalKey{"NO"}, Key: 3},
	}, all)

	assert.Empty(t, r.AllKeys(models.DimSector))
	assert.Equal(t, []string{models.DimCountry}, r.Dimensions())
}

func TestResolveConcurrentFirstSight(t *testing.T) {
	r := NewResolver()

	const workers = 16
	const members = 200

	var wg sync.WaitGroup
	results := make([][]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			keys := make([]int, members)
			for i := 0; i < members; i++ {
				keys[i], _ = r.Resolve(models.DimCountry, models.NaturalKey{fmt.Sprintf("C%03d", i)})
			}
			results[w] = keys
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		assert.Equal(t, results[0], results[w])
	}

	all := r.AllKeys(models.DimCountry)
	require.Len(t, all, members)
	for i, m := range all {
		assert.Equal(t, i+1, m.Key)
	}
}

func TestResolveSeparatorInsideComponent(t *testing.T) {
	r := NewResolver()

	a, _ := r.Resolve(models.DimOrganization, models.NaturalKey{"alpha|10", "21"})
	b, created := r.Resolve(models.DimOrganization, models.NaturalKey{"alpha", "10|21"})
	assert.True(t, created)
	assert.NotEqual(t, a, b)

	seeded, err := NewResolverFromState(r.State())
	require.NoError(t, err)
	got, ok := seeded.Lookup(models.DimOrganization, models.NaturalKey{"alpha", "10|21"})
	require.True(t, ok)
	assert.Equal(t, b, got)
}
