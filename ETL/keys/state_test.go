package keys

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func TestStateRoundTripKeepsKeys(t *testing.T) {
	r := NewResolver()
	r.Resolve(models.DimCountry, models.NaturalKey{"KE"})
	r.Resolve(models.DimCountry, models.NaturalKey{"AF"})
	r.Resolve(models.DimTime, models.NaturalKey{"2000", "1"})

	path := filepath.Join(t.TempDir(), "state", "keys.snappy")
	require.NoError(t, SaveState(path, r.State()))

	seeded, err := LoadResolver(path)
	require.NoError(t, err)

	key, created := seeded.Resolve(models.DimCountry, models.NaturalKey{"AF"})
	assert.Equal(t, 2, key)
	assert.False(t, created)

	// Новые члены получают ключи после сохраненного максимума
	key, created = seeded.Resolve(models.DimCountry, models.NaturalKey{"NO"})
	assert.Equal(t, 3, key)
	assert.True(t, created)

	key, _ = seeded.Resolve(models.DimTime, models.NaturalKey{"2000", "0"})
	assert.Equal(t, 2, key)
}

func TestNewResolverFromStateWithGaps(t *testing.T) {
	r, err := NewResolverFromState(State{Dimensions: map[string][]Mapping{
		models.DimSector: {
			{NaturalKey: models.NaturalKey{"12220"}, Key: 7},
			{NaturalKey: models.NaturalKey{"11110"}, Key: 2},
		},
	}})
	require.NoError(t, err)

	key, created := r.Resolve(models.DimSector, models.NaturalKey{"99810"})
	assert.True(t, created)
	assert.Equal(t, 8, key)

	all := r.AllKeys(models.DimSector)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].Key)
	assert.Equal(t, 7, all[1].Key)
}

func TestNewResolverFromStateRejectsInconsistentState(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{
			name: "duplicate surrogate",
			state: State{Dimensions: map[string][]Mapping{models.DimCountry: {
				{NaturalKey: models.NaturalKey{"KE"}, Key: 1},
				{NaturalKey: models.NaturalKey{"AF"}, Key: 1},
			}}},
		},
		{
			name: "duplicate natural",
			state: State{Dimensions: map[string][]Mapping{models.DimCountry: {
				{NaturalKey: models.NaturalKey{"KE"}, Key: 1},
				{NaturalKey: models.NaturalKey{"KE"}, Key: 2},
			}}},
		},
		{
			name: "non positive key",
			state: State{Dimensions: map[string][]Mapping{models.DimCountry: {
				{NaturalKey: models.NaturalKey{"KE"}, Key: 0},
			}}},
		},
		{
			name:  "unknown version",
			state: State{Version: 99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolverFromState(tt.state)
			assert.Error(t, err)
		})
	}
}

func TestLoadResolverMissingFile(t *testing.T) {
	r, err := LoadResolver(filepath.Join(t.TempDir(), "absent.snappy"))
	require.NoError(t, err)
	assert.Empty(t, r.Dimensions())

	r, err = LoadResolver("")
	require.NoError(t, err)
	assert.Empty(t, r.Dimensions())
}

func TestLoadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.snappy")
	require.NoError(t, os.WriteFile(path, []byte("not snappy at all"), 0o644))

	_, err := LoadResolver(path)
	assert.Error(t, err)
}

func TestSeededResolverSettlesNewKeysInNaturalOrder(t *testing.T) {
	r, err := NewResolverFromState(State{Dimensions: map[string][]Mapping{
		models.DimCountry: {{NaturalKey: models.NaturalKey{"AF"}, Key: 1}, {NaturalKey: models.NaturalKey{"KE"}, Key: 2}},
	}})
	require.NoError(t, err)

	no, _ := r.Resolve(models.DimCountry, models.NaturalKey{"NO"})
	br, _ := r.Resolve(models.DimCountry, models.NaturalKey{"BR"})
	assert.Equal(t, 3, no)
	assert.Equal(t, 4, br)

	assert.Equal(t, map[string]map[int]int{models.DimCountry: {3: 4, 4: 3}}, r.Settle())

	got, ok := r.Lookup(models.DimCountry, models.NaturalKey{"BR"})
	require.True(t, ok)
	assert.Equal(t, 3, got)

	// Закрепленные ключи не перенумеровываются при следующих построениях
	r.Resolve(models.DimCountry, models.NaturalKey{"CH"})
	r.Resolve(models.DimCountry, models.NaturalKey{"AR"})
	assert.Equal(t, map[string]map[int]int{models.DimCountry: {5: 6, 6: 5}}, r.Settle())
	assert.Empty(t, r.Settle())

	order := make([]string, 0, 6)
	for _, m := range r.AllKeys(models.DimCountry) {
		order = append(order, fmt.Sprintf("%s=%d", m.NaturalKey, m.Key))
	}
	assert.Equal(t, []string{"AF=1", "KE=2", "BR=3", "NO=4", "AR=5", "CH=6"}, order)
}

func TestUnorderedResolverSettleKeepsEncounterOrder(t *testing.T) {
	r := NewResolver()
	r.Resolve(models.DimCountry, models.NaturalKey{"NO"})
	r.Resolve(models.DimCountry, models.NaturalKey{"BR"})

	assert.Empty(t, r.Settle())
	got, _ := r.Lookup(models.DimCountry, models.NaturalKey{"NO"})
	assert.Equal(t, 1, got)
}
