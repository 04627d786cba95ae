package migrations

import (
	"context"
	"testing"

	catalogServices "stormbringer/internal/catalog/services"
	"stormbringer/internal/derivation"
	"stormbringer/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrder(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	seen := make(map[string]bool)
	for i, m := range all {
		assert.False(t, seen[m.Version], "duplicate version %s", m.Version)
		seen[m.Version] = true
		assert.NotNil(t, m.Up, m.Version)
		if i > 0 {
			assert.Less(t, all[i-1].Version, m.Version, "migrations must register in version order")
		}
	}
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := catalogServices.NewService(docstore.NewMemoryStore())

	require.NoError(t, seedCatalog(ctx, catalog))

	classes, err := catalog.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, len(derivation.ClassRollTable)+1)
	var names []string
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, derivation.ClassStregone)

	nats, err := catalog.ListNationalities(ctx)
	require.NoError(t, err)
	require.Len(t, nats, len(derivation.NationalityRollTable))

	roll, err := catalog.RollNationality(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "Solitudine Piangente", roll.Name)
	assert.NotNil(t, roll.Nationality)

	// a second run adds nothing
	require.NoError(t, seedCatalog(ctx, catalog))
	classes, err = catalog.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, len(derivation.ClassRollTable)+1)
	nats, err = catalog.ListNationalities(ctx)
	require.NoError(t, err)
	assert.Len(t, nats, len(derivation.NationalityRollTable))
}
