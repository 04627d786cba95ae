package services

import (
	"context"
	"errors"
	"testing"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/models"
	"stormbringer/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(docstore.NewMemoryStore())
}

func baseClass(name string) dto.ClassRequest {
	return dto.ClassRequest{
		Name:        name,
		Description: name + " description",
		Abilities:   []dto.AbilityRequest{{Name: "Schivare", Percentage: 40}},
		CharacteristicBonuses: []dto.ClassBonusRequest{
			{Characteristic: "forza", Value: "+2"},
		},
	}
}

func variantOf(name, parentID string) dto.ClassRequest {
	req := baseClass(name)
	req.IsVariant = true
	req.ParentClassID = parentID
	return req
}

// assertSymmetry checks that every variant is listed exactly once by its
// parent and every listed summary names a variant of that parent.
func assertSymmetry(t *testing.T, svc *Service) {
	t.Helper()
	classes, err := svc.ListClasses(context.Background())
	require.NoError(t, err)

	byID := make(map[string]models.CharacterClass, len(classes))
	for _, c := range classes {
		byID[c.ID] = c
	}

	for _, c := range classes {
		if c.IsVariant {
			parent, ok := byID[c.ParentClassID]
			require.True(t, ok, "variant %s has no parent", c.Name)
			count := 0
			for _, v := range parent.Variants {
				if v.ID == c.ID {
					count++
					assert.Equal(t, c.Name, v.Name)
					assert.Equal(t, c.Description, v.Description)
				}
			}
			assert.Equal(t, 1, count, "variant %s listed %d times", c.Name, count)
			continue
		}
		for _, v := range c.Variants {
			variant, ok := byID[v.ID]
			require.True(t, ok, "summary %s points at nothing", v.ID)
			assert.True(t, variant.IsVariant)
			assert.Equal(t, c.ID, variant.ParentClassID)
		}
	}
}

func TestCreateClass_Base(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	class, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.Empty(t, class.Variants)
	require.Len(t, class.CharacteristicBonuses, 1)
	assert.Equal(t, "for", class.CharacteristicBonuses[0].Characteristic)

	got, err := svc.GetClass(ctx, class.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Guerriero", got.Name)
	assert.Equal(t, 40, got.Abilities[0].Percentage)
}

func TestCreateClass_RejectsInvalidInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.ClassRequest
	}{
		{"missing name", dto.ClassRequest{}},
		{"unknown characteristic", dto.ClassRequest{Name: "X", CharacteristicBonuses: []dto.ClassBonusRequest{{Characteristic: "luck", Value: "+1"}}}},
		{"variant without parent", dto.ClassRequest{Name: "X", IsVariant: true}},
		{"percentage out of range", dto.ClassRequest{Name: "X", Abilities: []dto.AbilityRequest{{Name: "Nuotare", Percentage: 150}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateClass(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateClass_VariantAddsSummary(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)

	variant, err := svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.NoError(t, err)

	got, err := svc.GetClass(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, variant.ID, got.Variants[0].ID)
	assert.Equal(t, "Berserker", got.Variants[0].Name)
	assertSymmetry(t, svc)
}

func TestCreateClass_VariantParentRules(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	variant, err := svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.NoError(t, err)

	_, err = svc.CreateClass(ctx, variantOf("Orfano", "missing"))
	assert.ErrorIs(t, err, ErrVariantParent)

	_, err = svc.CreateClass(ctx, variantOf("Nipote", variant.ID))
	assert.ErrorIs(t, err, ErrVariantParent)

	classes, err := svc.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assertSymmetry(t, svc)
}

func TestUpdateClass_MovesVariantBetweenParents(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	second, err := svc.CreateClass(ctx, baseClass("Ladro"))
	require.NoError(t, err)
	variant, err := svc.CreateClass(ctx, variantOf("Berserker", first.ID))
	require.NoError(t, err)

	req := variantOf("Tagliagole", second.ID)
	req.Description = "renamed"
	_, err = svc.UpdateClass(ctx, variant.ID, req)
	require.NoError(t, err)

	gotFirst, err := svc.GetClass(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, gotFirst.Variants)

	gotSecond, err := svc.GetClass(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, gotSecond.Variants, 1)
	assert.Equal(t, "Tagliagole", gotSecond.Variants[0].Name)
	assert.Equal(t, "renamed", gotSecond.Variants[0].Description)
	assertSymmetry(t, svc)
}

func TestUpdateClass_UnlinkVariant(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	variant, err := svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.NoError(t, err)

	updated, err := svc.UpdateClass(ctx, variant.ID, baseClass("Berserker"))
	require.NoError(t, err)
	assert.False(t, updated.IsVariant)
	assert.Empty(t, updated.ParentClassID)

	gotParent, err := svc.GetClass(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, gotParent.Variants)
	assertSymmetry(t, svc)
}

func TestUpdateClass_KeepsVariantsOfBaseClass(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	_, err = svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.NoError(t, err)

	req := baseClass("Guerriero")
	req.Description = "changed"
	updated, err := svc.UpdateClass(ctx, parent.ID, req)
	require.NoError(t, err)
	assert.Len(t, updated.Variants, 1)

	_, err = svc.UpdateClass(ctx, parent.ID, variantOf("Guerriero", "other"))
	assert.ErrorIs(t, err, ErrHasVariants)
	assertSymmetry(t, svc)
}

func TestUpdateClass_Missing(t *testing.T) {
	svc := newTestService()
	_, err := svc.UpdateClass(context.Background(), "nope", baseClass("X"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClass(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)
	variant, err := svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.NoError(t, err)

	err = svc.DeleteClass(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrHasVariants)

	require.NoError(t, svc.DeleteClass(ctx, variant.ID))
	gotParent, err := svc.GetClass(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, gotParent.Variants)

	require.NoError(t, svc.DeleteClass(ctx, parent.ID))
	gone, err := svc.GetClass(ctx, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, svc.DeleteClass(ctx, parent.ID), ErrNotFound)
}

// failingStore rejects writes to one collection so transactional rollback
// can be observed.
type failingStore struct {
	*docstore.MemoryStore
	failUpdate bool
}

func (s *failingStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if s.failUpdate {
		return errors.New("update refused")
	}
	return s.MemoryStore.Update(ctx, collection, id, fields)
}

func TestCreateClass_VariantRollsBackOnParentFailure(t *testing.T) {
	store := &failingStore{MemoryStore: docstore.NewMemoryStore()}
	svc := NewService(store)
	ctx := context.Background()

	parent, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)

	store.failUpdate = true
	_, err = svc.CreateClass(ctx, variantOf("Berserker", parent.ID))
	require.Error(t, err)

	classes, err := svc.ListClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assertSymmetry(t, svc)
}

func TestDerivationClasses(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateClass(ctx, baseClass("Guerriero"))
	require.NoError(t, err)

	classes, err := svc.DerivationClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Guerriero", classes[0].Name)
	assert.Equal(t, "Schivare", classes[0].Abilities[0].Name)
}

func TestNationalityCRUD(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	nat, err := svc.CreateNationality(ctx, dto.NationalityRequest{
		Name:                  "Melniboné",
		CharacteristicBonuses: []dto.CharacteristicBonusRequest{{Characteristic: "INT", Value: 3}},
		SkillBonuses:          []dto.SkillBonusRequest{{Category: "conoscenza", Skill: "Alto Melniboneano", Value: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, "int", nat.CharacteristicBonuses[0].Characteristic)
	assert.Equal(t, []string{}, nat.Traits)

	found, err := svc.FindNationality(ctx, "melnibone")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, nat.ID, found.ID)

	updated, err := svc.UpdateNationality(ctx, nat.ID, dto.NationalityRequest{Name: "Melniboné", Region: "Isola del Drago"})
	require.NoError(t, err)
	assert.Equal(t, "Isola del Drago", updated.Region)
	assert.Equal(t, nat.CreatedAt, updated.CreatedAt)

	_, err = svc.CreateNationality(ctx, dto.NationalityRequest{
		Name:         "X",
		SkillBonuses: []dto.SkillBonusRequest{{Category: "magia", Skill: "Y", Value: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.DeleteNationality(ctx, nat.ID))
	assert.ErrorIs(t, svc.DeleteNationality(ctx, nat.ID), ErrNotFound)
}

func TestRollNationality(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateNationality(ctx, dto.NationalityRequest{Name: "Vilmir"})
	require.NoError(t, err)
	ranged, err := svc.CreateNationality(ctx, dto.NationalityRequest{Name: "Tarkesh", RollMin: 1, RollMax: 10})
	require.NoError(t, err)

	t.Run("stored range wins", func(t *testing.T) {
		res, err := svc.RollNationality(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Tarkesh", res.Name)
		require.NotNil(t, res.Nationality)
		assert.Equal(t, ranged.ID, res.Nationality.ID)
	})

	t.Run("static table with catalog match", func(t *testing.T) {
		res, err := svc.RollNationality(ctx, 32)
		require.NoError(t, err)
		assert.Equal(t, "Vilmir", res.Name)
		require.NotNil(t, res.Nationality)
		assert.Equal(t, "Vilmir", res.Nationality.Name)
	})

	t.Run("static table without catalog entry", func(t *testing.T) {
		res, err := svc.RollNationality(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, "Org", res.Name)
		assert.Nil(t, res.Nationality)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := svc.RollNationality(ctx, 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeityAndWeapon(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	deity, err := svc.SaveDeity(ctx, "", dto.DeityRequest{Name: "Arioch", Alignment: "Caos"})
	require.NoError(t, err)
	assert.Equal(t, models.AlignmentChaos, deity.Alignment)

	_, err = svc.SaveDeity(ctx, "", dto.DeityRequest{Name: "X", Alignment: "Neutrale"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SaveDeity(ctx, "missing", dto.DeityRequest{Name: "X", Alignment: "Legge"})
	assert.ErrorIs(t, err, ErrNotFound)

	weapon, err := svc.SaveWeapon(ctx, "", dto.WeaponRequest{Name: "Spada larga", Category: "Spade", Damage: "1D8+1", BaseAttack: 15})
	require.NoError(t, err)
	assert.Equal(t, 1, weapon.Hands)

	weapons, err := svc.ListWeapons(ctx)
	require.NoError(t, err)
	assert.Len(t, weapons, 1)

	require.NoError(t, svc.DeleteWeapon(ctx, weapon.ID))
	require.NoError(t, svc.DeleteDeity(ctx, deity.ID))
}
