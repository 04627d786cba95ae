package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheetWith(values map[CharacteristicKey]int) Sheet {
	s := Sheet{Characteristics: make(Characteristics), Skills: make(Skills)}
	for k, v := range values {
		s.Characteristics[k] = CharacteristicValue{Name: k.DisplayName(), BaseValue: v}
	}
	return s
}

func TestFold(t *testing.T) {
	assert.Equal(t, "melnibone", Fold("Melniboné"))
	assert.Equal(t, "melnibone", Fold("  MELNIBONÉ "))
	assert.Equal(t, "agilita", Fold("Agilità"))
}

func TestMatchKey_Priority(t *testing.T) {
	keys := []string{"Pan Tang", "Pan"}

	match, ok := MatchKey("Pan", keys)
	require.True(t, ok)
	assert.Equal(t, "Pan", match, "exact match beats containment")

	match, ok = MatchKey("pan tang", keys)
	require.True(t, ok)
	assert.Equal(t, "Pan Tang", match)

	match, ok = MatchKey("Isola di Pan Tang", []string{"Pan Tang"})
	require.True(t, ok)
	assert.Equal(t, "Pan Tang", match)

	_, ok = MatchKey("Tang", []string{"Pan Tang"})
	assert.False(t, ok, "a fragment of a key must not match it")

	_, ok = MatchKey("a", keys)
	assert.False(t, ok)

	_, ok = MatchKey("", keys)
	assert.False(t, ok)
}

func TestNormalizeNationality(t *testing.T) {
	tests := []struct {
		input string
		want  Special
		ok    bool
	}{
		{"Melniboné", Melnibone, true},
		{"melnibone", Melnibone, true},
		{"MELNIBONÉ (Isola del Drago)", Melnibone, true},
		{"Solitudine Piangente", SolitudinePiangente, true},
		{"pan tang", PanTang, true},
		{"Vilmir", "", false},
		{"Tang", "", false},
		{"a", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeNationality(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDualClassesAndOptions(t *testing.T) {
	assert.Equal(t, []string{ClassNobile, ClassGuerriero}, DualClasses("Melnibone"))
	assert.Equal(t, []string{ClassGuerriero, ClassCacciatore}, DualClasses("solitudine piangente"))
	assert.Equal(t, []string{ClassSacerdote, ClassGuerriero}, DualClasses("Pan Tang"))
	assert.Nil(t, DualClasses("Vilmir"))

	opts := ClassOptions("Pan Tang")
	assert.True(t, opts.Dual)
	assert.False(t, opts.AllowRandomRoll)
	assert.Len(t, opts.Classes, 2)

	opts = ClassOptions("Nadsokor")
	assert.False(t, opts.Dual)
	assert.True(t, opts.AllowRandomRoll)
	assert.Equal(t, ClassMendicante, opts.Default)

	opts = ClassOptions("Jharkor")
	assert.True(t, opts.AllowRandomRoll)
	assert.Empty(t, opts.Classes)
}

func TestDefaultClass(t *testing.T) {
	tests := map[string]string{
		"Pan Tang":       ClassSacerdote,
		"nadsokor":       ClassMendicante,
		"Eshmir":         ClassSacerdote,
		"Isole Purpuree": ClassMercante,
		"VILMIR":         ClassSacerdote,
		"Myyrrhn":        ClassCacciatore,
		"Oin":            ClassAgricoltore,
	}
	for nationality, want := range tests {
		got, ok := DefaultClass(nationality)
		assert.True(t, ok, nationality)
		assert.Equal(t, want, got, nationality)
	}

	_, ok := DefaultClass("Lormyr")
	assert.False(t, ok)
}

func TestRollTablesPartition(t *testing.T) {
	for name, table := range map[string][]RollRange{
		"class":       ClassRollTable,
		"nationality": NationalityRollTable,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ValidateRollTable(table))
			for roll := RollMin; roll <= RollMax; roll++ {
				hits := 0
				for _, r := range table {
					if roll >= r.Min && roll <= r.Max {
						hits++
					}
				}
				assert.Equal(t, 1, hits, "roll %d", roll)
			}
		})
	}
}

func TestValidateRollTable_Rejects(t *testing.T) {
	assert.Error(t, ValidateRollTable(nil))
	assert.Error(t, ValidateRollTable([]RollRange{{1, 50, "a"}, {52, 100, "b"}}), "gap")
	assert.Error(t, ValidateRollTable([]RollRange{{1, 50, "a"}, {50, 100, "b"}}), "overlap")
	assert.Error(t, ValidateRollTable([]RollRange{{1, 99, "a"}}), "short")
	assert.Error(t, ValidateRollTable([]RollRange{{1, 60, "a"}, {70, 61, "b"}, {71, 100, "c"}}), "inverted")
}

func TestClassForRoll(t *testing.T) {
	tests := []struct {
		roll int
		want string
	}{
		{1, ClassGuerriero},
		{20, ClassGuerriero},
		{21, ClassMercante},
		{30, ClassMercante},
		{75, ClassNobile},
		{76, ClassMendicante},
		{100, ClassArtigiano},
	}
	for _, tt := range tests {
		got, err := ClassForRoll(tt.roll)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "roll %d", tt.roll)
	}

	_, err := ClassForRoll(0)
	assert.Error(t, err)
	_, err = ClassForRoll(101)
	assert.Error(t, err)

	got, err := NationalityForRoll(1)
	require.NoError(t, err)
	assert.Equal(t, "Melniboné", got)
}

func TestResolveSorcerer_Threshold(t *testing.T) {
	for _, nationality := range []string{"Melniboné", "Pan Tang"} {
		for total := 20; total <= 40; total++ {
			out := ResolveSorcerer(SorcererInput{Nationality: nationality, BaseINT: total / 2, BaseMAN: total - total/2})
			assert.Equal(t, total >= SorcererThreshold, out.Class == ClassStregone, "%s total %d", nationality, total)
		}
	}
}

func TestResolveSorcerer_PanTangBonuses(t *testing.T) {
	zero := 0

	out := ResolveSorcerer(SorcererInput{Nationality: "Pan Tang", BaseINT: 10, BaseMAN: 10})
	assert.False(t, out.Determined, "no bonus set leaves the class open")
	assert.Equal(t, 1, out.TagBonus)

	out = ResolveSorcerer(SorcererInput{Nationality: "Pan Tang", BaseINT: 10, BaseMAN: 10, IntBonus: &zero})
	assert.True(t, out.Determined)
	assert.Equal(t, ClassGuerriero, out.Class)

	out = ResolveSorcerer(SorcererInput{Nationality: "Melniboné", BaseINT: 10, BaseMAN: 10, IntBonus: &zero})
	assert.False(t, out.Determined, "the Guerriero fallback is Pan Tang only")
	assert.Equal(t, 3, out.TagBonus)

	out = ResolveSorcerer(SorcererInput{Nationality: "Vilmir", BaseINT: 20, BaseMAN: 20})
	assert.False(t, out.Applies)
	assert.Empty(t, out.Class)
}

func TestScenario_MelniboneSorcerer(t *testing.T) {
	zero := 0
	out := ResolveSorcerer(SorcererInput{Nationality: "Melniboné", BaseINT: 20, BaseMAN: 15, IntBonus: &zero, ManBonus: &zero})
	assert.Equal(t, 35, out.Total)
	assert.Equal(t, ClassStregone, out.Class)
	assert.Equal(t, 3, out.TagBonus)
}

func TestScenario_PanTangWarrior(t *testing.T) {
	five := 5
	out := ResolveSorcerer(SorcererInput{Nationality: "Pan Tang", BaseINT: 10, BaseMAN: 10, IntBonus: &five, ManBonus: &five})
	assert.Equal(t, 30, out.Total)
	assert.Equal(t, ClassGuerriero, out.Class)
	assert.Equal(t, 1, out.TagBonus)
}

func TestApplyNationality_Additive(t *testing.T) {
	sheet := sheetWith(map[CharacteristicKey]int{FOR: 10, TAG: 12})
	nat := Nationality{
		Name: "Org",
		CharacteristicBonuses: []CharacteristicBonus{
			{Characteristic: "FOR", Value: 2},
			{Characteristic: "Taglia", Value: -1},
			{Characteristic: "Fortuna", Value: 5},
		},
		SkillBonuses: []SkillBonus{
			{Category: "Furtività", Skill: "Nascondersi", Value: 10},
			{Category: "Sconosciuta", Skill: "Boh", Value: 10},
		},
	}

	res := ApplyNationality(&sheet, nat)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, 12, sheet.Characteristics[FOR].BaseValue)
	assert.Equal(t, 11, sheet.Characteristics[TAG].BaseValue)
	assert.Equal(t, 10, sheet.Skills[CategoryFurtivita]["nascondersi"].BaseValue)

	ApplyNationality(&sheet, nat)
	assert.Equal(t, 14, sheet.Characteristics[FOR].BaseValue, "second application doubles the bonus")
	assert.Equal(t, 20, sheet.Skills[CategoryFurtivita]["nascondersi"].BaseValue)
}

func TestApplyClass_Monotonic(t *testing.T) {
	sheet := sheetWith(map[CharacteristicKey]int{FOR: 10, DES: 10})
	sheet.Skills[CategoryPercezione] = map[string]Skill{"vedere": {Name: "Vedere", BaseValue: 60}}
	sheet.Skills[CategoryAgilita] = map[string]Skill{"arrampicarsi": {Name: "Arrampicarsi", BaseValue: 20}}

	class := Class{
		Name: ClassCacciatore,
		Abilities: []Ability{
			{Name: "Vedere", Percentage: 40},
			{Name: "arrampicarsi", Percentage: 40},
			{Name: "Fiutare", Percentage: 30},
			{Name: "Danza del Vento", Percentage: 90},
		},
		CharacteristicBonuses: []ClassBonus{
			{Characteristic: "FOR", Value: "+2"},
			{Characteristic: "DES", Value: "-1"},
			{Characteristic: "COS", Value: "+1D4"},
		},
	}

	res := ApplyClass(&sheet, class)

	assert.Equal(t, 60, sheet.Skills[CategoryPercezione]["vedere"].BaseValue, "never lowered")
	assert.True(t, sheet.Skills[CategoryPercezione]["vedere"].Checked)
	assert.Equal(t, 40, sheet.Skills[CategoryAgilita]["arrampicarsi"].BaseValue)
	assert.Equal(t, 30, sheet.Skills[CategoryPercezione]["fiutare"].BaseValue)
	assert.Equal(t, 12, sheet.Characteristics[FOR].BaseValue)
	assert.Equal(t, 9, sheet.Characteristics[DES].BaseValue)
	assert.Len(t, res.Skipped, 2, "unmapped ability and dice bonus")
}

func TestCharacteristicValue_Effective(t *testing.T) {
	three, one := 3, 1
	v := CharacteristicValue{BaseValue: 12, MelniboneBonus: &three, PanTangBonus: &one}
	assert.Equal(t, 16, v.Effective())
	assert.Equal(t, 12, CharacteristicValue{BaseValue: 12}.Effective())
}

func TestParseCharacteristicKey(t *testing.T) {
	for input, want := range map[string]CharacteristicKey{
		"for": FOR, "TAG": TAG, "Intelligenza": INT, "potere": MAN, "Fascino": FAS,
	} {
		got, ok := ParseCharacteristicKey(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseCharacteristicKey("fortuna")
	assert.False(t, ok)
}

func TestDerive_Pipeline(t *testing.T) {
	zero := 0
	classes := []Class{
		{Name: ClassStregone, Abilities: []Ability{{Name: "Memorizzare", Percentage: 50}}},
		{Name: ClassNobile, Abilities: []Ability{{Name: "Oratoria", Percentage: 30}}},
	}

	t.Run("melnibone sorcerer", func(t *testing.T) {
		in := DeriveInput{
			Nationality: "Melniboné",
			Sheet:       sheetWith(map[CharacteristicKey]int{INT: 20, MAN: 15, TAG: 10}),
			IntBonus:    &zero,
			ManBonus:    &zero,
			Classes:     classes,
		}
		out := Derive(in)
		assert.Equal(t, ClassStregone, out.Class)
		assert.Equal(t, SourceSorcerer, out.ClassSource)
		assert.Equal(t, 13, out.Sheet.Characteristics.Effective(TAG))
		assert.Equal(t, 10, out.Sheet.Characteristics[TAG].BaseValue, "base keeps the rolled value")
		assert.Equal(t, 50, out.Sheet.Skills[CategoryConoscenza]["memorizzare"].BaseValue)
		assert.Equal(t, 10, in.Sheet.Characteristics[TAG].BaseValue, "input sheet untouched")
	})

	t.Run("dual choice", func(t *testing.T) {
		out := Derive(DeriveInput{
			Nationality: "Melnibone",
			Sheet:       sheetWith(map[CharacteristicKey]int{INT: 10, MAN: 10}),
			ChosenClass: "nobile",
			Classes:     classes,
		})
		assert.Equal(t, ClassNobile, out.Class)
		assert.Equal(t, SourceChosen, out.ClassSource)
		assert.True(t, out.Options.Dual)
	})

	t.Run("dual rejects other classes", func(t *testing.T) {
		out := Derive(DeriveInput{
			Nationality: "Solitudine Piangente",
			Sheet:       sheetWith(map[CharacteristicKey]int{INT: 10, MAN: 10}),
			ChosenClass: ClassLadro,
		})
		assert.Empty(t, out.Class)
		assert.NotEmpty(t, out.Skipped)
	})

	t.Run("roll", func(t *testing.T) {
		roll := 21
		out := Derive(DeriveInput{Nationality: "Jharkor", Sheet: sheetWith(nil), ClassRoll: &roll})
		assert.Equal(t, ClassMercante, out.Class)
		assert.Equal(t, SourceRoll, out.ClassSource)
	})

	t.Run("default", func(t *testing.T) {
		out := Derive(DeriveInput{Nationality: "Nadsokor", Sheet: sheetWith(nil)})
		assert.Equal(t, ClassMendicante, out.Class)
		assert.Equal(t, SourceDefault, out.ClassSource)
	})

	t.Run("pan tang cleared bonuses", func(t *testing.T) {
		out := Derive(DeriveInput{Nationality: "Pan Tang", Sheet: sheetWith(map[CharacteristicKey]int{INT: 10, MAN: 10, TAG: 10})})
		assert.Empty(t, out.Class)
		assert.Nil(t, out.Sheet.Characteristics[INT].PanTangBonus)
		assert.Equal(t, 11, out.Sheet.Characteristics.Effective(TAG))
	})

	t.Run("stored melnibone bonus counts", func(t *testing.T) {
		sheet := sheetWith(map[CharacteristicKey]int{INT: 20, MAN: 10, TAG: 10})
		intCV := sheet.Characteristics[INT]
		intCV.MelniboneBonus = intPtr(5)
		sheet.Characteristics[INT] = intCV

		out := Derive(DeriveInput{Nationality: "Melniboné", Sheet: sheet})
		assert.Equal(t, 35, out.Sorcerer.Total)
		assert.Equal(t, ClassStregone, out.Class)
		assert.Equal(t, SourceSorcerer, out.ClassSource)
		require.NotNil(t, out.Sheet.Characteristics[INT].MelniboneBonus)
		assert.Equal(t, 5, *out.Sheet.Characteristics[INT].MelniboneBonus)
		assert.Equal(t, 25, out.Sheet.Characteristics.Effective(INT))
		assert.Nil(t, out.Sheet.Characteristics[MAN].MelniboneBonus)
	})

	t.Run("stored pan tang bonus keeps guerriero", func(t *testing.T) {
		sheet := sheetWith(map[CharacteristicKey]int{INT: 10, MAN: 10, TAG: 10})
		manCV := sheet.Characteristics[MAN]
		manCV.PanTangBonus = intPtr(2)
		sheet.Characteristics[MAN] = manCV

		out := Derive(DeriveInput{Nationality: "Pan Tang", Sheet: sheet})
		assert.Equal(t, ClassGuerriero, out.Class)
		require.NotNil(t, out.Sheet.Characteristics[MAN].PanTangBonus)
		assert.Equal(t, 2, *out.Sheet.Characteristics[MAN].PanTangBonus)
	})

	t.Run("explicit bonus overrides stored", func(t *testing.T) {
		sheet := sheetWith(map[CharacteristicKey]int{INT: 14, MAN: 14})
		intCV := sheet.Characteristics[INT]
		intCV.MelniboneBonus = intPtr(1)
		sheet.Characteristics[INT] = intCV

		out := Derive(DeriveInput{Nationality: "Melnibone", Sheet: sheet, IntBonus: intPtr(4)})
		assert.Equal(t, 32, out.Sorcerer.Total)
		assert.Equal(t, ClassStregone, out.Class)
		assert.Equal(t, 4, *out.Sheet.Characteristics[INT].MelniboneBonus)
	})
}
