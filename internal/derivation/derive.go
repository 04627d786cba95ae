package derivation

// ClassSource records which rule picked the class
type ClassSource string

const (
	SourceNone     ClassSource = ""
	SourceSorcerer ClassSource = "sorcerer"
	SourceChosen   ClassSource = "chosen"
	SourceRoll     ClassSource = "roll"
	SourceDefault  ClassSource = "default"
)

// DeriveInput is everything the character wizard collected
type DeriveInput struct {
	Nationality string
	// NationalityData holds the catalog bonuses of the nationality, if known
	NationalityData *Nationality
	Sheet           Sheet
	IntBonus        *int
	ManBonus        *int
	// ChosenClass is the player's pick; for dual nationalities it must be
	// one of the two offered classes
	ChosenClass string
	ClassRoll   *int
	// Classes is the catalog the resolved class is looked up in
	Classes []Class
}

// DeriveOutput is the derived sheet plus how it was reached
type DeriveOutput struct {
	Sheet       Sheet           `json:"sheet"`
	Class       string          `json:"class,omitempty"`
	ClassSource ClassSource     `json:"classSource,omitempty"`
	Options     Options         `json:"options"`
	Sorcerer    SorcererOutcome `json:"sorcerer"`
	Skipped     []string        `json:"skipped,omitempty"`
}

// Derive runs the wizard pipeline on a copy of the input sheet: nationality
// bonuses, the sorcerer rule, class resolution and class bonuses. It never
// fails; anything it cannot map is listed in Skipped.
func Derive(in DeriveInput) DeriveOutput {
	sheet := in.Sheet.Clone()
	ensureMaps(&sheet)

	var res Result
	if in.NationalityData != nil {
		res.merge(ApplyNationality(&sheet, *in.NationalityData))
	}

	out := DeriveOutput{Options: ClassOptions(in.Nationality)}

	// A bonus the wizard did not send falls back to the one already on the sheet
	special, _ := NormalizeNationality(in.Nationality)
	intBonus, manBonus := in.IntBonus, in.ManBonus
	if intBonus == nil {
		intBonus = cloneInt(storedBonus(sheet.Characteristics[INT], special))
	}
	if manBonus == nil {
		manBonus = cloneInt(storedBonus(sheet.Characteristics[MAN], special))
	}

	out.Sorcerer = ResolveSorcerer(SorcererInput{
		Nationality: in.Nationality,
		BaseINT:     sheet.Characteristics[INT].BaseValue,
		BaseMAN:     sheet.Characteristics[MAN].BaseValue,
		IntBonus:    intBonus,
		ManBonus:    manBonus,
	})
	if out.Sorcerer.Applies {
		recordSpecialBonuses(&sheet, out.Sorcerer, intBonus, manBonus)
	}

	out.Class, out.ClassSource = resolveClass(in, out.Options, out.Sorcerer, &res)

	if out.Class != "" {
		if class, ok := findClass(in.Classes, out.Class); ok {
			res.merge(ApplyClass(&sheet, class))
		} else if len(in.Classes) > 0 {
			res.skip("class %q not in catalog", out.Class)
		}
	}

	out.Sheet = sheet
	out.Skipped = res.Skipped
	return out
}

func resolveClass(in DeriveInput, opts Options, sorcerer SorcererOutcome, res *Result) (string, ClassSource) {
	if sorcerer.Determined {
		return sorcerer.Class, SourceSorcerer
	}

	if opts.Dual {
		if in.ChosenClass == "" {
			return "", SourceNone
		}
		if match, ok := matchExact(in.ChosenClass, opts.Classes); ok {
			return match, SourceChosen
		}
		res.skip("class %q not offered to %s", in.ChosenClass, in.Nationality)
		return "", SourceNone
	}

	if in.ChosenClass != "" {
		return in.ChosenClass, SourceChosen
	}

	if in.ClassRoll != nil {
		class, err := ClassForRoll(*in.ClassRoll)
		if err == nil {
			return class, SourceRoll
		}
		res.skip("class roll: %v", err)
	}

	if opts.Default != "" {
		return opts.Default, SourceDefault
	}
	return "", SourceNone
}

// recordSpecialBonuses stores the sorcerer rule bonuses in the
// nationality-specific bonus fields so Effective picks them up. A nil bonus
// leaves the field empty.
func recordSpecialBonuses(sheet *Sheet, outcome SorcererOutcome, intBonus, manBonus *int) {
	set := func(key CharacteristicKey, value *int) {
		cv, ok := sheet.Characteristics[key]
		if !ok {
			if value == nil {
				return
			}
			cv = CharacteristicValue{Name: key.DisplayName()}
		}
		switch outcome.Special {
		case Melnibone:
			cv.MelniboneBonus = cloneInt(value)
		case PanTang:
			cv.PanTangBonus = cloneInt(value)
		}
		sheet.Characteristics[key] = cv
	}

	set(TAG, intPtr(outcome.TagBonus))
	set(INT, intBonus)
	set(MAN, manBonus)
}

// storedBonus returns the sheet's own bonus field for a special nationality
func storedBonus(cv CharacteristicValue, special Special) *int {
	switch special {
	case Melnibone:
		return cv.MelniboneBonus
	case PanTang:
		return cv.PanTangBonus
	}
	return nil
}

// matchExact compares folded names only; containment is too loose for a
// choice between two known classes
func matchExact(name string, options []string) (string, bool) {
	folded := Fold(name)
	for _, o := range options {
		if Fold(o) == folded {
			return o, true
		}
	}
	return "", false
}

func findClass(classes []Class, name string) (Class, bool) {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	match, ok := MatchKey(name, names)
	if !ok {
		return Class{}, false
	}
	for _, c := range classes {
		if c.Name == match {
			return c, true
		}
	}
	return Class{}, false
}
