package derivation

// SorcererThreshold is the INT+MAN total at which Melniboné and Pan Tang
// characters become sorcerers
const SorcererThreshold = 32

var tagBonuses = map[Special]int{
	Melnibone: 3,
	PanTang:   1,
}

// SorcererInput carries the values the sorcerer rule reads. A nil bonus
// means the player has not set that input.
type SorcererInput struct {
	Nationality string `json:"nationality"`
	BaseINT     int    `json:"baseInt"`
	BaseMAN     int    `json:"baseMan"`
	IntBonus    *int   `json:"intBonus,omitempty"`
	ManBonus    *int   `json:"manBonus,omitempty"`
}

// SorcererOutcome is the result of the sorcerer rule. When Determined is
// false the nationality's dual-class choice still applies.
type SorcererOutcome struct {
	Applies    bool    `json:"applies"`
	Special    Special `json:"special,omitempty"`
	Total      int     `json:"total"`
	Class      string  `json:"class,omitempty"`
	Determined bool    `json:"determined"`
	TagBonus   int     `json:"tagBonus"`
}

// ResolveSorcerer applies the Melniboné/Pan Tang class rule. Clearing both
// Pan Tang bonuses returns the class to undetermined.
func ResolveSorcerer(in SorcererInput) SorcererOutcome {
	special, ok := NormalizeNationality(in.Nationality)
	tag, applies := tagBonuses[special]
	if !ok || !applies {
		return SorcererOutcome{}
	}

	out := SorcererOutcome{
		Applies:  true,
		Special:  special,
		Total:    in.BaseINT + deref(in.IntBonus) + in.BaseMAN + deref(in.ManBonus),
		TagBonus: tag,
	}

	switch {
	case out.Total >= SorcererThreshold:
		out.Class = ClassStregone
		out.Determined = true
	case special == PanTang && (in.IntBonus != nil || in.ManBonus != nil):
		out.Class = ClassGuerriero
		out.Determined = true
	}
	return out
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
