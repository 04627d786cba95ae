package derivation

import (
	"strconv"
	"strings"
)

// CharacteristicKey identifies one of the seven characteristics
type CharacteristicKey string

const (
	FOR CharacteristicKey = "for"
	COS CharacteristicKey = "cos"
	TAG CharacteristicKey = "tag"
	INT CharacteristicKey = "int"
	MAN CharacteristicKey = "man"
	DES CharacteristicKey = "des"
	FAS CharacteristicKey = "fas"
)

// CharacteristicKeys lists every key in sheet order
var CharacteristicKeys = []CharacteristicKey{FOR, COS, TAG, INT, MAN, DES, FAS}

var characteristicNames = map[CharacteristicKey]string{
	FOR: "Forza",
	COS: "Costituzione",
	TAG: "Taglia",
	INT: "Intelligenza",
	MAN: "Potere",
	DES: "Destrezza",
	FAS: "Fascino",
}

var characteristicAliases = map[string]CharacteristicKey{
	"forza":        FOR,
	"costituzione": COS,
	"taglia":       TAG,
	"intelligenza": INT,
	"potere":       MAN,
	"mana":         MAN,
	"destrezza":    DES,
	"fascino":      FAS,
}

// ParseCharacteristicKey resolves a code ("TAG") or an Italian name
// ("Intelligenza") to its key.
func ParseCharacteristicKey(s string) (CharacteristicKey, bool) {
	folded := Fold(s)
	key := CharacteristicKey(folded)
	if key.Valid() {
		return key, true
	}
	if k, ok := characteristicAliases[folded]; ok {
		return k, true
	}
	return "", false
}

// Valid reports whether k is one of the seven keys
func (k CharacteristicKey) Valid() bool {
	_, ok := characteristicNames[k]
	return ok
}

// DisplayName returns the sheet label for k
func (k CharacteristicKey) DisplayName() string {
	return characteristicNames[k]
}

// CharacteristicValue is one characteristic as stored on a sheet. The
// nationality bonus fields hold bonuses granted by the special nationality
// rules; they are kept apart from the rolled base.
type CharacteristicValue struct {
	Name           string `json:"name" bson:"name"`
	BaseValue      int    `json:"baseValue" bson:"baseValue"`
	MelniboneBonus *int   `json:"melniboneBonus,omitempty" bson:"melniboneBonus,omitempty"`
	PanTangBonus   *int   `json:"panTangBonus,omitempty" bson:"panTangBonus,omitempty"`
}

// Effective is the value every rule must read: base plus nationality bonuses
func (v CharacteristicValue) Effective() int {
	total := v.BaseValue
	if v.MelniboneBonus != nil {
		total += *v.MelniboneBonus
	}
	if v.PanTangBonus != nil {
		total += *v.PanTangBonus
	}
	return total
}

// Characteristics maps each key to its value
type Characteristics map[CharacteristicKey]CharacteristicValue

// Effective returns the effective value of k, zero when absent
func (c Characteristics) Effective(k CharacteristicKey) int {
	return c[k].Effective()
}

// Clone returns a deep copy of c
func (c Characteristics) Clone() Characteristics {
	out := make(Characteristics, len(c))
	for k, v := range c {
		v.MelniboneBonus = cloneInt(v.MelniboneBonus)
		v.PanTangBonus = cloneInt(v.PanTangBonus)
		out[k] = v
	}
	return out
}

// Skill is one entry of a skill category
type Skill struct {
	Name       string `json:"name" bson:"name"`
	BaseValue  int    `json:"baseValue" bson:"baseValue"`
	BaseValue2 *int   `json:"baseValue2,omitempty" bson:"baseValue2,omitempty"`
	Checked    bool   `json:"checked" bson:"checked"`
}

// Skills maps category to skill key to skill
type Skills map[string]map[string]Skill

// Clone returns a deep copy of s
func (s Skills) Clone() Skills {
	out := make(Skills, len(s))
	for category, skills := range s {
		copied := make(map[string]Skill, len(skills))
		for k, v := range skills {
			v.BaseValue2 = cloneInt(v.BaseValue2)
			copied[k] = v
		}
		out[category] = copied
	}
	return out
}

// find locates a skill in category by key or by folded display name
func (s Skills) find(category, name string) (string, bool) {
	skills := s[category]
	if skills == nil {
		return "", false
	}
	key := skillKey(name)
	if _, ok := skills[key]; ok {
		return key, true
	}
	folded := Fold(name)
	for k, skill := range skills {
		if Fold(skill.Name) == folded {
			return k, true
		}
	}
	return "", false
}

// Sheet is the part of a character the engine reads and writes
type Sheet struct {
	Characteristics Characteristics `json:"characteristics"`
	Skills          Skills          `json:"customStats"`
}

// Clone returns a deep copy of s with non-nil maps
func (s Sheet) Clone() Sheet {
	out := Sheet{
		Characteristics: s.Characteristics.Clone(),
		Skills:          s.Skills.Clone(),
	}
	return out
}

// parseLiteralBonus reads "+2", "-1" or "3". Dice expressions such as
// "+1D4" are not literal and yield false.
func parseLiteralBonus(value string) (int, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "+")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intPtr(v int) *int {
	return &v
}
