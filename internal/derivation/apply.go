package derivation

import "fmt"

// Skill categories of the sheet
const (
	CategoryAgilita       = "agilita"
	CategoryManipolazione = "manipolazione"
	CategoryPercezione    = "percezione"
	CategoryFurtivita     = "furtivita"
	CategoryConoscenza    = "conoscenza"
	CategoryComunicazione = "comunicazione"
)

// Categories lists the skill categories in sheet order
var Categories = []string{
	CategoryAgilita,
	CategoryManipolazione,
	CategoryPercezione,
	CategoryFurtivita,
	CategoryConoscenza,
	CategoryComunicazione,
}

var categoryAliases = map[string]string{
	"conoscenze":    CategoryConoscenza,
	"comunicazioni": CategoryComunicazione,
	"furto":         CategoryFurtivita,
}

// SkillTarget is where a class ability lands on the sheet
type SkillTarget struct {
	Category string
	Key      string
	Name     string
}

// abilityTable maps ability names found in class data to sheet skills.
// Order matters for containment matches: longer names come first.
var abilityTable = []struct {
	ability string
	target  SkillTarget
}{
	{"Muoversi Silenziosamente", SkillTarget{CategoryFurtivita, "muoversi_silenziosamente", "Muoversi Silenziosamente"}},
	{"Preparare Trappole", SkillTarget{CategoryManipolazione, "preparare_trappole", "Preparare Trappole"}},
	{"Conoscenza delle Erbe", SkillTarget{CategoryConoscenza, "conoscenza_erbe", "Conoscenza delle Erbe"}},
	{"Conoscenza dei Veleni", SkillTarget{CategoryConoscenza, "conoscenza_veleni", "Conoscenza dei Veleni"}},
	{"Conoscenza della Musica", SkillTarget{CategoryConoscenza, "conoscenza_musica", "Conoscenza della Musica"}},
	{"Nascondere Oggetti", SkillTarget{CategoryFurtivita, "nascondere_oggetti", "Nascondere Oggetti"}},
	{"Valutare Tesori", SkillTarget{CategoryConoscenza, "valutare_tesori", "Valutare Tesori"}},
	{"Primo Soccorso", SkillTarget{CategoryConoscenza, "primo_soccorso", "Primo Soccorso"}},
	{"Leggere/Scrivere", SkillTarget{CategoryConoscenza, "leggere_scrivere", "Leggere/Scrivere"}},
	{"Fare Mappe", SkillTarget{CategoryConoscenza, "fare_mappe", "Fare Mappe"}},
	{"Fare Nodi", SkillTarget{CategoryManipolazione, "fare_nodi", "Fare Nodi"}},
	{"Arrampicarsi", SkillTarget{CategoryAgilita, "arrampicarsi", "Arrampicarsi"}},
	{"Acrobazia", SkillTarget{CategoryAgilita, "acrobazia", "Acrobazia"}},
	{"Cavalcare", SkillTarget{CategoryAgilita, "cavalcare", "Cavalcare"}},
	{"Nuotare", SkillTarget{CategoryAgilita, "nuotare", "Nuotare"}},
	{"Saltare", SkillTarget{CategoryAgilita, "saltare", "Saltare"}},
	{"Schivare", SkillTarget{CategoryAgilita, "schivare", "Schivare"}},
	{"Scassinare", SkillTarget{CategoryManipolazione, "scassinare", "Scassinare"}},
	{"Giocoleria", SkillTarget{CategoryManipolazione, "giocoleria", "Giocoleria"}},
	{"Ascoltare", SkillTarget{CategoryPercezione, "ascoltare", "Ascoltare"}},
	{"Cercare", SkillTarget{CategoryPercezione, "cercare", "Cercare"}},
	{"Fiutare", SkillTarget{CategoryPercezione, "fiutare", "Fiutare"}},
	{"Gustare", SkillTarget{CategoryPercezione, "gustare", "Gustare"}},
	{"Vedere", SkillTarget{CategoryPercezione, "vedere", "Vedere"}},
	{"Nascondersi", SkillTarget{CategoryFurtivita, "nascondersi", "Nascondersi"}},
	{"Borseggiare", SkillTarget{CategoryFurtivita, "borseggiare", "Borseggiare"}},
	{"Imboscata", SkillTarget{CategoryFurtivita, "imboscata", "Imboscata"}},
	{"Navigare", SkillTarget{CategoryConoscenza, "navigare", "Navigare"}},
	{"Memorizzare", SkillTarget{CategoryConoscenza, "memorizzare", "Memorizzare"}},
	{"Oratoria", SkillTarget{CategoryComunicazione, "oratoria", "Oratoria"}},
	{"Persuadere", SkillTarget{CategoryComunicazione, "persuadere", "Persuadere"}},
	{"Cantare", SkillTarget{CategoryComunicazione, "cantare", "Cantare"}},
	{"Credito", SkillTarget{CategoryComunicazione, "credito", "Credito"}},
}

// LookupAbility maps an ability name to its sheet skill
func LookupAbility(name string) (SkillTarget, bool) {
	names := make([]string, len(abilityTable))
	for i, e := range abilityTable {
		names[i] = e.ability
	}
	match, ok := MatchKey(name, names)
	if !ok {
		return SkillTarget{}, false
	}
	for _, e := range abilityTable {
		if e.ability == match {
			return e.target, true
		}
	}
	return SkillTarget{}, false
}

// ParseCategory resolves a free-text category name to a sheet category
func ParseCategory(name string) (string, bool) {
	folded := Fold(name)
	if c, ok := categoryAliases[folded]; ok {
		return c, true
	}
	for _, c := range Categories {
		if c == folded {
			return c, true
		}
	}
	return "", false
}

// ClassBonus is a characteristic bonus of a class; Value is free text
type ClassBonus struct {
	Characteristic string `json:"characteristic" bson:"characteristic"`
	Value          string `json:"value" bson:"value"`
}

// Ability is a skill a class grants at a minimum percentage
type Ability struct {
	Name       string `json:"name" bson:"name"`
	Percentage int    `json:"percentage" bson:"percentage"`
	Bonus      string `json:"bonus,omitempty" bson:"bonus,omitempty"`
}

// Class is the derivation view of a catalog class
type Class struct {
	Name                  string       `json:"name"`
	Abilities             []Ability    `json:"abilities"`
	CharacteristicBonuses []ClassBonus `json:"characteristicBonuses"`
}

// CharacteristicBonus is a numeric nationality bonus
type CharacteristicBonus struct {
	Characteristic string `json:"characteristic" bson:"characteristic"`
	Value          int    `json:"value" bson:"value"`
}

// SkillBonus is a numeric nationality skill bonus
type SkillBonus struct {
	Category string `json:"category" bson:"category"`
	Skill    string `json:"skill" bson:"skill"`
	Value    int    `json:"value" bson:"value"`
}

// Nationality is the derivation view of a catalog nationality
type Nationality struct {
	Name                  string                `json:"name"`
	CharacteristicBonuses []CharacteristicBonus `json:"characteristicBonuses"`
	SkillBonuses          []SkillBonus          `json:"skillBonuses"`
}

// Result lists what an application could not map
type Result struct {
	Skipped []string `json:"skipped,omitempty"`
}

func (r *Result) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

func (r *Result) merge(other Result) {
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// ApplyClass adds the class's literal characteristic bonuses to base values
// and raises every mapped ability skill to at least the ability percentage,
// marking it checked. A skill is never lowered.
func ApplyClass(sheet *Sheet, class Class) Result {
	var res Result
	ensureMaps(sheet)

	for _, b := range class.CharacteristicBonuses {
		key, ok := ParseCharacteristicKey(b.Characteristic)
		if !ok {
			res.skip("characteristic %q", b.Characteristic)
			continue
		}
		n, ok := parseLiteralBonus(b.Value)
		if !ok {
			res.skip("bonus %q on %s", b.Value, key)
			continue
		}
		cv, ok := sheet.Characteristics[key]
		if !ok {
			res.skip("characteristic %s not on sheet", key)
			continue
		}
		cv.BaseValue += n
		sheet.Characteristics[key] = cv
	}

	for _, a := range class.Abilities {
		target, ok := LookupAbility(a.Name)
		if !ok {
			res.skip("ability %q", a.Name)
			continue
		}
		raiseSkill(sheet.Skills, target, a.Percentage)
	}

	return res
}

func raiseSkill(skills Skills, target SkillTarget, percentage int) {
	if skills[target.Category] == nil {
		skills[target.Category] = make(map[string]Skill)
	}
	key := target.Key
	if _, ok := skills[target.Category][key]; !ok {
		if existing, found := skills.find(target.Category, target.Name); found {
			key = existing
		}
	}

	skill, ok := skills[target.Category][key]
	if !ok {
		skill = Skill{Name: target.Name}
	}
	if percentage > skill.BaseValue {
		skill.BaseValue = percentage
	}
	skill.Checked = true
	skills[target.Category][key] = skill
}

// ApplyNationality adds each characteristic bonus to the matching base value
// and each skill bonus to the matching skill, creating the skill in its
// category when absent. Application is additive: applying twice doubles.
func ApplyNationality(sheet *Sheet, nationality Nationality) Result {
	var res Result
	ensureMaps(sheet)

	for _, b := range nationality.CharacteristicBonuses {
		key, ok := ParseCharacteristicKey(b.Characteristic)
		if !ok {
			res.skip("characteristic %q", b.Characteristic)
			continue
		}
		cv, ok := sheet.Characteristics[key]
		if !ok {
			res.skip("characteristic %s not on sheet", key)
			continue
		}
		cv.BaseValue += b.Value
		sheet.Characteristics[key] = cv
	}

	for _, b := range nationality.SkillBonuses {
		category, ok := ParseCategory(b.Category)
		if !ok {
			res.skip("category %q", b.Category)
			continue
		}
		if b.Skill == "" {
			res.skip("unnamed skill in %s", category)
			continue
		}
		if sheet.Skills[category] == nil {
			sheet.Skills[category] = make(map[string]Skill)
		}
		key, found := sheet.Skills.find(category, b.Skill)
		if !found {
			key = skillKey(b.Skill)
			sheet.Skills[category][key] = Skill{Name: b.Skill}
		}
		skill := sheet.Skills[category][key]
		skill.BaseValue += b.Value
		sheet.Skills[category][key] = skill
	}

	return res
}

func ensureMaps(sheet *Sheet) {
	if sheet.Characteristics == nil {
		sheet.Characteristics = make(Characteristics)
	}
	if sheet.Skills == nil {
		sheet.Skills = make(Skills)
	}
}
