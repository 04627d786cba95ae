package dto

import "stormbringer/internal/derivation"

// ClassBonusRequest is a class characteristic bonus as submitted by an admin
type ClassBonusRequest struct {
	Characteristic string `json:"characteristic" validate:"required,characteristic" description:"Characteristic code or name (FOR, COS, TAG, INT, MAN, DES, FAS)"`
	Value          string `json:"value" validate:"required,max=20" maxLength:"20" description:"Bonus such as +2, -1 or +1D4"`
}

// AbilityRequest is a class ability as submitted by an admin
type AbilityRequest struct {
	Name       string `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Skill name"`
	Percentage int    `json:"percentage" validate:"min=0,max=100" minimum:"0" maximum:"100" description:"Minimum skill percentage granted"`
	Bonus      string `json:"bonus,omitempty" maxLength:"50" description:"Free-text bonus note"`
}

// ClassRequest is the body of class create and update
type ClassRequest struct {
	Name                  string              `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Class name"`
	Description           string              `json:"description,omitempty" maxLength:"5000" description:"Class description"`
	Abilities             []AbilityRequest    `json:"abilities,omitempty" validate:"dive" description:"Skills the class grants"`
	StartingEquipment     []string            `json:"startingEquipment,omitempty" description:"Starting equipment"`
	CharacteristicBonuses []ClassBonusRequest `json:"characteristicBonuses,omitempty" validate:"dive" description:"Characteristic bonuses"`
	IsVariant             bool                `json:"isVariant,omitempty" description:"Whether this class is a variant of a base class"`
	ParentClassID         string              `json:"parentClassId,omitempty" validate:"required_if=IsVariant true" description:"Parent base class for variants"`
}

// CharacteristicBonusRequest is a nationality characteristic bonus
type CharacteristicBonusRequest struct {
	Characteristic string `json:"characteristic" validate:"required,characteristic" description:"Characteristic code or name"`
	Value          int    `json:"value" validate:"min=-20,max=20" minimum:"-20" maximum:"20" description:"Bonus added to the base value"`
}

// SkillBonusRequest is a nationality skill bonus
type SkillBonusRequest struct {
	Category string `json:"category" validate:"required,skill_category" description:"Skill category"`
	Skill    string `json:"skill" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Skill name"`
	Value    int    `json:"value" validate:"min=-100,max=100" minimum:"-100" maximum:"100" description:"Bonus added to the skill"`
}

// NationalityRequest is the body of nationality create and update
type NationalityRequest struct {
	Name                  string                       `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Nationality name"`
	Description           string                       `json:"description,omitempty" maxLength:"5000" description:"Description"`
	Region                string                       `json:"region,omitempty" description:"Region"`
	Culture               string                       `json:"culture,omitempty" description:"Culture"`
	Language              string                       `json:"language,omitempty" description:"Native language"`
	Traits                []string                     `json:"traits,omitempty" description:"Traits"`
	Languages             []string                     `json:"languages,omitempty" description:"Known languages"`
	SpecialAbilities      []string                     `json:"specialAbilities,omitempty" description:"Special abilities"`
	StartingEquipment     []string                     `json:"startingEquipment,omitempty" description:"Starting equipment"`
	CharacteristicBonuses []CharacteristicBonusRequest `json:"characteristicBonuses,omitempty" validate:"dive" description:"Characteristic bonuses"`
	SkillBonuses          []SkillBonusRequest          `json:"skillBonuses,omitempty" validate:"dive" description:"Skill bonuses"`
	RollMin               int                          `json:"rollMin,omitempty" validate:"omitempty,min=1,max=100" minimum:"0" maximum:"100" description:"Lower bound on the d100 nationality table"`
	RollMax               int                          `json:"rollMax,omitempty" validate:"omitempty,min=1,max=100,gtefield=RollMin" minimum:"0" maximum:"100" description:"Upper bound on the d100 nationality table"`
}

// DeityRequest is the body of deity create and update
type DeityRequest struct {
	Name        string   `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Deity name"`
	Alignment   string   `json:"alignment" validate:"required,oneof=Legge Caos Equilibrio Elementale" enum:"Legge,Caos,Equilibrio,Elementale" description:"Alignment"`
	Description string   `json:"description,omitempty" maxLength:"5000" description:"Description"`
	Gifts       []string `json:"gifts,omitempty" description:"Gifts granted to worshippers"`
}

// WeaponRequest is the body of weapon create and update
type WeaponRequest struct {
	Name       string `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" description:"Weapon name"`
	Category   string `json:"category" validate:"required,max=50" minLength:"1" maxLength:"50" description:"Weapon category"`
	Damage     string `json:"damage" validate:"required,max=30" minLength:"1" maxLength:"30" description:"Damage dice, e.g. 1D8+1"`
	BaseAttack int    `json:"baseAttack,omitempty" validate:"min=0,max=100" minimum:"0" maximum:"100" description:"Base attack percentage"`
	BaseParry  int    `json:"baseParry,omitempty" validate:"min=0,max=100" minimum:"0" maximum:"100" description:"Base parry percentage"`
	Hands      int    `json:"hands,omitempty" validate:"omitempty,min=1,max=2" minimum:"0" maximum:"2" description:"Hands required"`
	Cost       string `json:"cost,omitempty" maxLength:"30" description:"Cost"`
}

// ListInput lists a catalog collection
type ListInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
}

// IDInput addresses one catalog entry
type IDInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	ID            string `path:"id" required:"true" description:"Entry ID"`
}

// CreateClassInput creates a class
type CreateClassInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	Body          ClassRequest
}

// UpdateClassInput replaces a class
type UpdateClassInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	ID            string `path:"id" required:"true" description:"Class ID"`
	Body          ClassRequest
}

// CreateNationalityInput creates a nationality
type CreateNationalityInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	Body          NationalityRequest
}

// UpdateNationalityInput replaces a nationality
type UpdateNationalityInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	ID            string `path:"id" required:"true" description:"Nationality ID"`
	Body          NationalityRequest
}

// RollNationalityInput resolves a d100 roll on the nationality table
type RollNationalityInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	Roll          int    `query:"roll" minimum:"1" maximum:"100" required:"true" description:"d100 roll"`
}

// CreateDeityInput creates a deity
type CreateDeityInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	Body          DeityRequest
}

// UpdateDeityInput replaces a deity
type UpdateDeityInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	ID            string `path:"id" required:"true" description:"Deity ID"`
	Body          DeityRequest
}

// CreateWeaponInput creates a weapon
type CreateWeaponInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	Body          WeaponRequest
}

// UpdateWeaponInput replaces a weapon
type UpdateWeaponInput struct {
	Authorization string `header:"Authorization" description:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" description:"Cookie header containing stormbringer_token"`
	ID            string `path:"id" required:"true" description:"Weapon ID"`
	Body          WeaponRequest
}

// ToAbilities converts the request abilities
func (r ClassRequest) ToAbilities() []derivation.Ability {
	out := make([]derivation.Ability, len(r.Abilities))
	for i, a := range r.Abilities {
		out[i] = derivation.Ability{Name: a.Name, Percentage: a.Percentage, Bonus: a.Bonus}
	}
	return out
}

// ToBonuses converts the request bonuses, storing canonical characteristic keys
func (r ClassRequest) ToBonuses() []derivation.ClassBonus {
	out := make([]derivation.ClassBonus, len(r.CharacteristicBonuses))
	for i, b := range r.CharacteristicBonuses {
		out[i] = derivation.ClassBonus{Characteristic: canonicalKey(b.Characteristic), Value: b.Value}
	}
	return out
}

// ToCharacteristicBonuses converts the request bonuses
func (r NationalityRequest) ToCharacteristicBonuses() []derivation.CharacteristicBonus {
	out := make([]derivation.CharacteristicBonus, len(r.CharacteristicBonuses))
	for i, b := range r.CharacteristicBonuses {
		out[i] = derivation.CharacteristicBonus{Characteristic: canonicalKey(b.Characteristic), Value: b.Value}
	}
	return out
}

// ToSkillBonuses converts the request skill bonuses
func (r NationalityRequest) ToSkillBonuses() []derivation.SkillBonus {
	out := make([]derivation.SkillBonus, len(r.SkillBonuses))
	for i, b := range r.SkillBonuses {
		category, ok := derivation.ParseCategory(b.Category)
		if !ok {
			category = b.Category
		}
		out[i] = derivation.SkillBonus{Category: category, Skill: b.Skill, Value: b.Value}
	}
	return out
}

func canonicalKey(s string) string {
	if k, ok := derivation.ParseCharacteristicKey(s); ok {
		return string(k)
	}
	return s
}
