package models

import (
	"time"

	"stormbringer/internal/derivation"
)

// Collection names
const (
	ClassesCollection       = "classes"
	NationalitiesCollection = "nationalities"
	DeitiesCollection       = "deities"
	WeaponsCollection       = "weapons"
)

// VariantSummary is the copy of a variant kept on its parent class
type VariantSummary struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// CharacterClass is a base class or a variant of exactly one base class.
// A base class mirrors every variant pointing at it in Variants.
type CharacterClass struct {
	ID                    string                  `bson:"_id,omitempty" json:"id"`
	Name                  string                  `bson:"name" json:"name"`
	Description           string                  `bson:"description" json:"description"`
	Abilities             []derivation.Ability    `bson:"abilities" json:"abilities"`
	StartingEquipment     []string                `bson:"startingEquipment" json:"startingEquipment"`
	CharacteristicBonuses []derivation.ClassBonus `bson:"characteristicBonuses" json:"characteristicBonuses"`
	IsVariant             bool                    `bson:"isVariant" json:"isVariant"`
	ParentClassID         string                  `bson:"parentClassId,omitempty" json:"parentClassId,omitempty"`
	Variants              []VariantSummary        `bson:"variants" json:"variants"`
	CreatedAt             time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// Summary returns the entry the parent keeps for this variant
func (c *CharacterClass) Summary() VariantSummary {
	return VariantSummary{ID: c.ID, Name: c.Name, Description: c.Description}
}

// ToDerivation returns the engine view of the class
func (c *CharacterClass) ToDerivation() derivation.Class {
	return derivation.Class{
		Name:                  c.Name,
		Abilities:             c.Abilities,
		CharacteristicBonuses: c.CharacteristicBonuses,
	}
}

// Nationality is a catalog nationality. RollMin and RollMax, when both set,
// place it on the d100 nationality table.
type Nationality struct {
	ID                    string                           `bson:"_id,omitempty" json:"id"`
	Name                  string                           `bson:"name" json:"name"`
	Description           string                           `bson:"description" json:"description"`
	Region                string                           `bson:"region,omitempty" json:"region,omitempty"`
	Culture               string                           `bson:"culture,omitempty" json:"culture,omitempty"`
	Language              string                           `bson:"language,omitempty" json:"language,omitempty"`
	Traits                []string                         `bson:"traits" json:"traits"`
	Languages             []string                         `bson:"languages" json:"languages"`
	SpecialAbilities      []string                         `bson:"specialAbilities" json:"specialAbilities"`
	StartingEquipment     []string                         `bson:"startingEquipment" json:"startingEquipment"`
	CharacteristicBonuses []derivation.CharacteristicBonus `bson:"characteristicBonuses" json:"characteristicBonuses"`
	SkillBonuses          []derivation.SkillBonus          `bson:"skillBonuses" json:"skillBonuses"`
	RollMin               int                              `bson:"rollMin,omitempty" json:"rollMin,omitempty"`
	RollMax               int                              `bson:"rollMax,omitempty" json:"rollMax,omitempty"`
	CreatedAt             time.Time                        `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time                        `bson:"updatedAt" json:"updatedAt"`
}

// HasRollRange reports whether the nationality sits on the roll table
func (n *Nationality) HasRollRange() bool {
	return n.RollMin > 0 && n.RollMax > 0
}

// ToDerivation returns the engine view of the nationality
func (n *Nationality) ToDerivation() derivation.Nationality {
	return derivation.Nationality{
		Name:                  n.Name,
		CharacteristicBonuses: n.CharacteristicBonuses,
		SkillBonuses:          n.SkillBonuses,
	}
}

// Alignment of a deity
type Alignment string

const (
	AlignmentLaw       Alignment = "Legge"
	AlignmentChaos     Alignment = "Caos"
	AlignmentBalance   Alignment = "Equilibrio"
	AlignmentElemental Alignment = "Elementale"
)

// Deity is a Lord of Law or Chaos, the Balance or an elemental ruler
type Deity struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Alignment   Alignment `bson:"alignment" json:"alignment"`
	Description string    `bson:"description" json:"description"`
	Gifts       []string  `bson:"gifts" json:"gifts"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Weapon is an entry of the reference weapon list
type Weapon struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Category   string    `bson:"category" json:"category"`
	Damage     string    `bson:"damage" json:"damage"`
	BaseAttack int       `bson:"baseAttack" json:"baseAttack"`
	BaseParry  int       `bson:"baseParry" json:"baseParry"`
	Hands      int       `bson:"hands" json:"hands"`
	Cost       string    `bson:"cost,omitempty" json:"cost,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
