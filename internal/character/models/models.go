package models

import (
	"time"

	"stormbringer/internal/derivation"
)

// CharactersCollection holds character documents
const CharactersCollection = "characters"

// Weapon is one weapon line on a sheet
type Weapon struct {
	Name             string `bson:"name" json:"name"`
	AttackPercentage int    `bson:"attackPercentage" json:"attackPercentage"`
	Damage           string `bson:"damage" json:"damage"`
	ParryPercentage  int    `bson:"parryPercentage" json:"parryPercentage"`
}

// Protection is the armour and wounds block, stored as entered
type Protection struct {
	Armor        string `bson:"armor" json:"armor"`
	Protection   int    `bson:"protection" json:"protection"`
	SeriousWound int    `bson:"seriousWound" json:"seriousWound"`
	HitPoints    int    `bson:"hitPoints" json:"hitPoints"`
}

// Character is a player-owned sheet
type Character struct {
	ID              string                     `bson:"_id,omitempty" json:"id"`
	OwnerID         string                     `bson:"ownerId" json:"ownerId"`
	Name            string                     `bson:"name" json:"name"`
	Sex             string                     `bson:"sex" json:"sex"`
	Age             int                        `bson:"age" json:"age"`
	Nationality     string                     `bson:"nationality" json:"nationality"`
	Class           string                     `bson:"class" json:"class"`
	Cult            string                     `bson:"cult" json:"cult"`
	Elan            int                        `bson:"elan" json:"elan"`
	Handicap        string                     `bson:"handicap" json:"handicap"`
	Description     string                     `bson:"description" json:"description"`
	Characteristics derivation.Characteristics `bson:"characteristics" json:"characteristics"`
	CustomStats     derivation.Skills          `bson:"customStats" json:"customStats"`
	Weapons         []Weapon                   `bson:"weapons" json:"weapons"`
	Equipment       []string                   `bson:"equipment" json:"equipment"`
	Inventory       []string                   `bson:"inventory" json:"inventory"`
	Money           string                     `bson:"money" json:"money"`
	Protection      Protection                 `bson:"protection" json:"protection"`
	CreatedAt       time.Time                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                  `bson:"updatedAt" json:"updatedAt"`
}

// Sheet returns the part of the character the derivation engine works on
func (c *Character) Sheet() derivation.Sheet {
	return derivation.Sheet{Characteristics: c.Characteristics, Skills: c.CustomStats}
}

// SetSheet stores a derived sheet back on the character
func (c *Character) SetSheet(s derivation.Sheet) {
	c.Characteristics = s.Characteristics
	c.CustomStats = s.Skills
}
