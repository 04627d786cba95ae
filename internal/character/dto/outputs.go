package dto

import (
	"stormbringer/internal/character/models"
	"stormbringer/internal/derivation"
)

// CharacterOutput wraps a character
type CharacterOutput struct {
	Body models.Character
}

// CharacterListResponse lists characters
type CharacterListResponse struct {
	Characters []models.Character `json:"characters"`
	Total      int                `json:"total"`
}

// CharacterListOutput wraps a character list
type CharacterListOutput struct {
	Body CharacterListResponse
}

// DerivationResponse is a derived character and how its class was reached
type DerivationResponse struct {
	Character   models.Character           `json:"character"`
	ClassSource derivation.ClassSource     `json:"classSource,omitempty"`
	Options     derivation.Options         `json:"options"`
	Sorcerer    derivation.SorcererOutcome `json:"sorcerer"`
	Skipped     []string                   `json:"skipped,omitempty"`
}

// DerivationOutput wraps a derivation response
type DerivationOutput struct {
	Body DerivationResponse
}

// ApplyResponse is a character after a class or nationality was applied
type ApplyResponse struct {
	Character models.Character `json:"character"`
	Skipped   []string         `json:"skipped,omitempty"`
}

// ApplyOutput wraps an apply response
type ApplyOutput struct {
	Body ApplyResponse
}

// ClassOptionsOutput wraps the class choices of a nationality
type ClassOptionsOutput struct {
	Body derivation.Options
}

// ClassRollResponse is the class a d100 roll selects
type ClassRollResponse struct {
	Roll  int    `json:"roll"`
	Class string `json:"class"`
}

// ClassRollOutput wraps a class roll
type ClassRollOutput struct {
	Body ClassRollResponse
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteOutput wraps a deletion confirmation
type DeleteOutput struct {
	Body DeleteResponse
}
