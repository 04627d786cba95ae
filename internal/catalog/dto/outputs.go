package dto

import "stormbringer/internal/catalog/models"

// ClassOutput wraps a class
type ClassOutput struct {
	Body models.CharacterClass
}

// ClassListResponse lists classes
type ClassListResponse struct {
	Classes []models.CharacterClass `json:"classes"`
	Total   int                     `json:"total"`
}

// ClassListOutput wraps a class list
type ClassListOutput struct {
	Body ClassListResponse
}

// NationalityOutput wraps a nationality
type NationalityOutput struct {
	Body models.Nationality
}

// NationalityListResponse lists nationalities
type NationalityListResponse struct {
	Nationalities []models.Nationality `json:"nationalities"`
	Total         int                  `json:"total"`
}

// NationalityListOutput wraps a nationality list
type NationalityListOutput struct {
	Body NationalityListResponse
}

// NationalityRollResponse is the outcome of a nationality roll. Nationality
// is nil when the rolled name has no catalog entry.
type NationalityRollResponse struct {
	Roll        int                 `json:"roll"`
	Name        string              `json:"name"`
	Nationality *models.Nationality `json:"nationality,omitempty"`
}

// NationalityRollOutput wraps a nationality roll
type NationalityRollOutput struct {
	Body NationalityRollResponse
}

// DeityOutput wraps a deity
type DeityOutput struct {
	Body models.Deity
}

// DeityListResponse lists deities
type DeityListResponse struct {
	Deities []models.Deity `json:"deities"`
	Total   int            `json:"total"`
}

// DeityListOutput wraps a deity list
type DeityListOutput struct {
	Body DeityListResponse
}

// WeaponOutput wraps a weapon
type WeaponOutput struct {
	Body models.Weapon
}

// WeaponListResponse lists weapons
type WeaponListResponse struct {
	Weapons []models.Weapon `json:"weapons"`
	Total   int             `json:"total"`
}

// WeaponListOutput wraps a weapon list
type WeaponListOutput struct {
	Body WeaponListResponse
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
