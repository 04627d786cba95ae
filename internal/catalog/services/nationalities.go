package services

import (
	"context"
	"fmt"
	"log/slog"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/models"
	"stormbringer/internal/derivation"
)

// ListNationalities returns every nationality ordered by name
func (s *Service) ListNationalities(ctx context.Context) ([]models.Nationality, error) {
	return s.nationalities.List(ctx, func(n *models.Nationality) string { return n.Name })
}

// GetNationality returns a nationality, nil when it does not exist
func (s *Service) GetNationality(ctx context.Context, id string) (*models.Nationality, error) {
	return s.nationalities.Get(ctx, id)
}

// FindNationality returns the catalog entry matching name, nil when none does
func (s *Service) FindNationality(ctx context.Context, name string) (*models.Nationality, error) {
	all, err := s.ListNationalities(ctx)
	if err != nil {
		return nil, err
	}
	return matchNationality(all, name), nil
}

func matchNationality(all []models.Nationality, name string) *models.Nationality {
	names := make([]string, len(all))
	for i := range all {
		names[i] = all[i].Name
	}
	match, ok := derivation.MatchKey(name, names)
	if !ok {
		return nil
	}
	for i := range all {
		if all[i].Name == match {
			return &all[i]
		}
	}
	return nil
}

// CreateNationality stores a new nationality
func (s *Service) CreateNationality(ctx context.Context, req dto.NationalityRequest) (*models.Nationality, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	now := s.now()
	nat := nationalityFromRequest(req)
	nat.ID = s.store.NewID()
	nat.CreatedAt = now
	nat.UpdatedAt = now

	if err := s.nationalities.Put(ctx, nat.ID, nat); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Nationality created", "nationality_id", nat.ID, "name", nat.Name)
	return nat, nil
}

// UpdateNationality replaces a nationality
func (s *Service) UpdateNationality(ctx context.Context, id string, req dto.NationalityRequest) (*models.Nationality, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	existing, err := s.nationalities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	nat := nationalityFromRequest(req)
	nat.ID = id
	nat.CreatedAt = existing.CreatedAt
	nat.UpdatedAt = s.now()

	if err := s.nationalities.Put(ctx, id, nat); err != nil {
		return nil, err
	}
	return nat, nil
}

// DeleteNationality removes a nationality
func (s *Service) DeleteNationality(ctx context.Context, id string) error {
	existing, err := s.nationalities.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.nationalities.Delete(ctx, id)
}

// RollNationality resolves a d100 roll. Catalog entries with a stored range
// take precedence; otherwise the static table names the nationality and the
// catalog entry of that name, if any, is attached.
func (s *Service) RollNationality(ctx context.Context, roll int) (*dto.NationalityRollResponse, error) {
	if roll < derivation.RollMin || roll > derivation.RollMax {
		return nil, fmt.Errorf("%w: roll %d outside %d-%d", ErrInvalidInput, roll, derivation.RollMin, derivation.RollMax)
	}

	all, err := s.ListNationalities(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		n := &all[i]
		if n.HasRollRange() && roll >= n.RollMin && roll <= n.RollMax {
			return &dto.NationalityRollResponse{Roll: roll, Name: n.Name, Nationality: n}, nil
		}
	}

	name, err := derivation.NationalityForRoll(roll)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &dto.NationalityRollResponse{Roll: roll, Name: name, Nationality: matchNationality(all, name)}, nil
}

func nationalityFromRequest(req dto.NationalityRequest) *models.Nationality {
	return &models.Nationality{
		Name:                  req.Name,
		Description:           req.Description,
		Region:                req.Region,
		Culture:               req.Culture,
		Language:              req.Language,
		Traits:                orEmpty(req.Traits),
		Languages:             orEmpty(req.Languages),
		SpecialAbilities:      orEmpty(req.SpecialAbilities),
		StartingEquipment:     orEmpty(req.StartingEquipment),
		CharacteristicBonuses: req.ToCharacteristicBonuses(),
		SkillBonuses:          req.ToSkillBonuses(),
		RollMin:               req.RollMin,
		RollMax:               req.RollMax,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
