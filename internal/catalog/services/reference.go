package services

import (
	"context"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/models"
)

// ListDeities returns every deity ordered by name
func (s *Service) ListDeities(ctx context.Context) ([]models.Deity, error) {
	return s.deities.List(ctx, func(d *models.Deity) string { return d.Name })
}

// GetDeity returns a deity, nil when it does not exist
func (s *Service) GetDeity(ctx context.Context, id string) (*models.Deity, error) {
	return s.deities.Get(ctx, id)
}

// SaveDeity creates a deity when id is empty and replaces it otherwise
func (s *Service) SaveDeity(ctx context.Context, id string, req dto.DeityRequest) (*models.Deity, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	deity := &models.Deity{
		Name:        req.Name,
		Alignment:   models.Alignment(req.Alignment),
		Description: req.Description,
		Gifts:       orEmpty(req.Gifts),
		UpdatedAt:   s.now(),
	}

	if id == "" {
		deity.ID = s.store.NewID()
		deity.CreatedAt = deity.UpdatedAt
	} else {
		existing, err := s.deities.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		deity.ID = id
		deity.CreatedAt = existing.CreatedAt
	}

	if err := s.deities.Put(ctx, deity.ID, deity); err != nil {
		return nil, err
	}
	return deity, nil
}

// DeleteDeity removes a deity
func (s *Service) DeleteDeity(ctx context.Context, id string) error {
	existing, err := s.deities.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.deities.Delete(ctx, id)
}

// ListWeapons returns every weapon ordered by name
func (s *Service) ListWeapons(ctx context.Context) ([]models.Weapon, error) {
	return s.weapons.List(ctx, func(w *models.Weapon) string { return w.Name })
}

// GetWeapon returns a weapon, nil when it does not exist
func (s *Service) GetWeapon(ctx context.Context, id string) (*models.Weapon, error) {
	return s.weapons.Get(ctx, id)
}

// SaveWeapon creates a weapon when id is empty and replaces it otherwise
func (s *Service) SaveWeapon(ctx context.Context, id string, req dto.WeaponRequest) (*models.Weapon, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	hands := req.Hands
	if hands == 0 {
		hands = 1
	}
	weapon := &models.Weapon{
		Name:       req.Name,
		Category:   req.Category,
		Damage:     req.Damage,
		BaseAttack: req.BaseAttack,
		BaseParry:  req.BaseParry,
		Hands:      hands,
		Cost:       req.Cost,
		UpdatedAt:  s.now(),
	}

	if id == "" {
		weapon.ID = s.store.NewID()
		weapon.CreatedAt = weapon.UpdatedAt
	} else {
		existing, err := s.weapons.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		weapon.ID = id
		weapon.CreatedAt = existing.CreatedAt
	}

	if err := s.weapons.Put(ctx, weapon.ID, weapon); err != nil {
		return nil, err
	}
	return weapon, nil
}

// DeleteWeapon removes a weapon
func (s *Service) DeleteWeapon(ctx context.Context, id string) error {
	existing, err := s.weapons.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.weapons.Delete(ctx, id)
}
