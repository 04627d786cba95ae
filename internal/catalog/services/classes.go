package services

import (
	"context"
	"log/slog"

	"stormbringer/internal/catalog/dto"
	"stormbringer/internal/catalog/models"
	"stormbringer/internal/derivation"
)

// ListClasses returns every class ordered by name
func (s *Service) ListClasses(ctx context.Context) ([]models.CharacterClass, error) {
	return s.classes.List(ctx, func(c *models.CharacterClass) string { return c.Name })
}

// GetClass returns a class, nil when it does not exist
func (s *Service) GetClass(ctx context.Context, id string) (*models.CharacterClass, error) {
	return s.classes.Get(ctx, id)
}

// DerivationClasses returns the catalog in the form the derivation engine reads
func (s *Service) DerivationClasses(ctx context.Context) ([]derivation.Class, error) {
	classes, err := s.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]derivation.Class, len(classes))
	for i := range classes {
		out[i] = classes[i].ToDerivation()
	}
	return out, nil
}

// CreateClass stores a new class. A variant is added to its parent's
// summary list in the same transaction.
func (s *Service) CreateClass(ctx context.Context, req dto.ClassRequest) (*models.CharacterClass, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	now := s.now()
	class := classFromRequest(req)
	class.ID = s.store.NewID()
	class.Variants = []models.VariantSummary{}
	class.CreatedAt = now
	class.UpdatedAt = now

	err := s.runAtomic(ctx, func(ctx context.Context) error {
		if class.IsVariant {
			parent, err := s.variantParent(ctx, class.ParentClassID, class.ID)
			if err != nil {
				return err
			}
			if err := s.classes.Put(ctx, class.ID, class); err != nil {
				return err
			}
			return s.upsertSummary(ctx, parent, class.Summary())
		}
		return s.classes.Put(ctx, class.ID, class)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Class created", "class_id", class.ID, "name", class.Name, "variant", class.IsVariant)
	return class, nil
}

// UpdateClass replaces a class. Moving a variant between parents, turning it
// into a base class or renaming it keeps every parent summary list in step.
func (s *Service) UpdateClass(ctx context.Context, id string, req dto.ClassRequest) (*models.CharacterClass, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	var updated *models.CharacterClass
	err := s.runAtomic(ctx, func(ctx context.Context) error {
		existing, err := s.classes.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}

		class := classFromRequest(req)
		class.ID = id
		class.CreatedAt = existing.CreatedAt
		class.UpdatedAt = s.now()
		class.Variants = []models.VariantSummary{}

		if class.IsVariant {
			if !existing.IsVariant && len(existing.Variants) > 0 {
				return ErrHasVariants
			}
		} else if !existing.IsVariant {
			class.Variants = existing.Variants
		}

		var newParent *models.CharacterClass
		if class.IsVariant {
			newParent, err = s.variantParent(ctx, class.ParentClassID, id)
			if err != nil {
				return err
			}
		}

		if err := s.classes.Put(ctx, id, class); err != nil {
			return err
		}

		if existing.IsVariant && (!class.IsVariant || existing.ParentClassID != class.ParentClassID) {
			if err := s.removeSummary(ctx, existing.ParentClassID, id); err != nil {
				return err
			}
		}
		if newParent != nil {
			if err := s.upsertSummary(ctx, newParent, class.Summary()); err != nil {
				return err
			}
		}

		updated = class
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Class updated", "class_id", id, "variant", updated.IsVariant)
	return updated, nil
}

// DeleteClass removes a class. A variant is removed from its parent's list;
// a base class that still has variants is refused.
func (s *Service) DeleteClass(ctx context.Context, id string) error {
	err := s.runAtomic(ctx, func(ctx context.Context) error {
		existing, err := s.classes.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		if !existing.IsVariant && len(existing.Variants) > 0 {
			return ErrHasVariants
		}
		if existing.IsVariant {
			if err := s.removeSummary(ctx, existing.ParentClassID, id); err != nil {
				return err
			}
		}
		return s.classes.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Class deleted", "class_id", id)
	return nil
}

// variantParent loads and checks the parent of variant id
func (s *Service) variantParent(ctx context.Context, parentID, id string) (*models.CharacterClass, error) {
	if parentID == "" || parentID == id {
		return nil, ErrVariantParent
	}
	parent, err := s.classes.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.IsVariant {
		return nil, ErrVariantParent
	}
	return parent, nil
}

func (s *Service) upsertSummary(ctx context.Context, parent *models.CharacterClass, summary models.VariantSummary) error {
	variants := make([]models.VariantSummary, 0, len(parent.Variants)+1)
	replaced := false
	for _, v := range parent.Variants {
		if v.ID == summary.ID {
			variants = append(variants, summary)
			replaced = true
			continue
		}
		variants = append(variants, v)
	}
	if !replaced {
		variants = append(variants, summary)
	}
	return s.classes.Update(ctx, parent.ID, map[string]any{"variants": variants, "updatedAt": s.now()})
}

func (s *Service) removeSummary(ctx context.Context, parentID, variantID string) error {
	parent, err := s.classes.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		// orphaned variant; nothing to detach from
		slog.WarnContext(ctx, "Variant parent missing", "parent_id", parentID, "variant_id", variantID)
		return nil
	}

	variants := make([]models.VariantSummary, 0, len(parent.Variants))
	for _, v := range parent.Variants {
		if v.ID != variantID {
			variants = append(variants, v)
		}
	}
	return s.classes.Update(ctx, parentID, map[string]any{"variants": variants, "updatedAt": s.now()})
}

func classFromRequest(req dto.ClassRequest) *models.CharacterClass {
	class := &models.CharacterClass{
		Name:                  req.Name,
		Description:           req.Description,
		Abilities:             req.ToAbilities(),
		StartingEquipment:     req.StartingEquipment,
		CharacteristicBonuses: req.ToBonuses(),
		IsVariant:             req.IsVariant,
	}
	if req.IsVariant {
		class.ParentClassID = req.ParentClassID
	}
	if class.StartingEquipment == nil {
		class.StartingEquipment = []string{}
	}
	return class
}
