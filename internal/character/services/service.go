package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	catalogModels "stormbringer/internal/catalog/models"
	"stormbringer/internal/character/dto"
	"stormbringer/internal/character/models"
	"stormbringer/internal/derivation"
	"stormbringer/pkg/handlers"

	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotFound is returned when the character does not exist
	ErrNotFound = errors.New("character not found")
	// ErrForbidden is returned when the caller does not own the character
	ErrForbidden = errors.New("character belongs to another player")
	// ErrInvalidInput wraps request validation failures
	ErrInvalidInput = errors.New("invalid character input")
	// ErrUnknownReference is returned when a referenced catalog entry is missing
	ErrUnknownReference = errors.New("catalog entry not found")
)

// Catalog is the part of the reference catalog characters are derived from
type Catalog interface {
	GetClass(ctx context.Context, id string) (*catalogModels.CharacterClass, error)
	GetNationality(ctx context.Context, id string) (*catalogModels.Nationality, error)
	FindNationality(ctx context.Context, name string) (*catalogModels.Nationality, error)
	DerivationClasses(ctx context.Context) ([]derivation.Class, error)
}

// IDGenerator issues document ids
type IDGenerator interface {
	NewID() string
}

// Service handles character business logic
type Service struct {
	repo    *Repository
	ids     IDGenerator
	catalog Catalog
	now     func() time.Time
}

// NewService creates a new character service
func NewService(repo *Repository, ids IDGenerator, catalog Catalog) *Service {
	return &Service{
		repo:    repo,
		ids:     ids,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create runs the wizard submission through the derivation pipeline and
// stores the resulting character for ownerID
func (s *Service) Create(ctx context.Context, ownerID string, req dto.CreateCharacterRequest) (*dto.DerivationResponse, error) {
	ctx, span := handlers.StartSpan(ctx, "characters.create", attribute.String("owner.id", ownerID))
	defer span.End()

	resp, err := s.Preview(ctx, ownerID, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("character.class", resp.Character.Class))

	now := s.now()
	resp.Character.ID = s.ids.NewID()
	resp.Character.CreatedAt = now
	resp.Character.UpdatedAt = now

	if err := s.repo.SaveCharacter(ctx, &resp.Character); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Character created",
		"character_id", resp.Character.ID,
		"owner_id", ownerID,
		"class", resp.Character.Class,
		"class_source", resp.ClassSource)
	return resp, nil
}

// Preview derives a character without storing it
func (s *Service) Preview(ctx context.Context, ownerID string, req dto.CreateCharacterRequest) (*dto.DerivationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	nationality, err := s.resolveNationality(ctx, req.NationalityID, req.Nationality)
	if err != nil {
		return nil, err
	}
	classes, err := s.catalog.DerivationClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}

	chosen := req.ChosenClass
	if chosen == "" {
		chosen = req.Class
	}
	in := derivation.DeriveInput{
		Nationality: req.Nationality,
		Sheet:       sheetFromRequest(req.SheetRequest),
		IntBonus:    req.IntBonus,
		ManBonus:    req.ManBonus,
		ChosenClass: chosen,
		ClassRoll:   req.ClassRoll,
		Classes:     classes,
	}
	if nationality != nil {
		data := nationality.ToDerivation()
		in.NationalityData = &data
		in.Nationality = nationality.Name
	}

	out := derivation.Derive(in)

	character := characterFromRequest(req.SheetRequest)
	character.OwnerID = ownerID
	character.Nationality = in.Nationality
	character.Class = out.Class
	character.SetSheet(out.Sheet)

	return &dto.DerivationResponse{
		Character:   *character,
		ClassSource: out.ClassSource,
		Options:     out.Options,
		Sorcerer:    out.Sorcerer,
		Skipped:     out.Skipped,
	}, nil
}

// Get returns a character, nil when it does not exist
func (s *Service) Get(ctx context.Context, id string) (*models.Character, error) {
	return s.repo.GetCharacter(ctx, id)
}

// ListByOwner returns the characters of ownerID
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]models.Character, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update replaces the sheet of a character owned by ownerID. Values are
// stored as entered; no derivation runs.
func (s *Service) Update(ctx context.Context, id, ownerID string, req dto.SheetRequest) (*models.Character, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	character := characterFromRequest(req)
	character.ID = existing.ID
	character.OwnerID = existing.OwnerID
	character.CreatedAt = existing.CreatedAt
	character.UpdatedAt = s.now()

	if err := s.repo.SaveCharacter(ctx, character); err != nil {
		return nil, err
	}
	return character, nil
}

// Delete removes a character owned by ownerID
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.DeleteCharacter(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Character deleted", "character_id", id, "owner_id", ownerID)
	return nil
}

// ApplyClass applies a catalog class to a stored character and records the
// class name on it
func (s *Service) ApplyClass(ctx context.Context, id, ownerID, classID string) (*dto.ApplyResponse, error) {
	character, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	class, err := s.catalog.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("%w: class %s", ErrUnknownReference, classID)
	}

	sheet := character.Sheet().Clone()
	res := derivation.ApplyClass(&sheet, class.ToDerivation())
	character.SetSheet(sheet)
	character.Class = class.Name

	return s.saveApplied(ctx, character, res)
}

// ApplyNationality applies a catalog nationality's bonuses to a stored
// character and records the nationality name on it. Bonuses are additive.
func (s *Service) ApplyNationality(ctx context.Context, id, ownerID, nationalityID string) (*dto.ApplyResponse, error) {
	character, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	nationality, err := s.catalog.GetNationality(ctx, nationalityID)
	if err != nil {
		return nil, err
	}
	if nationality == nil {
		return nil, fmt.Errorf("%w: nationality %s", ErrUnknownReference, nationalityID)
	}

	sheet := character.Sheet().Clone()
	res := derivation.ApplyNationality(&sheet, nationality.ToDerivation())
	character.SetSheet(sheet)
	character.Nationality = nationality.Name

	return s.saveApplied(ctx, character, res)
}

// ClassOptions returns the class choices a nationality offers
func (s *Service) ClassOptions(nationality string) derivation.Options {
	return derivation.ClassOptions(nationality)
}

// RollClass resolves a d100 roll on the class table
func (s *Service) RollClass(roll int) (string, error) {
	class, err := derivation.ClassForRoll(roll)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return class, nil
}

func (s *Service) saveApplied(ctx context.Context, character *models.Character, res derivation.Result) (*dto.ApplyResponse, error) {
	character.UpdatedAt = s.now()
	if err := s.repo.SaveCharacter(ctx, character); err != nil {
		return nil, err
	}
	if len(res.Skipped) > 0 {
		slog.DebugContext(ctx, "Unmapped catalog data skipped", "character_id", character.ID, "skipped", res.Skipped)
	}
	return &dto.ApplyResponse{Character: *character, Skipped: res.Skipped}, nil
}

// owned loads a character and checks it belongs to ownerID
func (s *Service) owned(ctx context.Context, id, ownerID string) (*models.Character, error) {
	character, err := s.repo.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, ErrNotFound
	}
	if character.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return character, nil
}

func (s *Service) resolveNationality(ctx context.Context, id, name string) (*catalogModels.Nationality, error) {
	if id != "" {
		nationality, err := s.catalog.GetNationality(ctx, id)
		if err != nil {
			return nil, err
		}
		if nationality == nil {
			return nil, fmt.Errorf("%w: nationality %s", ErrUnknownReference, id)
		}
		return nationality, nil
	}
	if name == "" {
		return nil, nil
	}
	return s.catalog.FindNationality(ctx, name)
}

func validateRequest(req interface{}) error {
	if err := dto.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func sheetFromRequest(req dto.SheetRequest) derivation.Sheet {
	sheet := derivation.Sheet{
		Characteristics: make(derivation.Characteristics, len(req.Characteristics)),
		Skills:          make(derivation.Skills, len(req.CustomStats)),
	}

	for raw, c := range req.Characteristics {
		key, ok := derivation.ParseCharacteristicKey(raw)
		if !ok {
			continue
		}
		name := c.Name
		if name == "" {
			name = key.DisplayName()
		}
		sheet.Characteristics[key] = derivation.CharacteristicValue{
			Name:           name,
			BaseValue:      c.BaseValue,
			MelniboneBonus: c.MelniboneBonus,
			PanTangBonus:   c.PanTangBonus,
		}
	}

	for rawCategory, skills := range req.CustomStats {
		category, ok := derivation.ParseCategory(rawCategory)
		if !ok {
			continue
		}
		if sheet.Skills[category] == nil {
			sheet.Skills[category] = make(map[string]derivation.Skill, len(skills))
		}
		for key, sk := range skills {
			sheet.Skills[category][key] = derivation.Skill{
				Name:       sk.Name,
				BaseValue:  sk.BaseValue,
				BaseValue2: sk.BaseValue2,
				Checked:    sk.Checked,
			}
		}
	}

	return sheet
}

func characterFromRequest(req dto.SheetRequest) *models.Character {
	weapons := make([]models.Weapon, len(req.Weapons))
	for i, w := range req.Weapons {
		weapons[i] = models.Weapon{
			Name:             w.Name,
			AttackPercentage: w.AttackPercentage,
			Damage:           w.Damage,
			ParryPercentage:  w.ParryPercentage,
		}
	}

	character := &models.Character{
		Name:        req.Name,
		Sex:         req.Sex,
		Age:         req.Age,
		Nationality: req.Nationality,
		Class:       req.Class,
		Cult:        req.Cult,
		Elan:        req.Elan,
		Handicap:    req.Handicap,
		Description: req.Description,
		Weapons:     weapons,
		Equipment:   nonNil(req.Equipment),
		Inventory:   nonNil(req.Inventory),
		Money:       req.Money,
		Protection: models.Protection{
			Armor:        req.Protection.Armor,
			Protection:   req.Protection.Protection,
			SeriousWound: req.Protection.SeriousWound,
			HitPoints:    req.Protection.HitPoints,
		},
	}
	character.SetSheet(sheetFromRequest(req))
	return character
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
