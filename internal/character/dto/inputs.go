package dto

// CharacteristicRequest is one characteristic as entered on the sheet
type CharacteristicRequest struct {
	Name           string `json:"name,omitempty" maxLength:"50" doc:"Display name"`
	BaseValue      int    `json:"baseValue" validate:"min=0,max=100" minimum:"0" maximum:"100" doc:"Rolled base value"`
	MelniboneBonus *int   `json:"melniboneBonus,omitempty" validate:"omitempty,min=-20,max=20" doc:"Melniboné nationality bonus"`
	PanTangBonus   *int   `json:"panTangBonus,omitempty" validate:"omitempty,min=-20,max=20" doc:"Pan Tang nationality bonus"`
}

// SkillRequest is one skill as entered on the sheet
type SkillRequest struct {
	Name       string `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" doc:"Skill name"`
	BaseValue  int    `json:"baseValue" validate:"min=0,max=200" minimum:"0" maximum:"200" doc:"Skill percentage"`
	BaseValue2 *int   `json:"baseValue2,omitempty" validate:"omitempty,min=0,max=200" doc:"Second value for dual-value skills such as languages"`
	Checked    bool   `json:"checked,omitempty" doc:"Whether the class grants the skill"`
}

// WeaponRequest is one weapon line
type WeaponRequest struct {
	Name             string `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" doc:"Weapon name"`
	AttackPercentage int    `json:"attackPercentage,omitempty" validate:"min=0,max=200" doc:"Attack percentage"`
	Damage           string `json:"damage,omitempty" validate:"max=30" maxLength:"30" doc:"Damage dice"`
	ParryPercentage  int    `json:"parryPercentage,omitempty" validate:"min=0,max=200" doc:"Parry percentage"`
}

// ProtectionRequest is the armour and wounds block
type ProtectionRequest struct {
	Armor        string `json:"armor,omitempty" maxLength:"100" doc:"Armour worn"`
	Protection   int    `json:"protection,omitempty" validate:"min=0" doc:"Armour protection"`
	SeriousWound int    `json:"seriousWound,omitempty" validate:"min=0" doc:"Serious wound threshold"`
	HitPoints    int    `json:"hitPoints,omitempty" validate:"min=0" doc:"Hit points"`
}

// SheetRequest is a full character sheet as the player edits it
type SheetRequest struct {
	Name            string                             `json:"name" validate:"required,max=100" minLength:"1" maxLength:"100" doc:"Character name"`
	Sex             string                             `json:"sex,omitempty" maxLength:"30" doc:"Sex"`
	Age             int                                `json:"age,omitempty" validate:"min=0,max=10000" doc:"Age"`
	Nationality     string                             `json:"nationality,omitempty" validate:"max=100" maxLength:"100" doc:"Nationality name"`
	Class           string                             `json:"class,omitempty" validate:"max=100" maxLength:"100" doc:"Class name"`
	Cult            string                             `json:"cult,omitempty" maxLength:"100" doc:"Cult"`
	Elan            int                                `json:"elan,omitempty" validate:"min=0" doc:"Elan"`
	Handicap        string                             `json:"handicap,omitempty" maxLength:"500" doc:"Handicap"`
	Description     string                             `json:"description,omitempty" maxLength:"5000" doc:"Background"`
	Characteristics map[string]CharacteristicRequest   `json:"characteristics" validate:"required,dive,keys,characteristic,endkeys" doc:"Characteristics keyed by code (FOR, COS, TAG, INT, MAN, DES, FAS)"`
	CustomStats     map[string]map[string]SkillRequest `json:"customStats,omitempty" validate:"omitempty,dive,keys,skill_category,endkeys,dive" doc:"Skills keyed by category, then skill key"`
	Weapons         []WeaponRequest                    `json:"weapons,omitempty" validate:"dive" doc:"Weapons"`
	Equipment       []string                           `json:"equipment,omitempty" doc:"Equipment"`
	Inventory       []string                           `json:"inventory,omitempty" doc:"Inventory"`
	Money           string                             `json:"money,omitempty" maxLength:"100" doc:"Money"`
	Protection      ProtectionRequest                  `json:"protection,omitempty" doc:"Armour and wounds"`
}

// CreateCharacterRequest is the wizard submission: the sheet plus the inputs
// class resolution needs
type CreateCharacterRequest struct {
	SheetRequest
	NationalityID string `json:"nationalityId,omitempty" doc:"Catalog nationality whose bonuses are applied"`
	IntBonus      *int   `json:"intBonus,omitempty" validate:"omitempty,min=-20,max=20" doc:"Nationality INT bonus input"`
	ManBonus      *int   `json:"manBonus,omitempty" validate:"omitempty,min=-20,max=20" doc:"Nationality MAN bonus input"`
	ChosenClass   string `json:"chosenClass,omitempty" validate:"max=100" doc:"Class picked by the player"`
	ClassRoll     *int   `json:"classRoll,omitempty" validate:"omitempty,min=1,max=100" doc:"d100 roll on the class table"`
}

// ListCharactersInput lists the caller's characters
type ListCharactersInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// CharacterIDInput addresses one character
type CharacterIDInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	ID            string `path:"id" required:"true" doc:"Character ID"`
}

// CreateCharacterInput creates a character through the wizard pipeline
type CreateCharacterInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Body          CreateCharacterRequest
}

// UpdateCharacterInput replaces a character sheet
type UpdateCharacterInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	ID            string `path:"id" required:"true" doc:"Character ID"`
	Body          SheetRequest
}

// ApplyClassInput applies a catalog class to a character
type ApplyClassInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	ID            string `path:"id" required:"true" doc:"Character ID"`
	Body          struct {
		ClassID string `json:"classId" minLength:"1" doc:"Catalog class ID"`
	}
}

// ApplyNationalityInput applies a catalog nationality to a character
type ApplyNationalityInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	ID            string `path:"id" required:"true" doc:"Character ID"`
	Body          struct {
		NationalityID string `json:"nationalityId" minLength:"1" doc:"Catalog nationality ID"`
	}
}

// ClassOptionsInput asks which classes a nationality offers
type ClassOptionsInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Nationality   string `query:"nationality" doc:"Nationality name"`
}

// RollClassInput resolves a d100 roll on the class table
type RollClassInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Roll          int    `query:"roll" required:"true" minimum:"1" maximum:"100" doc:"d100 roll"`
}
