package derivation

import "strings"

// Special is one of the nationalities with their own class rules
type Special string

const (
	Melnibone           Special = "Melniboné"
	SolitudinePiangente Special = "Solitudine Piangente"
	PanTang             Special = "Pan Tang"
)

// Class names produced by the rules
const (
	ClassGuerriero   = "Guerriero"
	ClassMercante    = "Mercante"
	ClassMarinaio    = "Marinaio"
	ClassCacciatore  = "Cacciatore"
	ClassAgricoltore = "Agricoltore"
	ClassSacerdote   = "Sacerdote"
	ClassNobile      = "Nobile"
	ClassMendicante  = "Mendicante"
	ClassLadro       = "Ladro"
	ClassArtigiano   = "Artigiano"
	ClassStregone    = "Stregone"
)

var specials = []string{string(Melnibone), string(SolitudinePiangente), string(PanTang)}

var dualClasses = map[Special][]string{
	Melnibone:           {ClassNobile, ClassGuerriero},
	SolitudinePiangente: {ClassGuerriero, ClassCacciatore},
	PanTang:             {ClassSacerdote, ClassGuerriero},
}

type defaultEntry struct {
	nationality string
	class       string
}

// defaultClasses is ordered; the first containment match wins
var defaultClasses = []defaultEntry{
	{"Pan Tang", ClassSacerdote},
	{"Nadsokor", ClassMendicante},
	{"Eshmir", ClassSacerdote},
	{"Melniboné", ClassNobile},
	{"Solitudine Piangente", ClassGuerriero},
	{"Isole Purpuree", ClassMercante},
	{"Vilmir", ClassSacerdote},
	{"Org", ClassCacciatore},
	{"Myyrrhn", ClassCacciatore},
	{"Oin", ClassAgricoltore},
	{"Yu", ClassAgricoltore},
}

// NormalizeNationality reports which special nationality name refers to,
// tolerating case, accents and spelling variants that contain the name.
func NormalizeNationality(name string) (Special, bool) {
	folded := Fold(name)
	if folded == "" {
		return "", false
	}
	for _, s := range specials {
		if Fold(s) == folded {
			return Special(s), true
		}
	}
	for _, s := range specials {
		fs := Fold(s)
		if fs != "" && strings.Contains(folded, fs) {
			return Special(s), true
		}
	}
	return "", false
}

// DualClasses returns the two classes offered to a dual-class nationality,
// nil for every other nationality.
func DualClasses(nationality string) []string {
	special, ok := NormalizeNationality(nationality)
	if !ok {
		return nil
	}
	classes := dualClasses[special]
	return append([]string(nil), classes...)
}

// DefaultClass returns the single default class of nationality
func DefaultClass(nationality string) (string, bool) {
	names := make([]string, len(defaultClasses))
	for i, e := range defaultClasses {
		names[i] = e.nationality
	}
	match, ok := MatchKey(nationality, names)
	if !ok {
		return "", false
	}
	for _, e := range defaultClasses {
		if e.nationality == match {
			return e.class, true
		}
	}
	return "", false
}

// Options describes the class choice a nationality allows
type Options struct {
	Classes         []string `json:"classes"`
	Default         string   `json:"default,omitempty"`
	Dual            bool     `json:"dual"`
	AllowRandomRoll bool     `json:"allowRandomRoll"`
}

// ClassOptions returns the class choices for nationality. Dual-class
// nationalities offer both classes and no random roll.
func ClassOptions(nationality string) Options {
	def, _ := DefaultClass(nationality)
	if dual := DualClasses(nationality); dual != nil {
		return Options{Classes: dual, Default: def, Dual: true}
	}
	opts := Options{Default: def, AllowRandomRoll: true}
	if def != "" {
		opts.Classes = []string{def}
	}
	return opts
}
