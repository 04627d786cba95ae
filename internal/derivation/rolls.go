package derivation

import (
	"fmt"
	"sort"
)

// RollRange maps the inclusive roll interval [Min, Max] to Value
type RollRange struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Value string `json:"value"`
}

// Roll bounds shared by every d100 table
const (
	RollMin = 1
	RollMax = 100
)

// ClassRollTable is the d100 class table
var ClassRollTable = []RollRange{
	{1, 20, ClassGuerriero},
	{21, 30, ClassMercante},
	{31, 40, ClassMarinaio},
	{41, 50, ClassCacciatore},
	{51, 60, ClassAgricoltore},
	{61, 70, ClassSacerdote},
	{71, 75, ClassNobile},
	{76, 80, ClassMendicante},
	{81, 90, ClassLadro},
	{91, 100, ClassArtigiano},
}

// NationalityRollTable is the d100 nationality table used when the catalog
// carries no roll ranges of its own
var NationalityRollTable = []RollRange{
	{1, 3, "Melniboné"},
	{4, 6, "Pan Tang"},
	{7, 9, "Myyrrhn"},
	{10, 14, "Dharijor"},
	{15, 19, "Jharkor"},
	{20, 24, "Shazar"},
	{25, 29, "Tarkesh"},
	{30, 34, "Vilmir"},
	{35, 39, "Ilmiora"},
	{40, 44, "Nadsokor"},
	{45, 52, "Solitudine Piangente"},
	{53, 57, "Eshmir"},
	{58, 62, "Isole Purpuree"},
	{63, 67, "Lormyr"},
	{68, 72, "Argimiliar"},
	{73, 77, "Pikarayd"},
	{78, 82, "Filkhar"},
	{83, 88, "Oin"},
	{89, 94, "Yu"},
	{95, 100, "Org"},
}

// ClassForRoll returns the class of a d100 roll
func ClassForRoll(roll int) (string, error) {
	return Lookup(ClassRollTable, roll)
}

// NationalityForRoll returns the nationality of a d100 roll
func NationalityForRoll(roll int) (string, error) {
	return Lookup(NationalityRollTable, roll)
}

// Lookup returns the value of the range containing roll
func Lookup(table []RollRange, roll int) (string, error) {
	if roll < RollMin || roll > RollMax {
		return "", fmt.Errorf("roll %d outside %d-%d", roll, RollMin, RollMax)
	}
	for _, r := range table {
		if roll >= r.Min && roll <= r.Max {
			return r.Value, nil
		}
	}
	return "", fmt.Errorf("roll %d not covered by table", roll)
}

// ValidateRollTable checks that table partitions 1..100 with no gap or overlap
func ValidateRollTable(table []RollRange) error {
	if len(table) == 0 {
		return fmt.Errorf("empty roll table")
	}

	sorted := append([]RollRange(nil), table...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	next := RollMin
	for _, r := range sorted {
		if r.Min > r.Max {
			return fmt.Errorf("range %d-%d (%s) is inverted", r.Min, r.Max, r.Value)
		}
		if r.Min < next {
			return fmt.Errorf("range %d-%d (%s) overlaps previous range", r.Min, r.Max, r.Value)
		}
		if r.Min > next {
			return fmt.Errorf("gap before %d-%d (%s): %d-%d uncovered", r.Min, r.Max, r.Value, next, r.Min-1)
		}
		next = r.Max + 1
	}
	if next != RollMax+1 {
		return fmt.Errorf("table ends at %d, want %d", next-1, RollMax)
	}
	return nil
}
