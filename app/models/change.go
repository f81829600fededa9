package models

// ChangeLevel granularity at which address changes are detected
type ChangeLevel string

// Change detection levels
const (
	LevelStreet       ChangeLevel = "street"       // Logradouro + numero
	LevelNeighborhood ChangeLevel = "neighborhood" // Bairro
	LevelMunicipality ChangeLevel = "municipality" // Municipio + UF
)

// AllLevels detection levels in dispatch order
var AllLevels = []ChangeLevel{
	LevelStreet,
	LevelNeighborhood,
	LevelMunicipality,
}

// IsValid reports whether the level is one of the known detection levels
func (l ChangeLevel) IsValid() bool {
	switch l {
	case LevelStreet, LevelNeighborhood, LevelMunicipality:
		return true
	}
	return false
}

// ChangeDetails snapshot of a detected change at one level
type ChangeDetails struct {
	Level    ChangeLevel               `json:"level"`    // Detection level
	Previous *BrazilianStandardAddress `json:"previous"` // Address before the update (nil on first update)
	Current  *BrazilianStandardAddress `json:"current"`  // Address after the update
	Changed  bool                      `json:"changed"`  // Whether the level's signature differs
}

// ChangeCallback callback bound to one level's change event
type ChangeCallback func(details *ChangeDetails)

// AddressObserver receives every processed update regardless of which
// level changed. changedLevels lists the levels whose notifications
// fired for this update; it is empty for no-op updates. Implementations
// must have a comparable dynamic type, such as a pointer receiver: the
// hub identifies observers by equality for dedup and unsubscription.
type AddressObserver interface {
	OnAddressUpdate(current *BrazilianStandardAddress, changedLevels []ChangeLevel)
}
