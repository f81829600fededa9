package models

// DefaultPais default country for normalized addresses
const DefaultPais = "Brasil"

// BrazilianStandardAddress normalized Brazilian address value object.
// Instances are never mutated after construction; every update produces
// a new instance.
type BrazilianStandardAddress struct {
	Logradouro          *string `json:"logradouro"`           // Street / thoroughfare name
	Numero              *string `json:"numero"`               // House number
	Bairro              *string `json:"bairro"`               // Neighborhood
	Municipio           *string `json:"municipio"`            // Municipality
	UF                  *string `json:"uf"`                   // State full name
	SiglaUF             *string `json:"sigla_uf"`             // Two-letter state abbreviation
	CEP                 *string `json:"cep"`                  // Postal code
	Pais                string  `json:"pais"`                 // Country, defaults to "Brasil"
	RegiaoMetropolitana *string `json:"regiao_metropolitana"` // Metropolitan region
}

// NewBrazilianStandardAddress creates an all-null address with the default country
func NewBrazilianStandardAddress() *BrazilianStandardAddress {
	return &BrazilianStandardAddress{
		Pais: DefaultPais,
	}
}

// Clone returns an independent copy of the address
func (a *BrazilianStandardAddress) Clone() *BrazilianStandardAddress {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// IsEmpty reports whether every nullable field is unresolved
func (a *BrazilianStandardAddress) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.Logradouro == nil &&
		a.Numero == nil &&
		a.Bairro == nil &&
		a.Municipio == nil &&
		a.UF == nil &&
		a.SiglaUF == nil &&
		a.CEP == nil &&
		a.RegiaoMetropolitana == nil
}
