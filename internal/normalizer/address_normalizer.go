package normalizer

import (
	"sort"
	"strings"

	"github.com/address-cache/app/models"
	"go.uber.org/zap"
)

// Field-resolution precedence per target field: addr:* structured tag
// first, then the primary generic provider field, then secondary
// synonyms. Derived extractions (ISO code, estado table) run after the
// chains come up empty.
var (
	chainLogradouro = []string{"addr:street", "road", "street", "pedestrian", "footway"}
	chainNumero     = []string{"addr:housenumber", "house_number", "housenumber"}
	chainBairro     = []string{"addr:suburb", "suburb", "neighbourhood", "city_district"}
	chainMunicipio  = []string{"addr:city", "city", "town", "village"}
	chainUF         = []string{"addr:state", "state", "region"}
	chainSiglaUF    = []string{"addr:state_code", "state_code"}
	chainCEP        = []string{"addr:postcode", "postcode", "postal_code", "zip"}
	chainPais       = []string{"addr:country", "country"}
	chainRegiaoMetr = []string{"municipality", "county"}
)

// isoSubdivisionPrefix Nominatim's ISO-3166-2 subdivision keys ("ISO3166-2-lvl4")
const isoSubdivisionPrefix = "ISO3166-2-lvl"

// AddressNormalizer pure transform from a raw provider payload into a
// BrazilianStandardAddress. Never fails: missing or malformed data
// resolves to null fields.
type AddressNormalizer struct {
	logger *zap.Logger
}

// NewAddressNormalizer creates a new AddressNormalizer
func NewAddressNormalizer(logger *zap.Logger) *AddressNormalizer {
	return &AddressNormalizer{logger: logger}
}

// Normalize resolves every target field through its precedence chain.
// A payload without a usable "address" object yields the all-null
// address, which is itself a valid, cacheable value.
func (an *AddressNormalizer) Normalize(payload models.RawAddressPayload) *models.BrazilianStandardAddress {
	out := models.NewBrazilianStandardAddress()

	addr, ok := payload.Address()
	if !ok {
		an.logger.Debug("payload without address object, resolving all fields to null")
		return out
	}

	out.Logradouro = firstString(addr, chainLogradouro)
	out.Numero = firstString(addr, chainNumero)
	out.Bairro = firstString(addr, chainBairro)
	out.Municipio = firstString(addr, chainMunicipio)
	out.UF = firstString(addr, chainUF)
	out.CEP = firstString(addr, chainCEP)
	out.RegiaoMetropolitana = firstString(addr, chainRegiaoMetr)
	out.SiglaUF = an.resolveSiglaUF(addr, out.UF)

	if pais := firstString(addr, chainPais); pais != nil {
		out.Pais = *pais
	}

	return out
}

// resolveSiglaUF runs the sigla chain, then the derived extractions:
// ISO-3166-2 subdivision code suffix, then the estado-name table.
func (an *AddressNormalizer) resolveSiglaUF(addr map[string]interface{}, uf *string) *string {
	if sigla := firstString(addr, chainSiglaUF); sigla != nil {
		return sigla
	}

	for _, code := range isoSubdivisionCodes(addr) {
		if sigla := SiglaFromISOCode(code); sigla != "" {
			return &sigla
		}
		an.logger.Debug("unusable ISO-3166-2 subdivision code", zap.String("code", code))
	}

	if uf != nil {
		// Providers sometimes put the abbreviation straight into the
		// state field ("state": "SP")
		if sigla := siglaLiteral(*uf); sigla != "" {
			return &sigla
		}
		if sigla := SiglaFromEstado(*uf); sigla != "" {
			return &sigla
		}
	}

	return nil
}

// siglaLiteral accepts a state value that already is a two-letter sigla
func siglaLiteral(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return ""
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return s
}

// isoSubdivisionCodes collects every ISO3166-2-lvl* value present.
// Nominatim emits the state subdivision as lvl4 for Brazil; sorted key
// order keeps the scan deterministic when several levels appear.
func isoSubdivisionCodes(addr map[string]interface{}) []string {
	keys := make([]string, 0, 2)
	for k := range addr {
		if strings.HasPrefix(k, isoSubdivisionPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	codes := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := stringValue(addr[k]); s != "" {
			codes = append(codes, s)
		}
	}
	return codes
}

// firstString returns the first non-empty string resolved by the chain
func firstString(addr map[string]interface{}, chain []string) *string {
	for _, key := range chain {
		if s := stringValue(addr[key]); s != "" {
			return &s
		}
	}
	return nil
}

// stringValue coerces a payload value to a trimmed string, "" otherwise
func stringValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
