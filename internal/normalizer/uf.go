package normalizer

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// ufByEstado maps accent-folded state names to their two-letter sigla
var ufByEstado = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapa":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceara":               "CE",
	"distrito federal":    "DF",
	"espirito santo":      "ES",
	"goias":               "GO",
	"maranhao":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"para":                "PA",
	"paraiba":             "PB",
	"parana":              "PR",
	"pernambuco":          "PE",
	"piaui":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondonia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"sao paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// unaccent folds a state name for table lookup
func unaccent(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// SiglaFromEstado resolves a state full name to its sigla, "" when unknown
func SiglaFromEstado(estado string) string {
	if estado == "" {
		return ""
	}
	return ufByEstado[unaccent(estado)]
}

// SiglaFromISOCode extracts the sigla from an ISO-3166-2 subdivision
// code by stripping the country prefix ("BR-RJ" -> "RJ"). Returns ""
// when the code does not look like a two-letter subdivision.
func SiglaFromISOCode(code string) string {
	idx := strings.LastIndex(code, "-")
	if idx < 0 || idx == len(code)-1 {
		return ""
	}
	sigla := strings.ToUpper(strings.TrimSpace(code[idx+1:]))
	if len(sigla) != 2 {
		return ""
	}
	for _, r := range sigla {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return sigla
}
