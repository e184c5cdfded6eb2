package wilaya

import (
	"fmt"
	"strings"
)

// Wilaya représente une division administrative algérienne
type Wilaya struct {
	Code string `json:"code"`
	Nom  string `json:"nom"`
}

// Option représente une entrée de liste déroulante
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Liste officielle des 58 wilayas (découpage 2019)
var wilayas = []Wilaya{
	{"01", "Adrar"},
	{"02", "Chlef"},
	{"03", "Laghouat"},
	{"04", "Oum El Bouaghi"},
	{"05", "Batna"},
	{"06", "Béjaïa"},
	{"07", "Biskra"},
	{"08", "Béchar"},
	{"09", "Blida"},
	{"10", "Bouira"},
	{"11", "Tamanrasset"},
	{"12", "Tébessa"},
	{"13", "Tlemcen"},
	{"14", "Tiaret"},
	{"15", "Tizi Ouzou"},
	{"16", "Alger"},
	{"17", "Djelfa"},
	{"18", "Jijel"},
	{"19", "Sétif"},
	{"20", "Saïda"},
	{"21", "Skikda"},
	{"22", "Sidi Bel Abbès"},
	{"23", "Annaba"},
	{"24", "Guelma"},
	{"25", "Constantine"},
	{"26", "Médéa"},
	{"27", "Mostaganem"},
	{"28", "M'Sila"},
	{"29", "Mascara"},
	{"30", "Ouargla"},
	{"31", "Oran"},
	{"32", "El Bayadh"},
	{"33", "Illizi"},
	{"34", "Bordj Bou Arreridj"},
	{"35", "Boumerdès"},
	{"36", "El Tarf"},
	{"37", "Tindouf"},
	{"38", "Tissemsilt"},
	{"39", "El Oued"},
	{"40", "Khenchela"},
	{"41", "Souk Ahras"},
	{"42", "Tipaza"},
	{"43", "Mila"},
	{"44", "Aïn Defla"},
	{"45", "Naâma"},
	{"46", "Aïn Témouchent"},
	{"47", "Ghardaïa"},
	{"48", "Relizane"},
	{"49", "Timimoun"},
	{"50", "Bordj Badji Mokhtar"},
	{"51", "Ouled Djellal"},
	{"52", "Béni Abbès"},
	{"53", "In Salah"},
	{"54", "In Guezzam"},
	{"55", "Touggourt"},
	{"56", "Djanet"},
	{"57", "El M'Ghair"},
	{"58", "El Meniaa"},
}

var (
	byCode = make(map[string]Wilaya, len(wilayas))
	byName = make(map[string]Wilaya, len(wilayas))
)

func init() {
	for _, w := range wilayas {
		byCode[w.Code] = w
		byName[strings.ToLower(w.Nom)] = w
	}
}

// All retourne une copie de la table complète, triée par code
func All() []Wilaya {
	out := make([]Wilaya, len(wilayas))
	copy(out, wilayas)
	return out
}

// Lookup retourne la wilaya correspondant au code ("1" et "01" sont équivalents)
func Lookup(code string) (Wilaya, bool) {
	w, ok := byCode[normalizeCode(code)]
	return w, ok
}

// Name retourne le nom de la wilaya, ou le code tel quel s'il est inconnu
func Name(code string) string {
	if w, ok := Lookup(code); ok {
		return w.Nom
	}
	return code
}

// Code retourne le code d'une wilaya à partir de son nom, ou le nom tel quel s'il est inconnu
func Code(name string) string {
	if w, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return w.Code
	}
	return name
}

// Normalize ramène un code ("9") ou un nom ("oran") au code sur deux chiffres ;
// une valeur inconnue est retournée sans les espaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if w, ok := Lookup(s); ok {
		return w.Code
	}
	return Code(s)
}

// IsValid indique si le code désigne une wilaya existante
func IsValid(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// SelectOptions retourne les options "01 - Adrar"
func SelectOptions() []Option {
	opts := make([]Option, 0, len(wilayas))
	for _, w := range wilayas {
		opts = append(opts, Option{Value: w.Code, Label: fmt.Sprintf("%s - %s", w.Code, w.Nom)})
	}
	return opts
}

func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		return "0" + code
	}
	return code
}
