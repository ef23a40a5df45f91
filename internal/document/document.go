// Package document validates national identifiers against country-specific
// format and checksum rules.
//
// Domain purity: no I/O, no context.Context, no time. Rules are a lookup
// table keyed by (countryCode, documentType) so adding a country is a data
// addition, not new branching.
package document

import (
	"strings"
	"unicode"
)

// Known document types with dedicated rules.
const (
	TypeCPF   = "cpf"
	TypeCNPJ  = "cnpj"
	TypeSSN   = "ssn"
	TypeEIN   = "ein"
	TypeNI    = "ni"
	TypeCRN   = "crn"
	TypeOther = "other"
)

type ruleKey struct {
	country string
	docType string
}

// validators maps (countryCode, documentType) to its rule. Inputs are already
// normalized when a rule runs.
var validators = map[ruleKey]func(string) bool{
	{"BR", TypeCPF}:  validCPF,
	{"BR", TypeCNPJ}: validCNPJ,
	{"US", TypeSSN}:  validSSN,
	{"US", TypeEIN}:  validEIN,
	{"UK", TypeNI}:   validNI,
	{"UK", TypeCRN}:  validCRN,
}

// countries with at least one dedicated rule. Combinations inside these
// countries that name an unknown type are invalid rather than free-text.
var ruledCountries = map[string]bool{"BR": true, "US": true, "UK": true}

// Normalize strips every character that is not a letter or a digit.
// Idempotent; all validation runs on normalized input.
func Normalize(doc string) string {
	var b strings.Builder
	b.Grow(len(doc))
	for _, r := range doc {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether the document satisfies the rule registered for the
// (countryCode, documentType) pair. Documents of type "other", and documents
// from countries with no registered rules, act as free-text identifiers: any
// non-empty normalized value passes.
func Validate(doc, docType, countryCode string) bool {
	normalized := Normalize(doc)
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	docType = strings.ToLower(strings.TrimSpace(docType))

	if docType == TypeOther || !ruledCountries[country] {
		return normalized != ""
	}

	rule, ok := validators[ruleKey{country, docType}]
	if !ok {
		return false
	}
	return rule(normalized)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// validCPF checks the Brazilian natural-person registry number: 11 digits
// with two weighted-sum check digits. Repeated-digit strings pass the
// checksum arithmetic but are reserved values, so they are rejected first.
func validCPF(s string) bool {
	if len(s) != 11 || !allDigits(s) || allSame(s) {
		return false
	}

	// First check digit: weights 10..2 over positions 0..8.
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(s[i]-'0') * (10 - i)
	}
	if checkDigit11(sum) != int(s[9]-'0') {
		return false
	}

	// Second check digit: weights 11..2 over positions 0..9.
	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(s[i]-'0') * (11 - i)
	}
	return checkDigit11(sum) == int(s[10]-'0')
}

// checkDigit11 maps a weighted sum to its modulo-11 check digit, with the
// 10 and 11 results folded to 0.
func checkDigit11(sum int) int {
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// validCNPJ checks the Brazilian company registry number: 14 digits with two
// check digits over fixed weight vectors.
func validCNPJ(s string) bool {
	if len(s) != 14 || !allDigits(s) || allSame(s) {
		return false
	}

	if cnpjCheckDigit(s, cnpjWeightsFirst) != int(s[12]-'0') {
		return false
	}
	return cnpjCheckDigit(s, cnpjWeightsSecond) == int(s[13]-'0')
}

func cnpjCheckDigit(s string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(s[i]-'0') * w
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

// validSSN checks the US social security number: 9 digits, no reserved area,
// group or serial segments.
func validSSN(s string) bool {
	if len(s) != 9 || !allDigits(s) || allSame(s) {
		return false
	}
	if s[0:3] == "000" {
		return false
	}
	if s[3:5] == "00" {
		return false
	}
	if s[5:9] == "0000" {
		return false
	}
	return true
}

// validEIN checks the US employer identification number. Looser than SSN:
// only length and repeated-digit strings are rejected.
func validEIN(s string) bool {
	return len(s) == 9 && allDigits(s) && !allSame(s)
}

// niDisallowedPrefixes is the closed set of two-letter prefixes never issued
// for UK national insurance numbers.
var niDisallowedPrefixes = map[string]bool{
	"BG": true, "GB": true, "NK": true, "KN": true, "TN": true, "NT": true, "ZZ": true,
}

// validNI checks the UK national insurance number: two letters, six digits,
// one letter, excluding the unissued prefixes.
func validNI(s string) bool {
	s = strings.ToUpper(s)
	if len(s) != 9 {
		return false
	}
	if !isLetter(s[0]) || !isLetter(s[1]) || !isLetter(s[8]) {
		return false
	}
	if !allDigits(s[2:8]) {
		return false
	}
	return !niDisallowedPrefixes[s[0:2]]
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// validCRN checks the UK company registration number: exactly eight digits.
func validCRN(s string) bool {
	return len(s) == 8 && allDigits(s)
}
