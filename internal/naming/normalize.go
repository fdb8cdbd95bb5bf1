package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// NormalizeIdent normalizes an identifier for fuzzy matching.
// The normalization pipeline:
// 1. Tokenize CamelCase.
// 2. Case-fold to lower.
// 3. Strip separators (_, -, spaces, dots).
func NormalizeIdent(s string) string {
	tokens := tokenizeCamelCase(s)

	joined := strings.Join(tokens, "")
	joined = strings.ToLower(joined)

	return stripSeparators(joined)
}

// Pascal converts a sheet or field name into an exported identifier.
// Separators are dropped and the first rune of every part is upper-cased;
// the rest of each part is kept as written, so acronyms survive.
//
// Examples:
//   - "complex" -> "Complex"
//   - "sample_data" -> "SampleData"
//   - "complex_SKU" -> "ComplexSKU"
//   - "reward.items" -> "RewardItems"
func Pascal(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, part := range splitSeparators(s) {
		r, size := utf8.DecodeRuneInString(part)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(part[size:])
	}

	return sb.String()
}

// Singular returns the singular form of the last word of s, used to name
// the element struct of an array field ("complex_Rewards" -> "complex_Reward").
func Singular(s string) string {
	cut := strings.LastIndexFunc(s, isSeparator)
	if cut < 0 {
		return inflection.Singular(s)
	}

	return s[:cut+1] + inflection.Singular(s[cut+1:])
}

// TagName returns the protected-region tag stem for a type name.
// Tags are matched by exact name, so the result must be stable for a given
// type across generator runs.
func TagName(typeName string) string {
	return strings.ToUpper(stripSeparators(typeName))
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "getHTTPResponse" -> ["get", "HTTP", "Response"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i == 0 {
			current.WriteRune(r)

			continue
		}

		if shouldStartNewToken(runes, i) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func splitSeparators(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)
	isPrevSep := isSeparator(prevRune)

	// "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}

// stripSeparators removes common separators from a string.
func stripSeparators(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
