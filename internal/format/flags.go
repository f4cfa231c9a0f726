package format

import "strings"

const (
	regionalIndicatorA = 0x1F1E6
	unknownFlag        = "🏳"
)

// DefaultFlagOverrides covers codes the regional indicator rule gets wrong
// plus the house joke for RU.
var DefaultFlagOverrides = map[string]string{
	"UK": "🇬🇧",
	"RU": "🤡",
}

// Flag turns a two-letter country code into its flag emoji.
func Flag(code string, overrides map[string]string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if glyph, ok := overrides[code]; ok {
		return glyph
	}
	if len(code) != 2 {
		return unknownFlag
	}
	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return unknownFlag
		}
		b.WriteRune(rune(regionalIndicatorA + (c - 'A')))
	}
	return b.String()
}

// ParseFlagOverrides reads "CODE=glyph" pairs separated by commas or
// semicolons and layers them over the defaults.
func ParseFlagOverrides(s string) map[string]string {
	out := make(map[string]string, len(DefaultFlagOverrides))
	for k, v := range DefaultFlagOverrides {
		out[k] = v
	}
	for _, pair := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		code, glyph, ok := strings.Cut(pair, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		glyph = strings.TrimSpace(glyph)
		if !ok || code == "" {
			continue
		}
		if glyph == "" {
			delete(out, code)
			continue
		}
		out[code] = glyph
	}
	return out
}
