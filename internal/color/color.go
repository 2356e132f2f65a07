// Package color parses style specifications into attribute bundles and
// composes/renders them as ANSI escape sequences.
package color

import (
	"fmt"
	"strconv"
	"strings"
)

// namedColors maps the eight standard ANSI color names to their 0-7 index.
var namedColors = map[string]int{
	"black": 0, "red": 1, "green": 2, "yellow": 3,
	"blue": 4, "magenta": 5, "cyan": 6, "white": 7,
}

// brightAliases maps a handful of names straight to a bright index (8-15),
// bypassing the "bright <color>" two-word form.
var brightAliases = map[string]int{
	"gray": 8, "grey": 8,
}

var attributeKeywords = map[string]bool{
	"bold": true, "dim": true, "italic": true, "underline": true,
	"blink": true, "reverse": true, "inverse": true, "hidden": true,
	"strikethrough": true,
}

// Style is a parsed, attribute-level style specification. Unset boolean
// attributes are nil so that Combine can distinguish "not mentioned" from
// "explicitly turned off".
type Style struct {
	FG            *string
	BG            *string
	Bold          *bool
	Dim           *bool
	Italic        *bool
	Underline     *bool
	Blink         *bool
	Reverse       *bool
	Hidden        *bool
	Strikethrough *bool
	Combine       bool
}

func boolPtr(b bool) *bool     { return &b }
func strPtr(s string) *string  { return &s }

// Parse reads a style string like "+bold red on white" into a Style. An
// optional leading '+' sets the combine flag. Unknown tokens are ignored.
func Parse(spec string) Style {
	if spec == "" {
		return Style{}
	}

	combine := strings.HasPrefix(spec, "+")
	if combine {
		spec = strings.TrimSpace(spec[1:])
	}

	result := Style{Combine: combine}
	parts := strings.Fields(strings.ToLower(spec))

	i := 0
	for i < len(parts) {
		part := parts[i]

		if attributeKeywords[part] {
			setAttribute(&result, part)
			i++
			continue
		}

		if part == "on" && i+1 < len(parts) {
			i++
			var bg []string
			for i < len(parts) && !attributeKeywords[parts[i]] && parts[i] != "on" {
				bg = append(bg, parts[i])
				i++
			}
			joined := strings.Join(bg, " ")
			result.BG = &joined
			continue
		}

		if part == "bright" && i+1 < len(parts) {
			next := parts[i+1]
			if _, ok := namedColors[next]; ok || next == "black" || next == "white" {
				if result.FG == nil {
					result.FG = strPtr("bright " + next)
				}
				i += 2
				continue
			}
		}

		if _, ok := namedColors[part]; ok {
			if result.FG == nil {
				result.FG = strPtr(part)
			}
		} else if _, ok := brightAliases[part]; ok {
			if result.FG == nil {
				result.FG = strPtr(part)
			}
		} else if strings.HasPrefix(part, "#") || isDigits(part) {
			if result.FG == nil {
				result.FG = strPtr(part)
			}
		}

		i++
	}

	return result
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func setAttribute(s *Style, keyword string) {
	switch keyword {
	case "bold":
		s.Bold = boolPtr(true)
	case "dim":
		s.Dim = boolPtr(true)
	case "italic":
		s.Italic = boolPtr(true)
	case "underline":
		s.Underline = boolPtr(true)
	case "blink":
		s.Blink = boolPtr(true)
	case "reverse", "inverse":
		s.Reverse = boolPtr(true)
	case "hidden":
		s.Hidden = boolPtr(true)
	case "strikethrough":
		s.Strikethrough = boolPtr(true)
	}
}

// Combine composes two styles: every attribute in overlay that is
// explicitly set wins, else base's value carries through. The overlay's
// Combine flag affects rendering only (whether ToANSI emits a leading
// reset), never composition.
func Combine(base, overlay Style) Style {
	return Style{
		FG:            firstNonNilStr(overlay.FG, base.FG),
		BG:            firstNonNilStr(overlay.BG, base.BG),
		Bold:          firstNonNilBool(overlay.Bold, base.Bold),
		Dim:           firstNonNilBool(overlay.Dim, base.Dim),
		Italic:        firstNonNilBool(overlay.Italic, base.Italic),
		Underline:     firstNonNilBool(overlay.Underline, base.Underline),
		Blink:         firstNonNilBool(overlay.Blink, base.Blink),
		Reverse:       firstNonNilBool(overlay.Reverse, base.Reverse),
		Hidden:        firstNonNilBool(overlay.Hidden, base.Hidden),
		Strikethrough: firstNonNilBool(overlay.Strikethrough, base.Strikethrough),
		Combine:       false,
	}
}

func firstNonNilStr(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func firstNonNilBool(a, b *bool) *bool {
	if a != nil {
		return a
	}
	return b
}

// ToANSI renders the style as an ANSI escape sequence, or "" if it carries
// no attributes at all.
func (s Style) ToANSI() string {
	var codes []int

	if !s.Combine {
		codes = append(codes, 0)
	}

	if boolSet(s.Bold) {
		codes = append(codes, 1)
	}
	if boolSet(s.Dim) {
		codes = append(codes, 2)
	}
	if boolSet(s.Italic) {
		codes = append(codes, 3)
	}
	if boolSet(s.Underline) {
		codes = append(codes, 4)
	}
	if boolSet(s.Blink) {
		codes = append(codes, 5)
	}
	if boolSet(s.Reverse) {
		codes = append(codes, 7)
	}
	if boolSet(s.Hidden) {
		codes = append(codes, 8)
	}
	if boolSet(s.Strikethrough) {
		codes = append(codes, 9)
	}

	if s.FG != nil {
		if code, ok := colorToCode(*s.FG, true); ok {
			codes = append(codes, code)
		}
	}
	if s.BG != nil {
		if code, ok := colorToCode(*s.BG, false); ok {
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 || (!s.Combine && len(codes) == 1) {
		return ""
	}

	strs := make([]string, len(codes))
	for i, c := range codes {
		strs[i] = strconv.Itoa(c)
	}
	return fmt.Sprintf("\033[%sm", strings.Join(strs, ";"))
}

func boolSet(b *bool) bool {
	return b != nil && *b
}

// colorToCode maps a color spec (name, "bright <name>", numeric index, or
// hex) to an ANSI SGR code. Numeric indices beyond 15 are unsupported in
// this version and return ok=false.
func colorToCode(color string, foreground bool) (int, bool) {
	base := 30
	if !foreground {
		base = 40
	}

	if isDigits(color) {
		n, _ := strconv.Atoi(color)
		if n >= 0 && n <= 7 {
			return base + n, true
		}
		if n >= 8 && n <= 15 {
			brightBase := 90
			if !foreground {
				brightBase = 100
			}
			return brightBase + (n - 8), true
		}
		return 0, false
	}

	lower := strings.ToLower(color)

	if idx, ok := namedColors[lower]; ok {
		return base + idx, true
	}
	if idx, ok := brightAliases[lower]; ok {
		brightBase := 90
		if !foreground {
			brightBase = 100
		}
		return brightBase + (idx - 8), true
	}
	if strings.HasPrefix(lower, "bright ") {
		baseColor := strings.TrimPrefix(lower, "bright ")
		if idx, ok := namedColors[baseColor]; ok {
			brightBase := 90
			if !foreground {
				brightBase = 100
			}
			return brightBase + idx, true
		}
	}

	return 0, false
}

// Resolve picks the style for a named capture group within a category's
// color mapping: exact name, then positional index as a string, then the
// category default, then the theme default.
func Resolve(groupColors map[string]string, groupName string, positionalIndex int, categoryDefault, themeDefault Style) Style {
	if spec, ok := groupColors[groupName]; ok {
		return Parse(spec)
	}
	if spec, ok := groupColors[strconv.Itoa(positionalIndex)]; ok {
		return Parse(spec)
	}
	if len(groupColors) > 0 || categoryDefault != (Style{}) {
		return categoryDefault
	}
	return themeDefault
}
