package editor

import (
	"strings"

	"github.com/mprompt/promptline/internal/color"
	"github.com/mprompt/promptline/internal/config"
)

// themeColors adapts a loaded config.Config and the active config.Theme to
// style.CategoryColors, so the styler never has to know about YAML shapes.
type themeColors struct {
	cfg   config.Config
	theme config.Theme
}

func newThemeColors(cfg config.Config, theme config.Theme) themeColors {
	return themeColors{cfg: cfg, theme: theme}
}

// GroupColorSpecs delegates to the config's raw name/index capture-group
// color mapping, for color.Resolve's name-first lookup.
func (t themeColors) GroupColorSpecs(category string) map[string]string {
	return t.cfg.GroupColorSpecs(category)
}

// ThemeDefault is the theme's fallback style for categories it does not
// mention at all.
func (t themeColors) ThemeDefault() color.Style {
	return color.Parse(t.theme.Default)
}

// CategoryDefault resolves a category's base style: the active theme's
// per-category override first, else the theme default. Theme category
// keys are matched case-insensitively, matching how flag categories are
// declared in free case in the flags/programs sections.
func (t themeColors) CategoryDefault(category string) color.Style {
	for name, spec := range t.theme.Categories {
		if strings.EqualFold(name, category) {
			return color.Combine(t.ThemeDefault(), color.Parse(spec))
		}
	}
	return t.ThemeDefault()
}
