package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a colour scheme. Instances are coloured from Palette in id order.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Palette []lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ff8800"),
		Palette: []lipgloss.Color{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff4488", "#8888ff"},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
		Palette: []lipgloss.Color{"#00ff00", "#00cc00", "#88ff88", "#00aa44"},
	}

	// ThemeTeal is a single teal pendulum on dark ground.
	ThemeTeal = Theme{
		Name:    "teal",
		Primary: lipgloss.Color("#008080"),
		Accent:  lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#4488aa"),
		Warning: lipgloss.Color("#ffcc00"),
		Palette: []lipgloss.Color{"#008080", "#20b2aa", "#40e0d0", "#afeeee"},
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeTeal,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// Next returns the theme after t in Themes, wrapping around.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func (t Theme) Styles() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(t.Palette))
	for i, c := range t.Palette {
		styles[i] = lipgloss.NewStyle().Foreground(c)
	}
	return styles
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
