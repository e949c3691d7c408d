package theme

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// StatusStyle is the color and icon a node takes from its status.
type StatusStyle struct {
	Color string `toml:"color" json:"color"`
	Icon  string `toml:"icon" json:"icon"`
}

// Theme holds every lookup table the scene styling uses. Unknown
// statuses and platforms fall back to the "default" entry.
type Theme struct {
	Name           string                 `toml:"name" json:"name"`
	Status         map[string]StatusStyle `toml:"status" json:"status"`
	PlatformColors map[string]string      `toml:"platforms" json:"platforms"`
	GroupPalette   []string               `toml:"groupPalette" json:"groupPalette"`
}

const defaultKey = "default"

// Default returns the built-in theme.
func Default() *Theme {
	return &Theme{
		Name: "stateboard",
		Status: map[string]StatusStyle{
			"initial":   {Color: "#4caf50", Icon: "play"},
			"created":   {Color: "#2196f3", Icon: "plus-circle"},
			"pending":   {Color: "#ff9800", Icon: "clock"},
			"active":    {Color: "#00bcd4", Icon: "bolt"},
			"completed": {Color: "#8bc34a", Icon: "check-circle"},
			"failed":    {Color: "#f44336", Icon: "x-circle"},
			"cancelled": {Color: "#9e9e9e", Icon: "slash"},
			defaultKey:  {Color: "#90a4ae", Icon: "circle"},
		},
		PlatformColors: map[string]string{
			"web":      "#3f51b5",
			"ios":      "#ff2d55",
			"android":  "#a4c639",
			"api":      "#795548",
			defaultKey: "#607d8b",
		},
		GroupPalette: []string{"#e3f2fd", "#fff3e0", "#e8f5e9", "#f3e5f5", "#fbe9e7", "#e0f7fa"},
	}
}

// Load reads a TOML theme file, filling gaps from the built-in theme.
// An empty path returns the built-in theme.
func Load(path string) (*Theme, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	var file Theme
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load theme %s: %w", path, err)
	}

	if file.Name != "" {
		t.Name = file.Name
	}
	for status, style := range file.Status {
		t.Status[status] = style
	}
	for platform, color := range file.PlatformColors {
		t.PlatformColors[platform] = color
	}
	if len(file.GroupPalette) > 0 {
		t.GroupPalette = file.GroupPalette
	}
	return t, nil
}

// StyleFor returns the style for a status, falling back to default.
func (t *Theme) StyleFor(status string) StatusStyle {
	if style, ok := t.Status[status]; ok {
		return style
	}
	return t.Status[defaultKey]
}

// PlatformColor returns the color for a platform, falling back to
// default.
func (t *Theme) PlatformColor(platform string) string {
	if color, ok := t.PlatformColors[platform]; ok {
		return color
	}
	return t.PlatformColors[defaultKey]
}

// GroupColor cycles the palette by group index.
func (t *Theme) GroupColor(i int) string {
	if len(t.GroupPalette) == 0 {
		return "#eceff1"
	}
	return t.GroupPalette[i%len(t.GroupPalette)]
}
