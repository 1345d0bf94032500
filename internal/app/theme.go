package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// StackerTheme provides a custom theme for the application.
type StackerTheme struct{}

var _ fyne.Theme = (*StackerTheme)(nil)

func (t *StackerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xD3, G: 0x2F, B: 0x2F, A: 0xFF} // Matches the trim handles
	case theme.ColorNameInputBackground:
		// Backdrop behind transparent surface areas
		if variant == theme.VariantDark {
			return color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
		}
		return color.NRGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *StackerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *StackerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *StackerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 14
	default:
		return theme.DefaultTheme().Size(name)
	}
}
