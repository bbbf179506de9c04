package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lectura/internal/ui/theme"
)

const bannerArt = `
 ██╗     ███████╗ ██████╗████████╗██╗   ██╗██████╗  █████╗
 ██║     ██╔════╝██╔════╝╚══██╔══╝██║   ██║██╔══██╗██╔══██╗
 ██║     █████╗  ██║        ██║   ██║   ██║██████╔╝███████║
 ██║     ██╔══╝  ██║        ██║   ██║   ██║██╔══██╗██╔══██║
 ███████╗███████╗╚██████╗   ██║   ╚██████╔╝██║  ██║██║  ██║
 ╚══════╝╚══════╝ ╚═════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝`

const bannerCompact = "L E C T U R A"

// RenderBanner returns the LECTURA banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 62 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 62 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
