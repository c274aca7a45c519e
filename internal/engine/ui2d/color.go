package ui2d

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Overlay theme.
var (
	ColorPanelBg     = Color{0.1, 0.1, 0.1, 0.9}
	ColorPanelBorder = Color{0.25, 0.25, 0.25, 1}
	ColorTitleBg     = Color{0.16, 0.16, 0.16, 1}
	ColorText        = Color{0.92, 0.92, 0.92, 1}
	ColorTextDim     = Color{0.6, 0.6, 0.6, 1}
	ColorStatsText   = Color{0, 1, 1, 1}
	ColorStatsBg     = Color{0, 0, 0.13, 0.85}
)
