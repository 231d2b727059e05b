package engine

// DWM window attributes used for the demo frame.
const (
	DWMWA_USE_IMMERSIVE_DARK_MODE = 20
	DWMWA_BORDER_COLOR            = 34
	DWMWA_CAPTION_COLOR           = 35
)

// windowAttribute is one DwmSetWindowAttribute call. BOOL and COLORREF values
// are both 32 bits wide.
type windowAttribute struct {
	id    uint32
	value uint32
}

// darkFrame turns on dark mode and paints border and caption black.
var darkFrame = []windowAttribute{
	{id: DWMWA_USE_IMMERSIVE_DARK_MODE, value: 1},
	{id: DWMWA_BORDER_COLOR, value: 0x00000000},
	{id: DWMWA_CAPTION_COLOR, value: 0x00000000},
}
