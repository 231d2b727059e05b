//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"Sunlight/internal/logger"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

// SetDarkTitleBar gives the demo window a black frame so it blends with the
// space behind the sun.
func SetDarkTitleBar(window *glfw.Window) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	for _, attr := range darkFrame {
		setWindowAttribute(uintptr(unsafe.Pointer(hwnd)), attr)
	}
}

func setWindowAttribute(hwnd uintptr, attr windowAttribute) {
	value := attr.value
	hr, _, _ := procDwmSetWindowAttribute.Call(
		hwnd,
		uintptr(attr.id),
		uintptr(unsafe.Pointer(&value)),
		unsafe.Sizeof(value),
	)
	if hr != 0 {
		logger.Log.Debug("DwmSetWindowAttribute failed",
			zap.Uint32("attribute", attr.id),
			zap.Uintptr("hresult", hr))
	}
}
