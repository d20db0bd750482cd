//go:build windows

package fileio

import (
	"syscall"
	"unsafe"
)

var (
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess        = kernel32.NewProc("OpenProcess")
	procCloseHandle        = kernel32.NewProc("CloseHandle")
	procGetExitCodeProcess = kernel32.NewProc("GetExitCodeProcess")
)

const (
	processQueryInformation = 0x0400
	stillActive             = 259
)

// processAlive reports whether a lock owner still runs. A handle that
// cannot be opened counts as gone.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	handle, _, _ := procOpenProcess.Call(uintptr(processQueryInformation), 0, uintptr(pid))
	if handle == 0 {
		return false
	}
	defer procCloseHandle.Call(handle)

	var code uint32
	if ret, _, _ := procGetExitCodeProcess.Call(handle, uintptr(unsafe.Pointer(&code))); ret == 0 {
		return false
	}
	return code == stillActive
}
