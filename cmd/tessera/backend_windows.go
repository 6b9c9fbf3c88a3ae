//go:build windows

package main

import "github.com/tesserawm/tessera/internal/platform"

func newBackend() (platform.Backend, error) {
	return platform.NewWindowsBackend()
}
