//go:build !linux

package modload

import "os"

// KernelRelease returns the running kernel's release string.
// On non-Linux platforms there is no kernel to ask.
func KernelRelease() (string, error) {
	return "", ErrUnsupportedPlatform
}

func openModule(_ string) (*os.File, error) {
	return nil, ErrUnsupportedPlatform
}

func finitModule(_ *os.File, _ string) error {
	return ErrUnsupportedPlatform
}

func deleteModule(_ string) error {
	return ErrUnsupportedPlatform
}
