//go:build linux

package modload

import (
	"os"

	"golang.org/x/sys/unix"
)

// KernelRelease returns the running kernel's release string
// (e.g. "6.1.0-gki").
func KernelRelease() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uts.Release[:]), nil
}

// openModule opens a module file for insertion. Symbolic links are
// refused and the descriptor does not leak across exec.
func openModule(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}

// finitModule inserts the module backed by the open descriptor with the
// given option string. EEXIST (already resident) satisfies
// errors.Is(err, fs.ErrExist) for the caller.
func finitModule(f *os.File, options string) error {
	return unix.FinitModule(int(f.Fd()), options, 0)
}

// deleteModule requests non-blocking removal of the named module.
func deleteModule(name string) error {
	return unix.DeleteModule(name, unix.O_NONBLOCK)
}
