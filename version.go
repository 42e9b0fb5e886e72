package modload

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupportedPlatform is returned by syscall-level operations on
// platforms without loadable kernel modules.
var ErrUnsupportedPlatform = errors.New("modload: not supported on this platform")

// PageSizeSuffix returns the page-size token appended to module directory
// names on kernels with pages larger than 4 KiB: "" for a 4K (or smaller)
// page size, "_16k" for 16 KiB pages, and so on. The value only depends on
// host configuration and is identical on every call.
func PageSizeSuffix() string {
	return pageSizeSuffix(os.Getpagesize())
}

func pageSizeSuffix(pageSize int) string {
	if pageSize <= 4096 {
		return ""
	}
	return fmt.Sprintf("_%dk", pageSize/1024)
}

// parseReleasePrefix extracts the leading <major>.<minor> pair from a
// kernel release string or directory name. ok is false when the string
// does not start with two dot-separated integers.
func parseReleasePrefix(s string) (major, minor int, ok bool) {
	n, err := fmt.Sscanf(s, "%d.%d", &major, &minor)
	if err != nil || n != 2 {
		return 0, 0, false
	}
	return major, minor, true
}
