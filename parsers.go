package modload

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Metadata files can carry long lines (modules.dep entries list every
// hard dependency on one line); give the scanner room.
const maxLineLen = 1 << 20

// eachLine calls fn for every non-empty, non-comment line of path.
// A missing or unreadable file is not an error: the directory simply
// does not provide that kind of metadata.
func eachLine(path string, fn func(line string)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
}

// parseDepFile parses modules.dep: one line per module of the form
//
//	kernel/fs/foo.ko: kernel/lib/bar.ko kernel/lib/baz.ko
//
// Relative paths are resolved against dir. The recorded chain is the
// module's own file first, then its hard dependencies.
func (m *Modprobe) parseDepFile(path, dir string) {
	eachLine(path, func(line string) {
		mod, rest, ok := strings.Cut(line, ":")
		if !ok {
			return
		}
		chain := []string{resolveModulePath(dir, strings.TrimSpace(mod))}
		for _, dep := range strings.Fields(rest) {
			chain = append(chain, resolveModulePath(dir, dep))
		}
		m.deps[MakeCanonical(mod)] = chain
	})
}

func resolveModulePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// parseAliasFile parses modules.alias lines: "alias <pattern> <module>".
// Registration order is preserved; lookup tries every matching alias.
func (m *Modprobe) parseAliasFile(path string) {
	eachLine(path, func(line string) {
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "alias" {
			return
		}
		m.aliases = append(m.aliases, alias{
			pattern: fields[1],
			module:  MakeCanonical(fields[2]),
		})
	})
}

// parseSoftdepFile parses modules.softdep lines:
//
//	softdep <module> pre: <mod>... post: <mod>...
//
// Soft dependencies are best-effort: they are attempted around the
// module's own insertion but their failure does not fail the load.
func (m *Modprobe) parseSoftdepFile(path string) {
	eachLine(path, func(line string) {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "softdep" {
			return
		}
		module := MakeCanonical(fields[1])
		state := ""
		for _, field := range fields[2:] {
			switch field {
			case "pre:", "post:":
				state = field
				continue
			}
			switch state {
			case "pre:":
				m.softPre[module] = append(m.softPre[module], field)
			case "post:":
				m.softPost[module] = append(m.softPost[module], field)
			}
		}
	})
}

// parseOptionsFile parses modules.options lines:
//
//	options <module> <key>=<value> ...
//
// Repeated lines for one module accumulate.
func (m *Modprobe) parseOptionsFile(path string) {
	eachLine(path, func(line string) {
		fields := strings.SplitN(line, " ", 3)
		if len(fields) < 3 || fields[0] != "options" {
			return
		}
		m.addOptions(MakeCanonical(fields[1]), strings.TrimSpace(fields[2]))
	})
}

func (m *Modprobe) addOptions(canonical, options string) {
	if existing, ok := m.options[canonical]; ok {
		m.options[canonical] = existing + " " + options
		return
	}
	m.options[canonical] = options
}

// parseBlocklistFile parses modules.blocklist lines: "blocklist <module>".
func (m *Modprobe) parseBlocklistFile(path string) {
	eachLine(path, func(line string) {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != "blocklist" {
			return
		}
		m.blocklist[MakeCanonical(fields[1])] = struct{}{}
	})
}

// parseLoadFile parses the load list: one module name or path per line,
// in dependency-respecting order.
func (m *Modprobe) parseLoadFile(path string) {
	eachLine(path, func(line string) {
		m.loadList = append(m.loadList, line)
	})
}

// parseKernelCmdline extracts module configuration from a kernel command
// line. Tokens of the form <module>.<param>=<value> become insertion
// options; modprobe.blacklist=<mod>,<mod> extends the blocklist.
func (m *Modprobe) parseKernelCmdline(cmdline string) {
	for _, token := range strings.Fields(cmdline) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		module, param, ok := strings.Cut(key, ".")
		if !ok || module == "" || param == "" {
			continue
		}
		if module == "modprobe" && param == "blacklist" {
			for _, name := range strings.Split(value, ",") {
				if name != "" {
					m.blocklist[MakeCanonical(name)] = struct{}{}
				}
			}
			continue
		}
		m.addOptions(MakeCanonical(module), param+"="+value)
	}
}
