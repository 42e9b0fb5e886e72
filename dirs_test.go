package modload

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mkdirs(t *testing.T, base string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.Mkdir(filepath.Join(base, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSelectModuleDirs(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		release string
		suffix  string
		want    []string
	}{
		{
			name:    "release specific match wins outright",
			dirs:    []string{"6.1.0-gki", "6.1", "5.4.0"},
			release: "6.1.0-gki",
			suffix:  "",
			want:    []string{"6.1.0-gki"},
		},
		{
			name:    "version matched candidates sorted",
			dirs:    []string{"6.1.0-gki", "6.1", "5.4.0"},
			release: "6.1.0",
			suffix:  "",
			want:    []string{"6.1", "6.1.0-gki"},
		},
		{
			name:    "page suffix mismatch excluded",
			dirs:    []string{"6.1.0_16k", "6.1.0"},
			release: "6.1.0",
			suffix:  "",
			want:    []string{"6.1.0"},
		},
		{
			name:    "missing suffix still matches larger pages",
			dirs:    []string{"6.1.0", "6.1.0_64k"},
			release: "6.1.0",
			suffix:  "_16k",
			want:    []string{"6.1.0"},
		},
		{
			name:    "release specific match includes page suffix",
			dirs:    []string{"6.1.0", "6.1.0_16k"},
			release: "6.1.0",
			suffix:  "_16k",
			want:    []string{"6.1.0_16k"},
		},
		{
			name:    "unparsable names excluded",
			dirs:    []string{"backup", "latest", "6.1.2"},
			release: "6.1.0",
			suffix:  "",
			want:    []string{"6.1.2"},
		},
		{
			name:    "no candidates",
			dirs:    []string{"5.10.110", "5.15.94"},
			release: "6.1.0",
			suffix:  "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			mkdirs(t, base, tt.dirs...)

			got := SelectModuleDirs(base, tt.release, tt.suffix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectModuleDirs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectModuleDirs_MissingBase(t *testing.T) {
	got := SelectModuleDirs(filepath.Join(t.TempDir(), "nonexistent"), "6.1.0", "")
	if got != nil {
		t.Errorf("SelectModuleDirs() = %v, want nil for a missing base dir", got)
	}
}

func TestSelectModuleDirs_IgnoresFiles(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "6.1.0")
	if err := os.WriteFile(filepath.Join(base, "6.1.1"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got := SelectModuleDirs(base, "6.1.0", "")
	if want := []string{"6.1.0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SelectModuleDirs() = %v, want %v", got, want)
	}
}

func TestModuleLoadList(t *testing.T) {
	t.Run("recovery list preferred", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"modules.load", "modules.load.recovery"} {
			if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if got := moduleLoadList(dir); got != "modules.load.recovery" {
			t.Errorf("moduleLoadList() = %q, want %q", got, "modules.load.recovery")
		}
	})

	t.Run("default list", func(t *testing.T) {
		if got := moduleLoadList(t.TempDir()); got != "modules.load" {
			t.Errorf("moduleLoadList() = %q, want %q", got, "modules.load")
		}
	})
}
