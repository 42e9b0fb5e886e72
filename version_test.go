package modload

import "testing"

func TestPageSizeSuffix(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		want     string
	}{
		{"4K", 4096, ""},
		{"smaller than 4K", 1024, ""},
		{"16K", 16384, "_16k"},
		{"64K", 65536, "_64k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageSizeSuffix(tt.pageSize); got != tt.want {
				t.Errorf("pageSizeSuffix(%d) = %q, want %q", tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestParseReleasePrefix(t *testing.T) {
	tests := []struct {
		input     string
		wantMajor int
		wantMinor int
		wantOK    bool
	}{
		{"6.1.0-gki", 6, 1, true},
		{"6.1", 6, 1, true},
		{"5.15.148_16k", 5, 15, true},
		{"6", 0, 0, false},
		{"gki-6.1", 0, 0, false},
		{"", 0, 0, false},
		{"latest", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			major, minor, ok := parseReleasePrefix(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseReleasePrefix(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if major != tt.wantMajor || minor != tt.wantMinor {
				t.Errorf("parseReleasePrefix(%q) = %d.%d, want %d.%d",
					tt.input, major, minor, tt.wantMajor, tt.wantMinor)
			}
		})
	}
}
