package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Version
		want int
	}{
		{"equal", "v1.2.3", "v1.2.3", 0},
		{"equal ignoring v prefix", "1.2.3", "v1.2.3", 0},
		{"patch ordering", "v1.2.3", "v1.2.4", -1},
		{"minor ordering", "v1.3.0", "v1.2.9", 1},
		{"major ordering", "v2.0.0", "v1.99.0", 1},
		{"prerelease below release", "v1.2.3-rc.1", "v1.2.3", -1},
		{
			"pseudo-version ordering",
			"v0.0.0-20200915174352-b0c018a67c13",
			"v0.0.0-20210315174352-ffffffffffff",
			-1,
		},
		{"pseudo-version above base prerelease", "v1.2.3-0.20200915174352-b0c018a67c13", "v1.2.2", 1},
		{"relaxed numeric", "1.16", "1.17", -1},
		{"relaxed shorter side padded", "1.2", "1.2.0", 0},
		{"relaxed non-numeric part", "1.2.beta", "1.2.alpha", 1},
		{"highest beats release", Highest, "v99.0.0", 1},
		{"release below highest", "v99.0.0", Highest, -1},
		{"highest equals itself", Highest, Highest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestEpoch(t *testing.T) {
	tests := []struct {
		v    Version
		want string
	}{
		{"v1.2.3", "v1"},
		{"v2.0.0", "v2"},
		{"1.2.3", "v1"},
		{"v0.0.0-20200915174352-b0c018a67c13", "v0"},
		{"3", "v3"},
	}

	for _, tt := range tests {
		if got := tt.v.Epoch(); got != tt.want {
			t.Errorf("Epoch(%q) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestTrimmed(t *testing.T) {
	if got := Version("v1.2.3").Trimmed(); got != "1.2.3" {
		t.Errorf("Trimmed() = %q, want %q", got, "1.2.3")
	}
	if got := Version("1.2.3").Trimmed(); got != "1.2.3" {
		t.Errorf("Trimmed() = %q, want %q", got, "1.2.3")
	}
}

func TestMax(t *testing.T) {
	if got := Max("v1.0.0", "v1.2.0"); got != "v1.2.0" {
		t.Errorf("Max = %q, want v1.2.0", got)
	}
	// Equal versions keep the first operand's spelling.
	if got := Max("1.2.0", "v1.2.0"); got != "1.2.0" {
		t.Errorf("Max = %q, want 1.2.0", got)
	}
}
