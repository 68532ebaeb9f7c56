package google

import "testing"

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Lancamentos", 2026, "2026 Lancamentos"},
		{" Lancamentos ", 2026, "2026 Lancamentos"},
		{"2025 Lancamentos", 2026, "2025 Lancamentos"},
		{"Abc", 2026, "2026 Abc"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
