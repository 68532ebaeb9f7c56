package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"1000", 100000, true},
		{"0.345", 35, true}, // half-up on the third decimal
		{"0.344", 34, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		m, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseAmount(%q) expected error", tc.in)
			}
			continue
		}
		if m.Cents != tc.cents {
			t.Errorf("ParseAmount(%q) = %d cents, want %d", tc.in, m.Cents, tc.cents)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.34" {
		t.Errorf("marshal = %s, want 12.34", b)
	}

	var m Money
	if err := json.Unmarshal([]byte("56.78"), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 5678 {
		t.Errorf("unmarshal number = %d cents, want 5678", m.Cents)
	}
	if err := json.Unmarshal([]byte(`"9.10"`), &m); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 910 {
		t.Errorf("unmarshal string = %d cents, want 910", m.Cents)
	}
	if err := json.Unmarshal([]byte(`"9,10"`), &m); err != nil {
		t.Fatalf("unmarshal comma string: %v", err)
	}
	if m.Cents != 910 {
		t.Errorf("unmarshal comma string = %d cents, want 910", m.Cents)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 800}
	if a.Add(b).Cents != 1300 {
		t.Errorf("Add = %d, want 1300", a.Add(b).Cents)
	}
	if a.Sub(b).Cents != -300 {
		t.Errorf("Sub = %d, want -300", a.Sub(b).Cents)
	}
	if s := b.Sub(a).String(); s != "3.00" {
		t.Errorf("String = %s, want 3.00", s)
	}
}
