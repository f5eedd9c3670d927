package budget

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var known = []string{"Groceries", "Dining", "Travel", "Insurance"}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      float64
		want    float64
		wantErr bool
	}{
		{1200, 1200, false},
		{-1200, 1200, false},
		{0, 0, false},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{math.Inf(-1), 0, true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("Normalize(%v) err = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Normalize(%v) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestMappingSet_RejectsUnknown(t *testing.T) {
	m := Mapping{}
	err := m.Set("Grocereis", 100, known)

	var unk *UnknownCategoryError
	if !errors.As(err, &unk) {
		t.Fatalf("Set unknown category err = %v, want *UnknownCategoryError", err)
	}
	if len(unk.Suggestions) == 0 || unk.Suggestions[0] != "Groceries" {
		t.Errorf("Suggestions = %v, want Groceries first", unk.Suggestions)
	}
	if len(m) != 0 {
		t.Errorf("mapping modified on rejected Set: %v", m)
	}
}

func TestMappingSet_NormalizesAndTrims(t *testing.T) {
	m := Mapping{}
	if err := m.Set("  Dining ", -2400, known); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := m["Dining"]; got != 2400 {
		t.Errorf("m[Dining] = %v, want 2400", got)
	}
}

func TestMappingSet_NilKnownAcceptsAnything(t *testing.T) {
	m := Mapping{}
	if err := m.Set("Anything", 5, nil); err != nil {
		t.Fatalf("Set with nil known: %v", err)
	}
}

func TestMappingValidate_ReportsAllUnknown(t *testing.T) {
	m := Mapping{"Groceries": 1, "Bogus": 2, "Travle": 3}
	err := m.Validate(known)
	if err == nil {
		t.Fatal("Validate returned nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{`"Bogus"`, `"Travle"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("Validate error %q missing %s", msg, want)
		}
	}

	if err := (Mapping{"Dining": 1}).Validate(known); err != nil {
		t.Errorf("Validate(valid) = %v, want nil", err)
	}
}

func TestSuggest_Limit(t *testing.T) {
	got := Suggest("zzzzzzzzzz", known)
	if len(got) != 0 {
		t.Errorf("Suggest(far) = %v, want none", got)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in      string
		cat     string
		amount  float64
		wantErr bool
	}{
		{"Groceries=1200", "Groceries", 1200, false},
		{" Dining = -2,400 ", "Dining", 2400, false},
		{"a=b=30", "a=b", 30, false},
		{"=12", "", 0, true},
		{"Groceries", "", 0, true},
		{"Groceries=abc", "", 0, true},
	}
	for _, tt := range tests {
		cat, amount, err := ParseAssignment(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAssignment(%q) err = nil, want error", tt.in)
			}
			continue
		}
		if err != nil || cat != tt.cat || amount != tt.amount {
			t.Errorf("ParseAssignment(%q) = %q, %v, %v; want %q, %v", tt.in, cat, amount, err, tt.cat, tt.amount)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.json": `{"Groceries": 1200, "Dining": -600.5}`,
		"b.toml": "Groceries = 1200.0\nDining = -600.5\n",
		"b.yaml": "Groceries: 1200\nDining: -600.5\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if m["Groceries"] != 1200 || m["Dining"] != 600.5 {
			t.Errorf("ReadFile(%s) = %v", name, m)
		}
	}

	bad := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Error("ReadFile(.txt) err = nil, want unsupported type")
	}
}
