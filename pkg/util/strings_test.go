package util

import (
	"reflect"
	"testing"
)

func TestSplitCommaSeparated(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := SplitCommaSeparated(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCommaSeparated(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsEnabled(t *testing.T) {
	for _, v := range []string{"enabled", "Enabled", "true", "YES", " yes "} {
		if !IsEnabled(v) {
			t.Errorf("IsEnabled(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "false", "disabled", "no", "1"} {
		if IsEnabled(v) {
			t.Errorf("IsEnabled(%q) = true, want false", v)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("") || !IsBlank("  \t") {
		t.Error("empty and whitespace values should be blank")
	}
	if IsBlank("x") {
		t.Error("non-empty value should not be blank")
	}
}

func TestAddToCSV(t *testing.T) {
	if got := AddToCSV("", "shared"); got != "shared" {
		t.Errorf("AddToCSV empty = %q", got)
	}
	if got := AddToCSV("private", "shared"); got != "private,shared" {
		t.Errorf("AddToCSV = %q", got)
	}
	if got := AddToCSV("private,shared", "shared"); got != "private,shared" {
		t.Errorf("AddToCSV duplicate = %q", got)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"vrf": 1, "bd": 2, "tenant": 3})
	want := []string{"bd", "tenant", "vrf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeys = %v, want %v", got, want)
	}
}

func TestCoalesceString(t *testing.T) {
	if got := CoalesceString("", "", "c"); got != "c" {
		t.Errorf("CoalesceString = %q", got)
	}
	if got := CoalesceString(); got != "" {
		t.Errorf("CoalesceString() = %q", got)
	}
}
