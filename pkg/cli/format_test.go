package cli

import (
	"strings"
	"testing"
)

func TestDotPad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "normal case",
			input:    "TABLE_BD:4",
			width:    30,
			expected: "TABLE_BD:4 " + strings.Repeat(".", 19),
		},
		{
			name:     "short name",
			input:    "ok",
			width:    10,
			expected: "ok " + strings.Repeat(".", 7),
		},
		{
			name:     "name equals width minus one",
			input:    "abcde",
			width:    6,
			expected: "abcde",
		},
		{
			name:     "name equals width",
			input:    "abcdef",
			width:    6,
			expected: "abcdef",
		},
		{
			name:     "name longer than width",
			input:    "very-long-name",
			width:    5,
			expected: "very-long-name",
		},
		{
			name:     "empty string",
			input:    "",
			width:    10,
			expected: " " + strings.Repeat(".", 9),
		},
		{
			name:     "width of 1",
			input:    "",
			width:    1,
			expected: "",
		},
		{
			name:     "width of 2 with empty string",
			input:    "",
			width:    2,
			expected: " .",
		},
		{
			name:     "single char name width 5",
			input:    "x",
			width:    5,
			expected: "x " + strings.Repeat(".", 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DotPad(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("DotPad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestDotPad_ResultLength(t *testing.T) {
	result := DotPad("test", 20)
	if len(result) != 20 {
		t.Errorf("DotPad(%q, 20) len = %d, want 20", "test", len(result))
	}
}

func TestColorFunctions(t *testing.T) {
	prev := SetColor(true)
	t.Cleanup(func() { SetColor(prev) })

	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("%s should start with %q", tt.name, tt.prefix)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("%s should contain the input string", tt.name)
			}
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s should end with reset code", tt.name)
			}
		})

		t.Run(tt.name+"_empty", func(t *testing.T) {
			got := tt.fn("")
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s(\"\") should end with reset code", tt.name)
			}
		})
	}
}

func TestSetColor_Disabled(t *testing.T) {
	prev := SetColor(false)
	t.Cleanup(func() { SetColor(prev) })

	for _, fn := range []func(string) string{Green, Yellow, Red, Bold, Dim} {
		if got := fn("200"); got != "200" {
			t.Errorf("got %q, want plain text", got)
		}
	}
}

func TestHex(t *testing.T) {
	prev := SetColor(true)
	t.Cleanup(func() { SetColor(prev) })

	tests := []struct {
		color string
		want  string
	}{
		{"58D68D", "\033[38;2;88;214;141m200\033[0m"},
		{"#E74C3C", "\033[38;2;231;76;60m200\033[0m"},
		{"F0B27A", "\033[38;2;240;178;122m200\033[0m"},
		{"fff", "200"},
		{"GGGGGG", "200"},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			if got := Hex(tt.color, "200"); got != tt.want {
				t.Errorf("Hex(%q) = %q, want %q", tt.color, got, tt.want)
			}
		})
	}

	SetColor(false)
	if got := Hex("58D68D", "200"); got != "200" {
		t.Errorf("Hex with color disabled = %q", got)
	}
}
