package variations

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"round trip", strings.Join([]string{"a", "b", "c"}, Delimiter), []string{"a", "b", "c"}},
		{"empty", "", nil},
		{"whitespace only", " \n\t ", nil},
		{"no delimiter", "only one", []string{"only one"}},
		{"drops empty segments", "a===VARIATION===   ===VARIATION===b", []string{"a", "b"}},
		{"leading and trailing delimiters", "===VARIATION===\nx\n===VARIATION===", []string{"x"}},
		{"trims segments", "  first  \n===VARIATION===\n  second\n", []string{"first", "second"}},
		{"multiline segment kept intact", "l1\nl2===VARIATION===l3", []string{"l1\nl2", "l3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in, Delimiter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if n := strings.Count(tt.in, Delimiter) + 1; len(got) > n {
				t.Fatalf("got %d segments from %d delimiters", len(got), n-1)
			}
		})
	}
}

func TestSplit_EmptyDelimiterUsesDefault(t *testing.T) {
	got := Split("a===VARIATION===b", "")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected split: %q", got)
	}
}

func TestSplit_CustomDelimiter(t *testing.T) {
	got := Split("a|b||c", "|")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected split: %q", got)
	}
}
