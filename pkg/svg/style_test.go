package svg

import (
	"reflect"
	"testing"
)

func TestDecodeStyle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
		want  map[string]string
	}{
		{
			name:  "simple",
			input: "fill:#000000;stroke:#000000;",
			keys:  []string{"fill", "stroke"},
			want:  map[string]string{"fill": "#000000", "stroke": "#000000"},
		},
		{
			name:  "whitespace and empty segments",
			input: " fill : red ;; stroke-width:0.1 ; ",
			keys:  []string{"fill", "stroke-width"},
			want:  map[string]string{"fill": "red", "stroke-width": "0.1"},
		},
		{
			name:  "value containing colon",
			input: "background:url(data:image/png);",
			keys:  []string{"background"},
			want:  map[string]string{"background": "url(data:image/png)"},
		},
		{
			name:  "empty",
			input: "",
			keys:  nil,
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DecodeStyle(tt.input)
			if !reflect.DeepEqual(m.Keys(), tt.keys) {
				t.Errorf("Keys() = %v, want %v", m.Keys(), tt.keys)
			}
			for k, want := range tt.want {
				if got, ok := m.Get(k); !ok || got != want {
					t.Errorf("Get(%q) = %q, %v; want %q", k, got, ok, want)
				}
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m := DecodeStyle("fill:#000000; stroke:#000000; stroke-width:0.2;")
	encoded := m.Encode()
	want := "fill:#000000; stroke:#000000; stroke-width:0.2;"
	if encoded != want {
		t.Errorf("Encode() = %q, want %q", encoded, want)
	}

	// Decoding the encoded form must be stable.
	again := DecodeStyle(encoded).Encode()
	if again != encoded {
		t.Errorf("round trip changed encoding: %q vs %q", again, encoded)
	}
}

func TestMergeOverridesAndOrder(t *testing.T) {
	m := DecodeStyle("fill:#000000;stroke-width:0.1;")
	o := NewStyleMap()
	o.Set("fill", "#ff0000")
	o.Set("stroke", "#ff0000")

	m.Merge(o)

	// Overridden key keeps its original position, new key is appended.
	wantKeys := []string{"fill", "stroke-width", "stroke"}
	if !reflect.DeepEqual(m.Keys(), wantKeys) {
		t.Errorf("Keys() after merge = %v, want %v", m.Keys(), wantKeys)
	}
	if v, _ := m.Get("fill"); v != "#ff0000" {
		t.Errorf("fill = %q, want override value", v)
	}
	if v, _ := m.Get("stroke-width"); v != "0.1" {
		t.Errorf("stroke-width = %q, want untouched value", v)
	}
	if got := m.Encode(); got != "fill:#ff0000; stroke-width:0.1; stroke:#ff0000;" {
		t.Errorf("Encode() = %q", got)
	}
}
