package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextArray(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"empty", nil, "{}"},
		{"single", []string{"NORMAL"}, "{NORMAL}"},
		{"multiple", []string{"background", "event"}, "{background,event}"},
		{"element with space", []string{"frame", "summer event"}, `{frame,"summer event"}`},
		{"element with comma", []string{"a,b"}, `{"a,b"}`},
		{"element with quote", []string{`say "hi"`}, `{"say \"hi\""}`},
		{"element with backslash", []string{`a\b`}, `{"a\\b"}`},
		{"empty element", []string{""}, `{""}`},
		{"null literal quoted", []string{"null"}, `{"null"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textArray(tt.in))
		})
	}
}
