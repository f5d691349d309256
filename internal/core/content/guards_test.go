package content

import (
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantAllowed bool
		wantTrimmed string
	}{
		{
			name:        "plain content",
			raw:         "hello there",
			wantAllowed: true,
			wantTrimmed: "hello there",
		},
		{
			name:        "surrounding whitespace trimmed",
			raw:         "  hi  \n",
			wantAllowed: true,
			wantTrimmed: "hi",
		},
		{
			name:        "single character",
			raw:         "x",
			wantAllowed: true,
			wantTrimmed: "x",
		},
		{
			name:        "empty",
			raw:         "",
			wantAllowed: false,
		},
		{
			name:        "whitespace only",
			raw:         "   \t\n  ",
			wantAllowed: false,
		},
		{
			name:        "exactly max length",
			raw:         strings.Repeat("a", MaxLength),
			wantAllowed: true,
			wantTrimmed: strings.Repeat("a", MaxLength),
		},
		{
			name:        "one over max length",
			raw:         strings.Repeat("a", MaxLength+1),
			wantAllowed: false,
		},
		{
			name:        "multibyte at max length",
			raw:         strings.Repeat("é", MaxLength),
			wantAllowed: true,
			wantTrimmed: strings.Repeat("é", MaxLength),
		},
		{
			name:        "multibyte one over max length",
			raw:         strings.Repeat("é", MaxLength+1),
			wantAllowed: false,
		},
		{
			name:        "cjk at max length",
			raw:         strings.Repeat("語", MaxLength),
			wantAllowed: true,
			wantTrimmed: strings.Repeat("語", MaxLength),
		},
		{
			name:        "padding does not rescue oversized content",
			raw:         "  " + strings.Repeat("a", MaxLength+1) + "  ",
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.raw)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if tt.wantAllowed && result.Trimmed != tt.wantTrimmed {
				t.Errorf("Trimmed = %q, want %q", result.Trimmed, tt.wantTrimmed)
			}
			if !tt.wantAllowed && result.Reason == "" {
				t.Error("expected a reason for disallowed content")
			}
		})
	}
}
