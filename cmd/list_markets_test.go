package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		max      int
		expected string
	}{
		{
			name:     "under-limit-unchanged",
			title:    "Lakers vs Celtics",
			max:      50,
			expected: "Lakers vs Celtics",
		},
		{
			name:     "exactly-at-limit-unchanged",
			title:    strings.Repeat("a", 50),
			max:      50,
			expected: strings.Repeat("a", 50),
		},
		{
			name:     "over-limit-truncated-with-ellipsis",
			title:    "Will the Yankees win the World Series in the 2026 season opener",
			max:      50,
			expected: "Will the Yankees win the World Series in the 20...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.title, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}
