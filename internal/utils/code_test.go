package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
		seen[code] = true
	}
	// 100 draws from a million values collide occasionally, never collapse
	require.Greater(t, len(seen), 90)
}

func TestNewReference(t *testing.T) {
	ref := NewReference("RFQ")
	require.True(t, strings.HasPrefix(ref, "RFQ-"))
	require.Len(t, ref, 4+26) // Prefix, dash, 26-char ULID

	other := NewReference("RFQ")
	require.NotEqual(t, ref, other)
}

func TestCDNURL(t *testing.T) {
	require.Equal(t, "https://cdn.medsupply.example/img-123",
		CDNURL("medsupply.example", "img-123"))
}
