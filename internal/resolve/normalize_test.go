package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAMPID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int64
	}{
		{"plain integer", "4471", ptr(4471)},
		{"integral float", "4471.0", ptr(4471)},
		{"whitespace", "  4471  ", ptr(4471)},
		{"zero sentinel", "0", nil},
		{"zero float sentinel", "0.0", nil},
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"non-numeric", "N/A", nil},
		{"fractional float", "4471.5", nil},
		{"negative", "-12", ptr(-12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAMPID(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestCanonicalAMPID(t *testing.T) {
	assert.Nil(t, CanonicalAMPID(nil))
	assert.Nil(t, CanonicalAMPID(ptr(0)))

	id := ptr(4471)
	assert.Same(t, id, CanonicalAMPID(id))
}

func TestAMPIDString(t *testing.T) {
	assert.Equal(t, "", AMPIDString(nil))
	assert.Equal(t, "", AMPIDString(ptr(0)))
	assert.Equal(t, "4471", AMPIDString(ptr(4471)))
}

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "001A000001", []string{"001A000001"}},
		{"comma joined", "001A000001,001A000002", []string{"001A000001", "001A000002"}},
		{"spaces around commas", " 001A000001 , 001A000002 ", []string{"001A000001", "001A000002"}},
		{"empty segments dropped", "001A000001,,", []string{"001A000001"}},
		{"empty", "", nil},
		{"blank", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIDs(tt.raw))
		})
	}
}

func ptr(n int64) *int64 { return &n }
