package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "work:goal-1", CompositeKey("work", "goal-1"))
	assert.Equal(t, "default:k", CompositeKey("", "k"), "empty namespace falls back to default")
}

func TestKeyTokens(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"goal-1", []string{"goal", "1"}},
		{"deploy_checklist", []string{"deploy", "checklist"}},
		{"a b\tc", []string{"a", "b", "c"}},
		{"Mixed-CASE_Token", []string{"mixed", "case", "token"}},
		{"dup-dup", []string{"dup"}},
		{"---", nil},
	}
	for _, tt := range tests {
		got := keyTokens(tt.key)
		if len(tt.want) == 0 {
			assert.Empty(t, got, tt.key)
		} else {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, normalizeTags(nil))
	assert.Nil(t, normalizeTags([]string{"", "  "}))
	assert.Equal(t, []string{"a", "b"}, normalizeTags([]string{" a ", "b", "a"}))
}

func TestHasAllTags(t *testing.T) {
	r := &Record{Tags: []string{"x"}}
	assert.True(t, r.HasAllTags(nil))
	assert.True(t, r.HasAllTags([]string{"x"}))
	assert.False(t, r.HasAllTags([]string{"x", "y"}), "AND semantics: every tag must be present")
}

func TestExpiredAndExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	forever := &Record{}
	assert.False(t, forever.Expired(now))
	assert.False(t, forever.ExpiresWithin(now, time.Hour))

	soon := &Record{ExpiresAt: now.Add(30 * time.Minute).UnixMilli()}
	assert.False(t, soon.Expired(now))
	assert.True(t, soon.ExpiresWithin(now, time.Hour))
	assert.False(t, soon.ExpiresWithin(now, time.Minute))

	dead := &Record{ExpiresAt: now.Add(-time.Second).UnixMilli()}
	assert.True(t, dead.Expired(now))
	assert.False(t, dead.ExpiresWithin(now, time.Hour), "already-expired records are not 'expiring soon'")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("seven!!"))
	assert.Equal(t, 25, EstimateTokens(string(make([]byte, 100))))
}
