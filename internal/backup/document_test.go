package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		version string
		want    format
	}{
		{"2.1", formatTyped},
		{"2.0", formatCombined},
		{"2.1.0", formatLegacy},
		{"v2.1", formatLegacy},
		{"2.0.0", formatLegacy},
		{"v2.0", formatLegacy},
		{"2", formatLegacy},
		{"", formatLegacy},
		{"1.0", formatLegacy},
		{"3.0", formatLegacy},
		{"not-a-version", formatLegacy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.version), tt.version)
	}
}

func TestNewerSchema(t *testing.T) {
	assert.True(t, newerSchema("3.0"))
	assert.True(t, newerSchema("2.2"))
	assert.False(t, newerSchema("2.1.0"))
	assert.False(t, newerSchema("2"))
	assert.False(t, newerSchema("1.0"))
	assert.False(t, newerSchema("not-a-version"))
}

func TestFileStamp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-01-02T02:04:05.006Z", timestamp(ts))
	assert.Equal(t, "2026-01-02T02-04-05-006Z", fileStamp(ts))
}

func TestDocumentKindAndTime(t *testing.T) {
	d := Document{Version: Version20, Timestamp: "2026-01-02T02:04:05.006Z"}
	assert.Equal(t, KindCombined, d.Kind())

	d.Type = KindUser
	assert.Equal(t, KindUser, d.Kind())

	created, err := d.CreatedAt()
	require.NoError(t, err)
	assert.Equal(t, 2026, created.Year())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("combined")
	require.NoError(t, err)
	assert.Equal(t, KindCombined, k)

	_, err = ParseKind("all")
	assert.Error(t, err)
}
