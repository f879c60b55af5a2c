package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	journalDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 6, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(journalDate, createdAt)
	require.NotEmpty(t, token)

	gotDate, gotCreated, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, journalDate.Equal(gotDate))
	assert.True(t, createdAt.Equal(gotCreated))
}

func TestTokenRoundTrip_ZeroTimes(t *testing.T) {
	var zero time.Time
	gotDate, gotCreated, err := DecodeToken(EncodeToken(zero, zero))
	require.NoError(t, err)
	assert.Equal(t, zero, gotDate)
	assert.Equal(t, zero, gotCreated)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{
			name:    "not base64",
			token:   "this is not base64!",
			wantErr: "base64 decode",
		},
		{
			// a single date with no separator
			name:    "missing separator",
			token:   "MjAyMy0wNS0xNVQwMDowMDowMFo=",
			wantErr: "split",
		},
		{
			// "notadate|2023-05-15T14:30:45.123456789Z"
			name:    "unparseable journal date",
			token:   "bm90YWRhdGV8MjAyMy0wNS0xNVQxNDozMDo0NS4xMjM0NTY3ODla",
			wantErr: "journal date parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
