package domain_test

import (
	"testing"
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mappingWindow(id string, start time.Time, end *time.Time, priority int) domain.GLMapping {
	return domain.GLMapping{
		MappingID:          id,
		SourceSystem:       "billing",
		ExternalCode:       "REV",
		GLAccountID:        "acct-" + id,
		EffectiveStartDate: start,
		EffectiveEndDate:   end,
		Priority:           priority,
	}
}

func TestGLMapping_Contains(t *testing.T) {
	end := day(2025, 6, 30)
	bounded := mappingWindow("bounded", day(2025, 6, 1), &end, 10)
	open := mappingWindow("open", day(2025, 6, 1), nil, 10)

	assert.False(t, bounded.Contains(day(2025, 5, 31)))
	assert.True(t, bounded.Contains(day(2025, 6, 1)))
	assert.True(t, bounded.Contains(day(2025, 6, 30)))
	assert.False(t, bounded.Contains(day(2025, 7, 1)))

	assert.True(t, open.Contains(day(2030, 1, 1)))
	assert.False(t, open.Contains(day(2025, 5, 31)))
}

func TestSelectGLMapping(t *testing.T) {
	mayEnd := day(2025, 5, 31)

	tests := []struct {
		name       string
		candidates []domain.GLMapping
		date       time.Time
		wantID     string
	}{
		{
			name: "only mapping whose window contains the date qualifies",
			candidates: []domain.GLMapping{
				mappingWindow("expired", day(2025, 1, 1), &mayEnd, 100),
				mappingWindow("current", day(2025, 6, 1), nil, 1),
			},
			date:   day(2025, 6, 15),
			wantID: "current",
		},
		{
			name: "highest priority wins among containing windows",
			candidates: []domain.GLMapping{
				mappingWindow("low", day(2025, 1, 1), nil, 1),
				mappingWindow("high", day(2025, 1, 1), nil, 50),
				mappingWindow("mid", day(2025, 1, 1), nil, 10),
			},
			date:   day(2025, 6, 15),
			wantID: "high",
		},
		{
			name: "most recent start date breaks a priority tie",
			candidates: []domain.GLMapping{
				mappingWindow("older", day(2025, 1, 1), nil, 10),
				mappingWindow("newer", day(2025, 6, 1), nil, 10),
			},
			date:   day(2025, 6, 15),
			wantID: "newer",
		},
		{
			name: "priority beats recency",
			candidates: []domain.GLMapping{
				mappingWindow("recent-low", day(2025, 6, 1), nil, 1),
				mappingWindow("old-high", day(2025, 1, 1), nil, 10),
			},
			date:   day(2025, 6, 15),
			wantID: "old-high",
		},
		{
			name:       "no candidates",
			candidates: nil,
			date:       day(2025, 6, 15),
			wantID:     "",
		},
		{
			name: "no containing window",
			candidates: []domain.GLMapping{
				mappingWindow("expired", day(2025, 1, 1), &mayEnd, 10),
				mappingWindow("future", day(2025, 7, 1), nil, 10),
			},
			date:   day(2025, 6, 15),
			wantID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.SelectGLMapping(tt.candidates, tt.date)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.MappingID)
		})
	}
}
