package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriodValidate(t *testing.T) {
	require.NoError(t, Period{Month: 1, Year: 2026}.Validate())
	require.NoError(t, Period{Month: 12, Year: 2200}.Validate())

	require.ErrorIs(t, Period{Month: 0, Year: 2026}.Validate(), ErrInvalidPeriod)
	require.ErrorIs(t, Period{Month: 13, Year: 2026}.Validate(), ErrInvalidPeriod)
	require.ErrorIs(t, Period{Month: 6, Year: 1999}.Validate(), ErrInvalidPeriod)
	require.ErrorIs(t, Period{Month: 6, Year: 2201}.Validate(), ErrInvalidPeriod)
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC))
	require.Equal(t, Period{Month: 8, Year: 2026}, p)
}

func TestPeriodBefore(t *testing.T) {
	require.True(t, Period{Month: 12, Year: 2025}.Before(Period{Month: 1, Year: 2026}))
	require.True(t, Period{Month: 7, Year: 2026}.Before(Period{Month: 8, Year: 2026}))
	require.False(t, Period{Month: 8, Year: 2026}.Before(Period{Month: 8, Year: 2026}))
	require.False(t, Period{Month: 9, Year: 2026}.Before(Period{Month: 8, Year: 2026}))
}

func TestPeriodNext(t *testing.T) {
	require.Equal(t, Period{Month: 9, Year: 2026}, Period{Month: 8, Year: 2026}.Next())
	require.Equal(t, Period{Month: 1, Year: 2027}, Period{Month: 12, Year: 2026}.Next())
}

func TestPeriodString(t *testing.T) {
	require.Equal(t, "2026-08", Period{Month: 8, Year: 2026}.String())
	require.Equal(t, "2026-12", Period{Month: 12, Year: 2026}.String())
}
