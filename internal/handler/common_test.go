package handler

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
    from, to, err := parseMonth("2026-06")
    require.NoError(t, err)
    assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), from)
    assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), to)

    from, to, err = parseMonth("2026-12")
    require.NoError(t, err)
    assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)
    assert.Equal(t, time.December, from.Month())
}

func TestParseMonthEmptyDisablesFilter(t *testing.T) {
    from, to, err := parseMonth("")
    require.NoError(t, err)
    assert.True(t, from.IsZero())
    assert.True(t, to.IsZero())
}

func TestParseMonthRejectsGarbage(t *testing.T) {
    for _, bad := range []string{"2026", "06-2026", "2026-13", "june"} {
        _, _, err := parseMonth(bad)
        assert.Error(t, err, bad)
    }
}

func TestParseCount(t *testing.T) {
    n, err := parseCount("3")
    require.NoError(t, err)
    assert.Equal(t, 3, n)

    for _, bad := range []string{"", "0", "-2", "many"} {
        _, err := parseCount(bad)
        assert.Error(t, err, bad)
    }
}
