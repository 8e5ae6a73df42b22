package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseExpiryDate(t *testing.T) {
	t.Run("iso date", func(t *testing.T) {
		d, err := ParseExpiryDate("2024-01-19")
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("rfc3339 drops time of day", func(t *testing.T) {
		d, err := ParseExpiryDate("2024-03-15T16:00:00Z")
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("us date", func(t *testing.T) {
		d, err := ParseExpiryDate("06/21/2024")
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseExpiryDate("next friday")
		require.Error(t, err)

		_, err = ParseExpiryDate("")
		require.Error(t, err)
	})
}

func TestDaysBetween(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	require.Equal(t, 9, DaysBetween(today, time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, -10, DaysBetween(today, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 0, DaysBetween(today, today))
	require.Equal(t, 173856, DaysBetween(today, time.Date(2500, 1, 10, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, -173856, DaysBetween(time.Date(2500, 1, 10, 0, 0, 0, 0, time.UTC), today))
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(16)
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := RandomHex(16)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{10, 10, true},
		{json.Number("2.25"), 2.25, true},
		{" 3.5 ", 3.5, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}

	for _, c := range cases {
		got, ok := ToFloat64(c.in)
		require.Equal(t, c.ok, ok, "%v", c.in)
		require.Equal(t, c.want, got, "%v", c.in)
	}

	id, ok := ToInt64(float64(1700000000000))
	require.True(t, ok)
	require.Equal(t, int64(1700000000000), id)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("ITRADE_TEST_VALUE", "set")
	require.Equal(t, "set", GetEnvOrDefault("ITRADE_TEST_VALUE", "fallback"))

	t.Setenv("ITRADE_TEST_VALUE", "")
	require.Equal(t, "fallback", GetEnvOrDefault("ITRADE_TEST_VALUE", "fallback"))

	_, err := GetEnv("ITRADE_TEST_UNSET_VALUE")
	require.Error(t, err)
}

func TestInitEnvironmentVariables(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		require.NoError(t, InitEnvironmentVariables(t.TempDir(), "development"))
	})

	t.Run("loads production file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, PROD_ENV_FILENAME), []byte("ITRADE_TEST_FROM_FILE=prod\n"), 0600))
		t.Setenv("ITRADE_TEST_FROM_FILE", "")
		os.Unsetenv("ITRADE_TEST_FROM_FILE")

		require.NoError(t, InitEnvironmentVariables(dir, "production"))
		require.Equal(t, "prod", os.Getenv("ITRADE_TEST_FROM_FILE"))
	})
}
