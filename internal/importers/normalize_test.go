package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ir-contacts/internal/config"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(config.Import{})
}

func TestNormalizer_Date(t *testing.T) {
	n := testNormalizer()

	t.Run("decodes spreadsheet serials", func(t *testing.T) {
		date := n.Date("45000")
		require.NotNil(t, date)
		assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), *date)
	})

	t.Run("truncates fractional serials to the calendar day", func(t *testing.T) {
		date := n.Date("45000.75")
		require.NotNil(t, date)
		assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), *date)
	})

	t.Run("rejects numbers outside the serial range", func(t *testing.T) {
		assert.Nil(t, n.Date("39999"))
		assert.Nil(t, n.Date("60001"))
		assert.Nil(t, n.Date("7"))
	})

	t.Run("parses common calendar layouts", func(t *testing.T) {
		want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
		for _, value := range []string{"2024-03-15", "2024/03/15", "03/15/2024", "3/15/2024", "Mar 15, 2024", "15 Mar 2024", "15.03.2024"} {
			date := n.Date(value)
			require.NotNil(t, date, "value %q", value)
			assert.Equal(t, want, *date, "value %q", value)
		}
	})

	t.Run("results are always midnight UTC", func(t *testing.T) {
		date := n.Date("2024-03-15T18:30:00Z")
		require.NotNil(t, date)
		assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), *date)
	})

	t.Run("returns nil for garbage", func(t *testing.T) {
		for _, value := range []string{"not a date", "", "  ", "tomorrow", "2024-13-45"} {
			assert.Nil(t, n.Date(value), "value %q", value)
		}
	})

	t.Run("honours configured serial bounds", func(t *testing.T) {
		custom := NewNormalizer(config.Import{SerialMin: 100, SerialMax: 200})
		assert.NotNil(t, custom.Date("150"))
		assert.Nil(t, custom.Date("45000"))
	})
}

func TestNormalizer_Priority(t *testing.T) {
	n := testNormalizer()

	t.Run("accepts values in range", func(t *testing.T) {
		for _, tc := range []struct {
			value string
			want  int
		}{
			{"1", 1},
			{"3", 3},
			{"5", 5},
			{" 2 ", 2},
			{"4.0", 4},
		} {
			got := n.Priority(tc.value)
			require.NotNil(t, got, "value %q", tc.value)
			assert.Equal(t, tc.want, *got, "value %q", tc.value)
		}
	})

	t.Run("treats sentinels as no priority", func(t *testing.T) {
		for _, value := range []string{"", "-", "n/a", "N/A", "na", "  "} {
			assert.Nil(t, n.Priority(value), "value %q", value)
		}
	})

	t.Run("discards out-of-range values instead of clamping", func(t *testing.T) {
		for _, value := range []string{"0", "6", "-3", "100"} {
			assert.Nil(t, n.Priority(value), "value %q", value)
		}
	})

	t.Run("discards non-numeric and fractional values", func(t *testing.T) {
		for _, value := range []string{"high", "abc", "3.5", "1e3"} {
			assert.Nil(t, n.Priority(value), "value %q", value)
		}
	})
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(nil))

	date := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", FormatDate(&date))
}
