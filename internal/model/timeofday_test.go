package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00:00", TimeOfDay{9, 0, 0}, false},
		{"23:59:59", TimeOfDay{23, 59, 59}, false},
		{"00:00:00", TimeOfDay{0, 0, 0}, false},
		{"14:30", TimeOfDay{14, 30, 0}, false},
		{"24:00:00", TimeOfDay{}, true},
		{"12:60:00", TimeOfDay{}, true},
		{"garbage", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestAddMinutesWrapsAtMidnight(t *testing.T) {
	start := TimeOfDay{Hour: 23, Minute: 50}
	assert.Equal(t, "00:10:00", start.AddMinutes(20).String())

	assert.Equal(t, "00:00:00", TimeOfDay{Hour: 23, Minute: 0}.AddMinutes(60).String())
	assert.Equal(t, "09:30:00", TimeOfDay{Hour: 9, Minute: 0}.AddMinutes(30).String())
}

func TestAddMinutesPreservesSeconds(t *testing.T) {
	got := TimeOfDay{Hour: 10, Minute: 15, Second: 42}.AddMinutes(50)
	assert.Equal(t, "11:05:42", got.String())
}

func TestAddMinutesComposes(t *testing.T) {
	// N single steps of D minutes land where one N*D step does.
	start := TimeOfDay{Hour: 8, Minute: 0}
	const n, d = 100, 45

	stepped := start
	for i := 0; i < n; i++ {
		stepped = stepped.AddMinutes(d)
	}
	assert.Equal(t, start.AddMinutes(n*d), stepped)
}

func TestTimeOfDayOrdering(t *testing.T) {
	assert.True(t, TimeOfDay{Hour: 17}.After(TimeOfDay{Hour: 9}))
	assert.False(t, TimeOfDay{Hour: 9}.After(TimeOfDay{Hour: 9}))
	assert.True(t, TimeOfDay{Hour: 9, Second: 1}.After(TimeOfDay{Hour: 9}))
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal(TimeOfDay{Hour: 9, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, `"09:05:00"`, string(b))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"18:45:30"`), &parsed))
	assert.Equal(t, TimeOfDay{18, 45, 30}, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"25:00:00"`), &parsed))
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("07:30:00"))
	assert.Equal(t, TimeOfDay{7, 30, 0}, tod)

	require.NoError(t, tod.Scan([]byte("16:00:00")))
	assert.Equal(t, TimeOfDay{16, 0, 0}, tod)

	require.NoError(t, tod.Scan(time.Date(2026, 1, 2, 11, 22, 33, 0, time.UTC)))
	assert.Equal(t, TimeOfDay{11, 22, 33}, tod)

	assert.Error(t, tod.Scan(nil))
	assert.Error(t, tod.Scan(42))
}
