package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleRecord_IDsEncodeAsStrings(t *testing.T) {
	const id = int64(1820000000000000001)
	rec := ScheduleRecord{
		ID:   id,
		Mode: ModeTrain,
		SeatAvailability: []SeatClassAvailability{
			{ID: id + 1, ScheduleID: id, ClassName: "3A"},
		},
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "1820000000000000001", wire["id"])
	seats := wire["seat_availability"].([]any)
	require.Len(t, seats, 1)
	seat := seats[0].(map[string]any)
	assert.Equal(t, "1820000000000000002", seat["id"])
	assert.Equal(t, "1820000000000000001", seat["schedule_id"])

	var back ScheduleRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, id, back.ID)
	assert.Equal(t, id, back.SeatAvailability[0].ScheduleID)
}
