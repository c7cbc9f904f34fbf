package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKafkaWriter implements kafkaMessageWriter for tests
type fakeKafkaWriter struct {
	msgs []kafka.Message
	fail bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_PublishBooking(t *testing.T) {
	fk := &fakeKafkaWriter{}
	p := NewKafkaPublisherWith(fk)
	e := BookingEvent{
		Type:       TypeBookingCreated,
		BookingID:  "b-1",
		UserID:     "u-1",
		ScheduleID: 42,
		Status:     "confirmed",
		SeatClass:  "3A",
		OccurredAt: time.Date(2024, 8, 11, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.PublishBooking(context.Background(), e))
	require.Len(t, fk.msgs, 1)
	assert.Equal(t, "b-1", string(fk.msgs[0].Key))
	assert.Equal(t, "type", fk.msgs[0].Headers[0].Key)
	assert.Equal(t, TypeBookingCreated, string(fk.msgs[0].Headers[0].Value))

	var got BookingEvent
	require.NoError(t, json.Unmarshal(fk.msgs[0].Value, &got))
	assert.Equal(t, e, got)
}

func TestBookingEvent_ScheduleIDIsQuoted(t *testing.T) {
	e := BookingEvent{Type: TypeBookingCreated, BookingID: "b-1", ScheduleID: 1<<53 + 1}

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schedule_id":"9007199254740993"`)

	var got BookingEvent
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, int64(1<<53+1), got.ScheduleID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisherWith(&fakeKafkaWriter{fail: true})

	err := p.PublishBooking(context.Background(), BookingEvent{Type: TypeBookingCancelled, BookingID: "b-2"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish booking.cancelled")
}

func TestKafkaPublisher_CloseWithoutCloser(t *testing.T) {
	assert.NoError(t, NewKafkaPublisherWith(&fakeKafkaWriter{}).Close())
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.PublishBooking(context.Background(), BookingEvent{}))
}
