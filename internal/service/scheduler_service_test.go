package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)
	_, err = s.ScheduleInterval(-time.Minute, func() {})
	assert.Error(t, err)
	assert.Empty(t, s.Entries())
}

func TestScheduleIntervalRegistersJob(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	id, err := s.ScheduleInterval(15*time.Minute, func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, s.Entries(), 1)
}

func TestScheduledJobRuns(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	ran := make(chan struct{}, 1)
	_, err := s.ScheduleInterval(time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}
