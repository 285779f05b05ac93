package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  Phase
	}{
		{EventBegin, PhaseReading},
		{EventRecord, PhaseAnswering},
		{EventLock, PhaseTransitioning},
		{EventNext, PhaseReading},
		{EventRecord, PhaseAnswering},
		{EventFinish, PhaseComplete},
		{EventSubmit, PhaseSubmitting},
		{EventSubmitOK, PhaseSubmitted},
	}

	phase := PhaseNotStarted
	for _, step := range steps {
		next, err := Transition(phase, step.event)
		require.NoError(t, err, "from %s on %s", phase, step.event)
		require.Equal(t, step.want, next)
		phase = next
	}
}

func TestTransitionSubmitRetry(t *testing.T) {
	next, err := Transition(PhaseSubmitting, EventSubmitErr)
	require.NoError(t, err)
	require.Equal(t, PhaseSubmissionFailed, next)

	next, err = Transition(PhaseSubmissionFailed, EventSubmit)
	require.NoError(t, err)
	require.Equal(t, PhaseSubmitting, next)
}

func TestTransitionRestore(t *testing.T) {
	next, err := Transition(PhaseNotStarted, EventRestore)
	require.NoError(t, err)
	require.Equal(t, PhaseComplete, next)
}

func TestTransitionBlockFromAnywhere(t *testing.T) {
	for _, phase := range []Phase{
		PhaseNotStarted, PhaseReading, PhaseAnswering,
		PhaseTransitioning, PhaseComplete, PhaseSubmitting,
		PhaseSubmissionFailed, PhaseBlocked,
	} {
		next, err := Transition(phase, EventBlock)
		require.NoError(t, err, "from %s", phase)
		require.Equal(t, PhaseBlocked, next)
	}

	// A submitted session has nothing left to block.
	_, err := Transition(PhaseSubmitted, EventBlock)
	require.Error(t, err)
}

func TestTransitionRejectsInvalid(t *testing.T) {
	cases := []struct {
		phase Phase
		event Event
	}{
		{PhaseNotStarted, EventRecord},
		{PhaseNotStarted, EventSubmit},
		{PhaseReading, EventBegin},
		{PhaseReading, EventLock},
		{PhaseAnswering, EventRecord},
		{PhaseAnswering, EventSubmit},
		{PhaseTransitioning, EventLock},
		{PhaseComplete, EventBegin},
		{PhaseComplete, EventFinish},
		{PhaseSubmitting, EventSubmit},
		{PhaseSubmitted, EventSubmit},
		{PhaseBlocked, EventBegin},
	}
	for _, c := range cases {
		next, err := Transition(c.phase, c.event)
		require.Error(t, err, "from %s on %s", c.phase, c.event)
		require.Equal(t, c.phase, next, "invalid transition must not move the phase")
	}
}
