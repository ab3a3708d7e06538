package hri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchTransitionTable(t *testing.T) {
	tests := []struct {
		action BatchAction
		from   BatchStatus
		want   bool
	}{
		{ActionSendComplete, BatchStarted, true},
		{ActionSendComplete, BatchSendCompleted, false},
		{ActionSendComplete, BatchCompleted, false},
		{ActionSendComplete, BatchTerminated, false},
		{ActionSendComplete, BatchFailed, false},

		{ActionProcessingComplete, BatchStarted, false},
		{ActionProcessingComplete, BatchSendCompleted, true},
		{ActionProcessingComplete, BatchCompleted, false},
		{ActionProcessingComplete, BatchTerminated, false},
		{ActionProcessingComplete, BatchFailed, false},

		{ActionTerminate, BatchStarted, true},
		{ActionTerminate, BatchSendCompleted, true},
		{ActionTerminate, BatchCompleted, false},
		{ActionTerminate, BatchTerminated, false},
		{ActionTerminate, BatchFailed, false},

		{ActionFail, BatchStarted, true},
		{ActionFail, BatchSendCompleted, true},
		{ActionFail, BatchCompleted, false},
		{ActionFail, BatchTerminated, false},
		{ActionFail, BatchFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.ValidFrom(tt.from))
		})
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	assert.False(t, BatchStarted.Terminal())
	assert.False(t, BatchSendCompleted.Terminal())
	assert.True(t, BatchCompleted.Terminal())
	assert.True(t, BatchTerminated.Terminal())
	assert.True(t, BatchFailed.Terminal())
}

func TestBatchActionKnown(t *testing.T) {
	assert.True(t, ActionSendComplete.Known())
	assert.True(t, ActionProcessingComplete.Known())
	assert.True(t, ActionTerminate.Known())
	assert.True(t, ActionFail.Known())
	assert.False(t, BatchAction("delete").Known())
}

func TestTerminalStatusesAcceptNoAction(t *testing.T) {
	actions := []BatchAction{ActionSendComplete, ActionProcessingComplete, ActionTerminate, ActionFail}
	for _, status := range []BatchStatus{BatchCompleted, BatchTerminated, BatchFailed} {
		for _, action := range actions {
			assert.False(t, action.ValidFrom(status),
				"%s must not be valid from terminal status %s", action, status)
		}
	}
}
