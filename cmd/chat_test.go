package cmd

import (
	"testing"

	"github.com/samsaffron/quicker-llm/internal/agent"
)

func TestInterruptQuitsOnlyWhenIdle(t *testing.T) {
	if !interruptQuits(agent.StateIdle) {
		t.Error("Ctrl+C at the prompt should exit")
	}
	if interruptQuits(agent.StateAwaitingResponse) {
		t.Error("Ctrl+C while streaming should cancel, not exit")
	}
	if interruptQuits(agent.StateDispatching) {
		t.Error("Ctrl+C while dispatching should cancel, not exit")
	}
}
