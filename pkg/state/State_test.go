package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zalan-axis/docker-map/pkg/contracts"
)

func TestMachine_LegalTransitions(t *testing.T) {
	machine := NewMachine()

	assert.True(t, machine.CanTransition(contracts.Absent, contracts.Created))
	assert.True(t, machine.CanTransition(contracts.Created, contracts.Running))
	assert.True(t, machine.CanTransition(contracts.Running, contracts.Stopped))
	assert.True(t, machine.CanTransition(contracts.Stopped, contracts.Running))
	assert.True(t, machine.CanTransition(contracts.Stopped, contracts.Absent))
	assert.True(t, machine.CanTransition(contracts.Created, contracts.Absent))
}

func TestMachine_IllegalTransitions(t *testing.T) {
	machine := NewMachine()

	assert.False(t, machine.CanTransition(contracts.Absent, contracts.Running))
	assert.False(t, machine.CanTransition(contracts.Running, contracts.Absent))
	assert.False(t, machine.CanTransition(contracts.Absent, contracts.Stopped))
}

func TestMachine_SelfTransition(t *testing.T) {
	machine := NewMachine()

	assert.True(t, machine.CanTransition(contracts.Running, contracts.Running))
}

func TestValidate(t *testing.T) {
	machine := NewMachine()

	assert.NoError(t, machine.Validate(contracts.Absent, contracts.ActionCreate))
	assert.NoError(t, machine.Validate(contracts.Created, contracts.ActionStart))
	assert.NoError(t, machine.Validate(contracts.Running, contracts.ActionStop))
	assert.Error(t, machine.Validate(contracts.Running, contracts.ActionRemove))
	assert.Error(t, machine.Validate(contracts.Absent, contracts.ActionStart))
}

func TestExpectedAfter(t *testing.T) {
	assert.Equal(t, contracts.Created, ExpectedAfter(contracts.ActionCreate))
	assert.Equal(t, contracts.Running, ExpectedAfter(contracts.ActionStart))
	assert.Equal(t, contracts.Stopped, ExpectedAfter(contracts.ActionStop))
	assert.Equal(t, contracts.Stopped, ExpectedAfter(contracts.ActionWait))
	assert.Equal(t, contracts.Absent, ExpectedAfter(contracts.ActionRemove))
}
