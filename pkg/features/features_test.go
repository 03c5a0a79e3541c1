package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_EnableAndDisable(t *testing.T) {
	f := Default()
	assert.True(t, f.HasFeature(RentStateTransitions))
	f.WithoutFeature(RentStateTransitions)
	assert.False(t, f.HasFeature(RentStateTransitions))
	assert.True(t, f.HasFeature(CpiProgramAccountRequired))
	f.WithFeature(RentStateTransitions)
	assert.True(t, f.HasFeature(RentStateTransitions))
}

func TestFeatures_Clone(t *testing.T) {
	f := Default()
	c := f.Clone().WithoutFeature(CpiProgramAccountRequired)
	assert.True(t, f.HasFeature(CpiProgramAccountRequired))
	assert.False(t, c.HasFeature(CpiProgramAccountRequired))
}

func TestFeatures_Empty(t *testing.T) {
	var nilSet *Features
	assert.False(t, nilSet.HasFeature(RentStateTransitions))
	assert.False(t, new(Features).HasFeature(RentStateTransitions))
	assert.Panics(t, func() { new(Features).HasFeature(0) })
	assert.Panics(t, func() { new(Features).WithFeature(seq + 1) })
}

func TestFeatures_Register_Idempotent(t *testing.T) {
	assert.Equal(t, RentStateTransitions, Register(GateAddress("rent_state_transitions"), "rent_state_transitions"))

	f, ok := Lookup("cpi_program_account_required")
	require.True(t, ok)
	assert.Equal(t, CpiProgramAccountRequired, f)
	assert.Equal(t, "cpi_program_account_required", f.String())
	assert.Equal(t, GateAddress("cpi_program_account_required"), f.Gate())

	_, ok = Lookup("no_such_feature")
	assert.False(t, ok)
}

func TestFeatures_AllEnabled(t *testing.T) {
	f := Default().WithoutFeature(CpiProgramAccountRequired)
	assert.Equal(t, []string{
		"feature rent_state_transitions (" + GateAddress("rent_state_transitions").String() + ") enabled",
	}, f.AllEnabled())
}
