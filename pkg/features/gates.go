package features

// RentStateTransitions rejects transactions that leave a writable account
// rent-paying unless it was already rent-paying with no growth in size.
var RentStateTransitions = register("rent_state_transitions")

// CpiProgramAccountRequired requires the callee program account to be
// among the caller's accounts for a cross-program invocation.
var CpiProgramAccountRequired = register("cpi_program_account_required")

func register(name string) Feature {
	return Register(GateAddress(name), name)
}
