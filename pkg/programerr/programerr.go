// Package programerr defines the failure taxonomy shared by the layout
// codec, the check suite and the closure protocol.
//
// Every failure is a package-level sentinel. Callers compare with errors.Is
// and classify with KindOf; the outermost invocation boundary maps a failure
// to a stable status code with Code.
package programerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBufferTooSmall
	KindFormat
	KindAuthorization
	KindIdentity
	KindLifecycle
	KindArithmetic
	KindResourceContention
	KindInvalidInput
	KindInsufficientFunds
)

var kindNames = [...]string{
	KindUnknown:            "unknown",
	KindBufferTooSmall:     "buffer_too_small",
	KindFormat:             "format",
	KindAuthorization:      "authorization",
	KindIdentity:           "identity",
	KindLifecycle:          "lifecycle",
	KindArithmetic:         "arithmetic",
	KindResourceContention: "resource_contention",
	KindInvalidInput:       "invalid_input",
	KindInsufficientFunds:  "insufficient_funds",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is a named, classified failure with a stable status code.
type Error struct {
	Kind Kind
	Code uint32
	name string
}

func (e *Error) Error() string {
	return e.name
}

// Name returns the identifier of the error, e.g. "ErrPdaMismatch".
func (e *Error) Name() string {
	return e.name
}

func newError(kind Kind, code uint32, name string) *Error {
	e := &Error{Kind: kind, Code: code, name: name}
	registry[name] = e
	return e
}

// registry maps error names to sentinels, for fixtures that name the
// expected failure.
var registry = make(map[string]*Error)

// status codes, Solana-compatible where the runtime has an equivalent
const (
	CodeInvalidArgument          = 2
	CodeInvalidInstructionData   = 3
	CodeInvalidAccountData       = 4
	CodeAccountDataTooSmall      = 5
	CodeInsufficientFunds        = 6
	CodeIncorrectProgramId       = 7
	CodeMissingRequiredSignature = 8
	CodeAccountAlreadyInit       = 9
	CodeUninitializedAccount     = 10
	CodeNotEnoughAccountKeys     = 11
	CodeAccountBorrowFailed      = 12
	CodeInvalidSeeds             = 14
	CodeArithmeticOverflow       = 24

	// codes with no runtime equivalent start here
	CodeDiscriminatorMismatch = 100
	CodeVersionTooOld         = 101
	CodeMalformedReserved     = 102
	CodeMalformedBool         = 103
	CodeDataLenMismatch       = 104
	CodeAccountNotWritable    = 105
	CodeAccountNotExecutable  = 106
	CodeAccountsAlias         = 107
	CodeAddressMismatch       = 108
	CodeAccountNotClosed      = 109
	CodeArithmeticUnderflow   = 110
	CodeInsufficientForRent   = 111
	CodePrivilegeEscalation   = 112
	CodeUnsupportedProgramId  = 113
	CodeReentrancyNotAllowed  = 114
	CodeCallDepth             = 115
	CodeMissingAccount        = 116
	CodeAccountAlreadyInUse   = 117
	CodeExternalDataModified  = 118
	CodeExternalLamportSpend  = 119
	CodeModifiedProgramId     = 120
	CodeUnbalancedInstruction = 121

	// CodeCustomBase is the first code available to programs.
	CodeCustomBase = 6000
)

var (
	// buffer too small
	ErrAccountDataTooSmall = newError(KindBufferTooSmall, CodeAccountDataTooSmall, "ErrAccountDataTooSmall")

	// format violations
	ErrDiscriminatorMismatch = newError(KindFormat, CodeDiscriminatorMismatch, "ErrDiscriminatorMismatch")
	ErrVersionTooOld         = newError(KindFormat, CodeVersionTooOld, "ErrVersionTooOld")
	ErrMalformedReserved     = newError(KindFormat, CodeMalformedReserved, "ErrMalformedReserved")
	ErrMalformedBool         = newError(KindFormat, CodeMalformedBool, "ErrMalformedBool")
	ErrDataLenMismatch       = newError(KindFormat, CodeDataLenMismatch, "ErrDataLenMismatch")
	ErrInvalidAccountData    = newError(KindFormat, CodeInvalidAccountData, "ErrInvalidAccountData")

	// authorization violations
	ErrMissingRequiredSignature = newError(KindAuthorization, CodeMissingRequiredSignature, "ErrMissingRequiredSignature")
	ErrAccountNotWritable       = newError(KindAuthorization, CodeAccountNotWritable, "ErrAccountNotWritable")
	ErrIncorrectProgramId       = newError(KindAuthorization, CodeIncorrectProgramId, "ErrIncorrectProgramId")
	ErrAccountNotExecutable     = newError(KindAuthorization, CodeAccountNotExecutable, "ErrAccountNotExecutable")
	ErrPrivilegeEscalation      = newError(KindAuthorization, CodePrivilegeEscalation, "ErrPrivilegeEscalation")
	ErrExternalDataModified     = newError(KindAuthorization, CodeExternalDataModified, "ErrExternalDataModified")
	ErrExternalLamportSpend     = newError(KindAuthorization, CodeExternalLamportSpend, "ErrExternalLamportSpend")
	ErrModifiedProgramId        = newError(KindAuthorization, CodeModifiedProgramId, "ErrModifiedProgramId")

	// identity violations
	ErrPdaMismatch     = newError(KindIdentity, CodeInvalidSeeds, "ErrPdaMismatch")
	ErrAccountsAlias   = newError(KindIdentity, CodeAccountsAlias, "ErrAccountsAlias")
	ErrAddressMismatch = newError(KindIdentity, CodeAddressMismatch, "ErrAddressMismatch")

	// lifecycle violations
	ErrAccountAlreadyInitialized = newError(KindLifecycle, CodeAccountAlreadyInit, "ErrAccountAlreadyInitialized")
	ErrAccountNotClosed          = newError(KindLifecycle, CodeAccountNotClosed, "ErrAccountNotClosed")
	ErrAccountAlreadyInUse       = newError(KindLifecycle, CodeAccountAlreadyInUse, "ErrAccountAlreadyInUse")
	ErrUninitializedAccount      = newError(KindLifecycle, CodeUninitializedAccount, "ErrUninitializedAccount")

	// arithmetic violations
	ErrArithmeticOverflow  = newError(KindArithmetic, CodeArithmeticOverflow, "ErrArithmeticOverflow")
	ErrArithmeticUnderflow = newError(KindArithmetic, CodeArithmeticUnderflow, "ErrArithmeticUnderflow")

	// resource contention
	ErrAccountBorrowFailed = newError(KindResourceContention, CodeAccountBorrowFailed, "ErrAccountBorrowFailed")

	// instruction-level input
	ErrInvalidInstructionData = newError(KindInvalidInput, CodeInvalidInstructionData, "ErrInvalidInstructionData")
	ErrInvalidArgument        = newError(KindInvalidInput, CodeInvalidArgument, "ErrInvalidArgument")
	ErrNotEnoughAccountKeys   = newError(KindInvalidInput, CodeNotEnoughAccountKeys, "ErrNotEnoughAccountKeys")
	ErrUnsupportedProgramId   = newError(KindInvalidInput, CodeUnsupportedProgramId, "ErrUnsupportedProgramId")
	ErrReentrancyNotAllowed   = newError(KindInvalidInput, CodeReentrancyNotAllowed, "ErrReentrancyNotAllowed")
	ErrCallDepth              = newError(KindInvalidInput, CodeCallDepth, "ErrCallDepth")
	ErrMissingAccount         = newError(KindInvalidInput, CodeMissingAccount, "ErrMissingAccount")
	ErrUnbalancedInstruction  = newError(KindInvalidInput, CodeUnbalancedInstruction, "ErrUnbalancedInstruction")

	ErrInsufficientFunds        = newError(KindInsufficientFunds, CodeInsufficientFunds, "ErrInsufficientFunds")
	ErrInsufficientFundsForRent = newError(KindInsufficientFunds, CodeInsufficientForRent, "ErrInsufficientFundsForRent")
)

// Custom registers a program-specific error. Codes below CodeCustomBase are
// reserved. Not thread-safe; call from package initialization only.
func Custom(kind Kind, code uint32, name string) *Error {
	if code < CodeCustomBase {
		panic("custom error code below CodeCustomBase")
	}
	if _, ok := registry[name]; ok {
		panic("duplicate error name " + name)
	}
	return newError(kind, code, name)
}

// ByName returns the registered error with the given name.
func ByName(name string) (*Error, bool) {
	e, ok := registry[name]
	return e, ok
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Code returns the status code of err: 0 for nil, the code of the first
// *Error in the chain, or 1 for errors outside the taxonomy.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}
