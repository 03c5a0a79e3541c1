package scenario

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"
	"github.com/samber/lo"

	"github.com/QuarksBlueFoot/jiminy/pkg/programs/escrow"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/vault"
	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

// wellKnown names usable as keys in every scenario.
var wellKnown = map[string]solana.PublicKey{
	"system": solana.SystemProgramID,
	"vault":  vault.ProgramID,
	"escrow": escrow.ProgramID,
	"clock":  solana.SysVarClockPubkey,
}

// DeriveKey returns the address a scenario assigns to a key declared
// without a value. It is stable across runs.
func DeriveKey(name string) solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte("jiminy-scenario:" + name)))
}

type keyring map[string]solana.PublicKey

func newKeyring(decl map[string]string) (keyring, error) {
	kr := make(keyring, len(decl))
	names := lo.Keys(decl)
	slices.Sort(names)
	for _, name := range names {
		if _, ok := wellKnown[name]; ok {
			return nil, fmt.Errorf("key %q shadows a well-known address", name)
		}
		value := decl[name]
		if value == "" {
			kr[name] = DeriveKey(name)
			continue
		}
		b, err := ParseBytes(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", name, err)
		}
		if len(b) != solana.PublicKeyLength {
			return nil, fmt.Errorf("key %q: %d bytes, want %d", name, len(b), solana.PublicKeyLength)
		}
		kr[name] = solana.PublicKeyFromBytes(b)
	}
	return kr, nil
}

func (kr keyring) resolve(name string) (solana.PublicKey, error) {
	if k, ok := kr[name]; ok {
		return k, nil
	}
	if k, ok := wellKnown[name]; ok {
		return k, nil
	}
	if body, ok := strings.CutPrefix(name, "b58:"); ok {
		return solana.PublicKeyFromBase58(body)
	}
	return solana.PublicKey{}, fmt.Errorf("unknown key %q", name)
}

// name returns the scenario name of key, or its base58 form.
func (kr keyring) name(key solana.PublicKey) string {
	for n, k := range kr {
		if k == key {
			return n
		}
	}
	for n, k := range wellKnown {
		if k == key {
			return n
		}
	}
	return key.String()
}

type opArgs struct {
	kr   keyring
	args map[string]string
}

func (a opArgs) key(name string) (solana.PublicKey, error) {
	v, ok := a.args[name]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("missing argument %q", name)
	}
	return a.kr.resolve(v)
}

func (a opArgs) u64(name string) (uint64, error) {
	v, ok := a.args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	return strconv.ParseUint(v, 10, 64)
}

// i64 returns 0 for an absent argument.
func (a opArgs) i64(name string) (int64, error) {
	v, ok := a.args[name]
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// keyList returns the comma-separated keys of an optional argument.
func (a opArgs) keyList(name string) ([]solana.PublicKey, error) {
	v := a.args[name]
	if v == "" {
		return nil, nil
	}
	var keys []solana.PublicKey
	for _, n := range strings.Split(v, ",") {
		k, err := a.kr.resolve(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// collect runs every getter and returns the first error.
func collect(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type opFunc func(a opArgs) (*runtime.Instruction, error)

var ops = map[string]opFunc{
	"system.transfer": func(a opArgs) (*runtime.Instruction, error) {
		from, err1 := a.key("from")
		to, err2 := a.key("to")
		lamports, err3 := a.u64("lamports")
		return runtime.NewTransferInstruction(from, to, lamports), collect(err1, err2, err3)
	},
	"system.create_account": func(a opArgs) (*runtime.Instruction, error) {
		from, err1 := a.key("from")
		to, err2 := a.key("to")
		lamports, err3 := a.u64("lamports")
		space, err4 := a.u64("space")
		owner, err5 := a.key("owner")
		return runtime.NewCreateAccountInstruction(from, to, lamports, space, owner), collect(err1, err2, err3, err4, err5)
	},
	"system.assign": func(a opArgs) (*runtime.Instruction, error) {
		acct, err1 := a.key("account")
		owner, err2 := a.key("owner")
		return runtime.NewAssignInstruction(acct, owner), collect(err1, err2)
	},
	"system.allocate": func(a opArgs) (*runtime.Instruction, error) {
		acct, err1 := a.key("account")
		space, err2 := a.u64("space")
		return runtime.NewAllocateInstruction(acct, space), collect(err1, err2)
	},
	"vault.init": func(a opArgs) (*runtime.Instruction, error) {
		payer, err1 := a.key("payer")
		v, err2 := a.key("vault")
		authority, err3 := a.key("authority")
		return vault.NewInitVaultInstruction(payer, v, authority), collect(err1, err2, err3)
	},
	"vault.deposit": func(a opArgs) (*runtime.Instruction, error) {
		depositor, err1 := a.key("depositor")
		v, err2 := a.key("vault")
		amount, err3 := a.u64("amount")
		return vault.NewDepositInstruction(depositor, v, amount), collect(err1, err2, err3)
	},
	"vault.withdraw": func(a opArgs) (*runtime.Instruction, error) {
		authority, err1 := a.key("authority")
		v, err2 := a.key("vault")
		recipient, err3 := a.key("recipient")
		amount, err4 := a.u64("amount")
		return vault.NewWithdrawInstruction(authority, v, recipient, amount), collect(err1, err2, err3, err4)
	},
	"vault.close": func(a opArgs) (*runtime.Instruction, error) {
		authority, err1 := a.key("authority")
		v, err2 := a.key("vault")
		destination, err3 := a.key("destination")
		return vault.NewCloseVaultInstruction(authority, v, destination), collect(err1, err2, err3)
	},
	"escrow.create": func(a opArgs) (*runtime.Instruction, error) {
		creator, err1 := a.key("creator")
		e, err2 := a.key("escrow")
		recipient, err3 := a.key("recipient")
		amount, err4 := a.u64("amount")
		timeout, err5 := a.i64("timeout")
		return escrow.NewCreateEscrowInstruction(creator, e, recipient, amount, timeout), collect(err1, err2, err3, err4, err5)
	},
	"escrow.accept": func(a opArgs) (*runtime.Instruction, error) {
		recipient, err1 := a.key("recipient")
		e, err2 := a.key("escrow")
		destination, err3 := a.key("destination")
		return escrow.NewAcceptEscrowInstruction(recipient, e, destination), collect(err1, err2, err3)
	},
	"escrow.cancel": func(a opArgs) (*runtime.Instruction, error) {
		creator, err1 := a.key("creator")
		e, err2 := a.key("escrow")
		destination, err3 := a.key("destination")
		linked, err4 := a.keyList("linked")
		return escrow.NewCancelEscrowInstruction(creator, e, destination, linked...), collect(err1, err2, err3, err4)
	},
}

// Ops lists the operation names fixtures may use.
func Ops() []string {
	names := lo.Keys(ops)
	slices.Sort(names)
	return names
}

func (kr keyring) instruction(spec IxSpec) (*runtime.Instruction, error) {
	if spec.Op != "" {
		op, ok := ops[spec.Op]
		if !ok {
			return nil, fmt.Errorf("unknown op %q", spec.Op)
		}
		ix, err := op(opArgs{kr: kr, args: spec.Args})
		if err != nil {
			return nil, fmt.Errorf("op %s: %w", spec.Op, err)
		}
		return ix, nil
	}

	programID, err := kr.resolve(spec.Program)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	ix := &runtime.Instruction{ProgramID: programID, Data: spec.Data}
	for _, m := range spec.Accounts {
		k, err := kr.resolve(m.Key)
		if err != nil {
			return nil, err
		}
		ix.Accounts = append(ix.Accounts, runtime.NewAccountMeta(k, m.Writable, m.Signer))
	}
	return ix, nil
}
