package scenario

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

func TestParseBytes(t *testing.T) {
	cases := []struct {
		in   string
		want []byte
		err  bool
	}{
		{in: "", want: nil},
		{in: "hex:0a0b", want: []byte{0x0a, 0x0b}},
		{in: "hex:0a 0b ff", want: []byte{0x0a, 0x0b, 0xff}},
		{in: "b58:2g", want: []byte{0x61}},
		{in: "str:vault", want: []byte("vault")},
		{in: "hex:0", err: true},
		{in: "b58:0OIl", err: true},
		{in: "raw:00", err: true},
		{in: "0a0b", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBytes(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, []byte(got))
		})
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`
name: typo
transactions:
  - name: t
    instructions: []
    expct: {}
`))
	require.Error(t, err)

	_, err = Load(strings.NewReader("name: empty\n"))
	require.Error(t, err)
}

func TestKeyring(t *testing.T) {
	explicit := solana.NewWallet().PublicKey()
	kr, err := newKeyring(map[string]string{
		"alice": "",
		"bob":   "b58:" + explicit.String(),
	})
	require.NoError(t, err)

	alice, err := kr.resolve("alice")
	require.NoError(t, err)
	assert.Equal(t, DeriveKey("alice"), alice)

	bob, err := kr.resolve("bob")
	require.NoError(t, err)
	assert.Equal(t, explicit, bob)

	sys, err := kr.resolve("system")
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, sys)

	inline, err := kr.resolve("b58:" + explicit.String())
	require.NoError(t, err)
	assert.Equal(t, explicit, inline)

	_, err = kr.resolve("carol")
	require.Error(t, err)

	_, err = newKeyring(map[string]string{"vault": ""})
	require.Error(t, err)
	_, err = newKeyring(map[string]string{"short": "hex:00"})
	require.Error(t, err)
}

func TestOps_Complete(t *testing.T) {
	assert.Equal(t, []string{
		"escrow.accept", "escrow.cancel", "escrow.create",
		"system.allocate", "system.assign", "system.create_account", "system.transfer",
		"vault.close", "vault.deposit", "vault.init", "vault.withdraw",
	}, Ops())
}

func TestInstruction_MissingArgument(t *testing.T) {
	kr, err := newKeyring(map[string]string{"a": ""})
	require.NoError(t, err)
	_, err = kr.instruction(IxSpec{Op: "system.transfer", Args: map[string]string{"from": "a", "to": "a"}})
	require.ErrorContains(t, err, `missing argument "lamports"`)

	_, err = kr.instruction(IxSpec{Op: "system.burn"})
	require.Error(t, err)
}

const vaultScenario = `
name: vault
clock: {slot: 1, unix_timestamp: 1000}
keys:
  payer: ""
  authority: ""
  vault_acct: ""
accounts:
  - {key: payer, lamports: 10000000}
  - {key: authority, lamports: 10000000}
transactions:
  - name: init
    instructions:
      - op: vault.init
        args: {payer: payer, vault: vault_acct, authority: authority}
    expect:
      accounts:
        - key: vault_acct
          owner: vault
          data_len: 48
          state: initialized
          vault: {balance: 0, authority: authority}
  - name: deposit
    instructions:
      - op: vault.deposit
        args: {depositor: payer, vault: vault_acct, amount: "100"}
    expect:
      accounts:
        - {key: vault_acct, vault: {balance: 100}}
  - name: overdraw
    instructions:
      - op: vault.withdraw
        args: {authority: authority, vault: vault_acct, recipient: authority, amount: "1000"}
    expect:
      error: ErrArithmeticUnderflow
      accounts:
        - {key: vault_acct, vault: {balance: 100}}
  - name: raw withdraw
    instructions:
      - program: vault
        accounts:
          - {key: authority, signer: true}
          - {key: vault_acct, writable: true}
          - {key: authority, writable: true}
        data: hex:02 28 00 00 00 00 00 00 00
    expect:
      accounts:
        - {key: vault_acct, vault: {balance: 60}}
        - {key: authority, lamports: 10000040}
`

func TestRun_Vault(t *testing.T) {
	s, err := Load(strings.NewReader(vaultScenario))
	require.NoError(t, err)

	report, err := Run(s)
	require.NoError(t, err)
	assert.Empty(t, report.Failures())
	assert.True(t, report.Passed())
	require.Len(t, report.Txs, 4)
	assert.Error(t, report.Txs[2].Err)
	assert.Len(t, report.StateHash, 32)
	assert.Greater(t, report.AverageComputeUnits, 0.0)

	// same fixture, same state
	again, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, report.StateHash, again.StateHash)
}

func TestRun_ReportsUnmetExpectations(t *testing.T) {
	s, err := Load(strings.NewReader(`
name: wrong
keys: {a: "", b: ""}
accounts:
  - {key: a, lamports: 10000000}
  - {key: b, lamports: 10000000}
transactions:
  - name: transfer
    instructions:
      - op: system.transfer
        args: {from: a, to: b, lamports: "5"}
    expect:
      error: ErrInsufficientFunds
      accounts:
        - {key: b, lamports: 1}
`))
	require.NoError(t, err)

	report, err := Run(s)
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Equal(t, []string{
		"transfer: expected ErrInsufficientFunds, transaction succeeded",
		"transfer: account b: lamports 10000005, want 1",
	}, report.Failures())
}

func TestRun_ComputeBudget(t *testing.T) {
	s, err := Load(strings.NewReader(`
name: budget
keys: {a: "", b: ""}
accounts:
  - {key: a, lamports: 10000000}
  - {key: b, lamports: 10000000}
transactions:
  - instructions:
      - op: system.transfer
        args: {from: a, to: b, lamports: "5"}
    expect: {error: ErrComputeExceeded}
`))
	require.NoError(t, err)

	report, err := Run(s, runtime.WithComputeBudget(10))
	require.NoError(t, err)
	assert.True(t, report.Passed(), report.Failures())
}

func TestRun_UnknownFeature(t *testing.T) {
	s, err := Load(strings.NewReader(`
name: features
disabled_features: [time_travel]
transactions:
  - instructions: []
`))
	require.NoError(t, err)

	_, err = Run(s)
	require.ErrorContains(t, err, `unknown feature "time_travel"`)
}
