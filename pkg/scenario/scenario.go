// Package scenario loads YAML fixtures that describe a set of accounts and
// an ordered list of transactions with their expected outcomes, and runs
// them through the runtime.
package scenario

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/QuarksBlueFoot/jiminy/pkg/runtime"
)

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Clock       runtime.Clock `yaml:"clock"`
	// DisabledFeatures names feature gates to deactivate for the run.
	DisabledFeatures []string          `yaml:"disabled_features"`
	Keys             map[string]string `yaml:"keys"`
	Accounts         []AccountSpec     `yaml:"accounts"`
	Transactions     []TxSpec          `yaml:"transactions"`
}

// AccountSpec seeds one account before the first transaction.
type AccountSpec struct {
	Key        string `yaml:"key"`
	Lamports   uint64 `yaml:"lamports"`
	Owner      string `yaml:"owner"`
	Data       Bytes  `yaml:"data"`
	Executable bool   `yaml:"executable"`
}

type TxSpec struct {
	Name string `yaml:"name"`
	// UnixTimestamp, when set, moves the clock before the transaction.
	UnixTimestamp *int64     `yaml:"unix_timestamp"`
	Instructions  []IxSpec   `yaml:"instructions"`
	Expect        ExpectSpec `yaml:"expect"`
}

// IxSpec is either an operation with named arguments, e.g.
//
//	op: vault.deposit
//	args: {depositor: payer, vault: vault, amount: 100}
//
// or a raw instruction given by program, account metas and data.
type IxSpec struct {
	Op       string            `yaml:"op"`
	Args     map[string]string `yaml:"args"`
	Program  string            `yaml:"program"`
	Accounts []MetaSpec        `yaml:"accounts"`
	Data     Bytes             `yaml:"data"`
}

type MetaSpec struct {
	Key      string `yaml:"key"`
	Signer   bool   `yaml:"signer"`
	Writable bool   `yaml:"writable"`
}

type ExpectSpec struct {
	// Error names the expected failure, e.g. ErrArithmeticUnderflow. Empty
	// means success.
	Error    string          `yaml:"error"`
	Accounts []AccountExpect `yaml:"accounts"`
}

// AccountExpect asserts on the state after a transaction. Unset fields are
// not checked.
type AccountExpect struct {
	Key      string        `yaml:"key"`
	Lamports *uint64       `yaml:"lamports"`
	DataLen  *int          `yaml:"data_len"`
	Owner    string        `yaml:"owner"`
	Data     *Bytes        `yaml:"data"`
	State    string        `yaml:"state"`
	Vault    *VaultExpect  `yaml:"vault"`
	Escrow   *EscrowExpect `yaml:"escrow"`
}

type VaultExpect struct {
	Balance   *uint64 `yaml:"balance"`
	Authority string  `yaml:"authority"`
}

type EscrowExpect struct {
	State     string  `yaml:"state"`
	Amount    *uint64 `yaml:"amount"`
	Recipient string  `yaml:"recipient"`
}

// Load decodes one scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if len(s.Transactions) == 0 {
		return nil, fmt.Errorf("scenario %q has no transactions", s.Name)
	}
	return &s, nil
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
