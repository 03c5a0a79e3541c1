package runtime

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
)

const ClockStructLen = 40

var SysvarOwner = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

// Clock is the clock sysvar as seen by programs during a transaction.
type Clock struct {
	Slot                uint64 `yaml:"slot"`
	EpochStartTimestamp int64  `yaml:"epoch_start_timestamp"`
	Epoch               uint64 `yaml:"epoch"`
	LeaderScheduleEpoch uint64 `yaml:"leader_schedule_epoch"`
	UnixTimestamp       int64  `yaml:"unix_timestamp"`
}

func (c *Clock) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	c.Slot, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read Slot when decoding Clock: %w", err)
	}

	c.EpochStartTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read EpochStartTimestamp when decoding Clock: %w", err)
	}

	c.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read Epoch when decoding Clock: %w", err)
	}

	c.LeaderScheduleEpoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read LeaderScheduleEpoch when decoding Clock: %w", err)
	}

	c.UnixTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read UnixTimestamp when decoding Clock: %w", err)
	}
	return
}

func (c *Clock) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteUint64(c.Slot, bin.LE)
	_ = encoder.WriteInt64(c.EpochStartTimestamp, bin.LE)
	_ = encoder.WriteUint64(c.Epoch, bin.LE)
	_ = encoder.WriteUint64(c.LeaderScheduleEpoch, bin.LE)
	return encoder.WriteInt64(c.UnixTimestamp, bin.LE)
}

// clockAccount renders c as the clock sysvar account.
func clockAccount(c Clock) *accounts.Account {
	buf := new(bytes.Buffer)
	if err := c.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		panic("shouldn't fail")
	}
	return &accounts.Account{
		Key:      solana.SysVarClockPubkey,
		Lamports: 1169280,
		Data:     buf.Bytes(),
		Owner:    SysvarOwner,
	}
}

// ReadClock decodes the clock sysvar account from accts.
func ReadClock(accts accounts.Accounts) (Clock, error) {
	acct, err := accts.GetAccount(solana.SysVarClockPubkey)
	if err != nil {
		return Clock{}, err
	}
	if acct == nil {
		return Clock{}, fmt.Errorf("clock sysvar account not found")
	}
	var c Clock
	err = c.UnmarshalWithDecoder(bin.NewBinDecoder(acct.Data))
	return c, err
}
