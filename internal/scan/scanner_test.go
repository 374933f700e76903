package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"dlmm-binscan/internal/dlmm"
	"dlmm-binscan/internal/solana"
	"dlmm-binscan/internal/solana/stub"
)

var testLbPair = solana.MustPublicKey("So11111111111111111111111111111111111111112")

// binArrayData returns account data for a bin array with every price set to
// one, except the given positions which are zero.
func binArrayData(index int64, zeroAt ...int) []byte {
	ba := &dlmm.BinArray{Index: index, Version: 1, LbPair: testLbPair}
	for i := range ba.Bins {
		ba.Bins[i].Price = uint128.From64(1)
	}
	for _, pos := range zeroAt {
		ba.Bins[pos].Price = uint128.Zero
	}
	return ba.EncodeAccount()
}

func newStub() *stub.RPCClient {
	return stub.NewRPCClient()
}

func TestScanner_ZeroPriceCount(t *testing.T) {
	rpc := newStub()
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0, 42))
	rpc.AddAccount("acct2", dlmm.ProgramID, binArrayData(1))
	rpc.AddAccount("acct3", dlmm.ProgramID, binArrayData(-1, 0, 69))

	result, err := NewScanner(Options{Source: rpc}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Decoded)
	assert.Empty(t, result.Failures)
	require.Equal(t, 2, result.ZeroPriceCount())

	assert.Equal(t, "acct1", result.Findings[0].Address)
	assert.Equal(t, 42, result.Findings[0].BinPosition)
	assert.Equal(t, int64(42), result.Findings[0].BinID)
	assert.Equal(t, testLbPair, result.Findings[0].LbPair)

	assert.Equal(t, "acct3", result.Findings[1].Address)
	assert.Equal(t, 0, result.Findings[1].BinPosition)
	assert.Equal(t, int64(-70), result.Findings[1].BinID)

	assert.Equal(t, 1, rpc.Calls)
}

func TestScanner_SkipPolicy(t *testing.T) {
	short := binArrayData(1, 3)
	short = short[:len(short)-1]

	rpc := newStub()
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0, 42))
	rpc.AddAccount("acct2", dlmm.ProgramID, short)
	rpc.AddAccount("acct3", dlmm.ProgramID, binArrayData(2, 7))

	result, err := NewScanner(Options{Source: rpc, Policy: PolicySkip}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Decoded)
	assert.Equal(t, 2, result.ZeroPriceCount())

	require.Len(t, result.Failures, 1)
	failure := result.Failures[0]
	assert.Equal(t, 1, failure.Position)
	assert.Equal(t, "acct2", failure.Address)
	assert.Equal(t, ReasonSizeMismatch, failure.Reason())
	assert.ErrorIs(t, failure.Err, dlmm.ErrSizeMismatch)

	assert.Equal(t, "acct1", result.Findings[0].Address)
	assert.Equal(t, "acct3", result.Findings[1].Address)
}

func TestScanner_AbortPolicy(t *testing.T) {
	short := binArrayData(1)
	short = short[:len(short)-1]

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			rpc := newStub()
			rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0))
			rpc.AddAccount("acct2", dlmm.ProgramID, short)
			rpc.AddAccount("acct3", dlmm.ProgramID, short)

			result, err := NewScanner(Options{Source: rpc, Policy: PolicyAbort, Workers: workers}).Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, result)

			var accErr *AccountError
			require.True(t, errors.As(err, &accErr))
			assert.Equal(t, 1, accErr.Position)
			assert.Equal(t, "acct2", accErr.Address)
			assert.ErrorIs(t, err, dlmm.ErrSizeMismatch)
		})
	}
}

func TestScanner_FetchError(t *testing.T) {
	fetchErr := &solana.RPCError{Code: -32010, Message: "excluded from account secondary indexes"}

	rpc := newStub()
	rpc.Err = fetchErr

	result, err := NewScanner(Options{Source: rpc}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var rpcErr *solana.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32010, rpcErr.Code)
}

func TestScanner_FiltersByDiscriminatorAndOwner(t *testing.T) {
	other := binArrayData(0, 1)
	copy(other, []byte{33, 11, 100, 169, 207, 29, 179, 31})

	rpc := newStub()
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0, 1))
	rpc.AddAccount("other-tag", dlmm.ProgramID, other)
	rpc.AddAccount("other-owner", "11111111111111111111111111111111", binArrayData(0, 1))

	result, err := NewScanner(Options{Source: rpc}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.ZeroPriceCount())
}

func TestScanner_DataSizeFilter(t *testing.T) {
	short := binArrayData(1)
	short = short[:len(short)-16]

	rpc := newStub()
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0, 5))
	rpc.AddAccount("acct2", dlmm.ProgramID, short)

	result, err := NewScanner(Options{Source: rpc, DataSizeFilter: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, result.ZeroPriceCount())
}

func TestScanner_WithContext(t *testing.T) {
	rpc := newStub()
	rpc.Slot = 312000000
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(0))

	result, err := NewScanner(Options{Source: rpc, WithContext: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(312000000), result.Slot)
}

// staticSource returns a fixed account list, bypassing filters.
type staticSource struct {
	accounts []solana.KeyedAccount
}

func (s *staticSource) GetProgramAccounts(context.Context, string, *solana.ProgramAccountsOpts) (*solana.ProgramAccounts, error) {
	return &solana.ProgramAccounts{Accounts: s.accounts}, nil
}

func TestScanner_EncodingFailure(t *testing.T) {
	src := &staticSource{accounts: []solana.KeyedAccount{
		{Pubkey: "bad", Account: solana.AccountInfo{Owner: dlmm.ProgramID, Data: "not*base64"}},
	}}

	result, err := NewScanner(Options{Source: src}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, ReasonEncoding, result.Failures[0].Reason())
	assert.Equal(t, 0, result.Decoded)
}

func TestScanner_VerifyAddress(t *testing.T) {
	programID := solana.MustPublicKey(dlmm.ProgramID)
	good, err := dlmm.DeriveBinArrayAddress(programID, testLbPair, 4)
	require.NoError(t, err)
	wrong, err := dlmm.DeriveBinArrayAddress(programID, testLbPair, 5)
	require.NoError(t, err)

	rpc := newStub()
	rpc.AddAccount(good.String(), dlmm.ProgramID, binArrayData(4, 9))
	rpc.AddAccount(wrong.String(), dlmm.ProgramID, binArrayData(4, 9))

	result, err := NewScanner(Options{Source: rpc, VerifyAddress: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ZeroPriceCount())
	assert.Equal(t, good.String(), result.Findings[0].Address)
	assert.Equal(t, int64(4*70+9), result.Findings[0].BinID)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, wrong.String(), result.Failures[0].Address)
	assert.Equal(t, ReasonAddressMismatch, result.Failures[0].Reason())
}

func TestScanner_ParallelMatchesSequential(t *testing.T) {
	rpc := newStub()
	for i := 0; i < 64; i++ {
		data := binArrayData(int64(i), i%70)
		if i%3 == 0 {
			data = binArrayData(int64(i))
		}
		if i%10 == 7 {
			data = data[:len(data)-2]
		}
		rpc.AddAccount(fmt.Sprintf("acct%02d", i), dlmm.ProgramID, data)
	}

	seq, err := NewScanner(Options{Source: rpc}).Run(context.Background())
	require.NoError(t, err)

	par, err := NewScanner(Options{Source: rpc, Workers: 8}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq.Total, par.Total)
	assert.Equal(t, seq.Decoded, par.Decoded)
	assert.Equal(t, seq.Findings, par.Findings)
	assert.Equal(t, seq.Failures, par.Failures)
	assert.NotZero(t, seq.ZeroPriceCount())
	assert.Len(t, seq.Failures, 6)
}

func TestScanner_ParallelCancelled(t *testing.T) {
	rpc := newStub()
	for i := 0; i < 16; i++ {
		rpc.AddAccount(fmt.Sprintf("acct%02d", i), dlmm.ProgramID, binArrayData(int64(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(Options{Source: rpc, Workers: 4}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	p, err = ParsePolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	programID := solana.MustPublicKey(dlmm.ProgramID)

	rpc := newStub()
	rpc.AddAccount("acct1", dlmm.ProgramID, binArrayData(3, 2, 40))
	rpc.AddAccount("foreign", "11111111111111111111111111111111", binArrayData(3))

	insp, err := Inspect(context.Background(), rpc, programID, "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), insp.BinArray.Index)
	assert.Equal(t, []int{2, 40}, insp.ZeroPrices)

	_, err = Inspect(context.Background(), rpc, programID, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = Inspect(context.Background(), rpc, programID, "foreign")
	assert.ErrorIs(t, err, ErrWrongOwner)
}
