package stf

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/chain"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/state"
	"github.com/olrollup/ol-stf/xhash"
)

// BuildGenesisBlock constructs the genesis OL block from params.Genesis: a
// CreateAccount transaction per configured account, slot/epoch/timestamp
// taken from params (a zero timestamp becomes 1), and a zero parent id (there is no real
// predecessor). The header's StateRoot is left zero; callers that want it
// populated should run the result through ApplyGenesisBlock and restamp it,
// exactly as a non-genesis block's producer would.
func BuildGenesisBlock(params chain.Params) block.Block {
	txs := make([]block.Tx, 0, len(params.Genesis.Accounts))
	for _, ga := range params.Genesis.Accounts {
		txs = append(txs, block.Tx{
			CreateAccount: &block.CreateAccountTx{
				Target: ga.AccountID(),
				Initial: ledger.AccountState{
					Balance: bitcoinamount.Amount(ga.Balance),
					Type:    ledger.AccountTypeSnark,
					Snark:   &ledger.SnarkState{},
				},
			},
		})
	}

	body := block.Body{Transactions: txs}
	header := block.Header{
		Timestamp: genesisTimestamp(params),
		Slot:      params.Genesis.Slot,
		Epoch:     params.Genesis.Epoch,
		Parent:    xhash.Zero,
		BodyRoot:  body.Root(),
	}
	return block.Block{Header: header, Body: body}
}

func genesisTimestamp(params chain.Params) uint64 {
	if params.Genesis.Timestamp == 0 {
		return 1
	}
	return params.Genesis.Timestamp
}

// ApplyGenesisBlock seeds state from the genesis block and returns its
// computed root, exactly like ProcessBlock's steps 4/6/7 — but without
// step 1's header-chain check, since genesis has no real predecessor to
// chain from (spec §9, Open Questions: "genesis block semantics ... MUST
// be fixed by parameters, not code"). Body-root commitment (step 2) is
// still enforced: genesis's wire shape is not exempt from self-consistency.
func ApplyGenesisBlock(params chain.Params, genesisBlock block.Block, accessor state.Accessor) (ProcessBlockResult, error) {
	if err := checkBodyRoot(genesisBlock); err != nil {
		return ProcessBlockResult{}, err
	}

	accessor.SetCurSlot(genesisBlock.Header.Slot)
	accessor.SetCurEpoch(genesisBlock.Header.Epoch)

	for _, tx := range genesisBlock.Body.Transactions {
		if err := applyTx(tx, accessor, nil); err != nil {
			return ProcessBlockResult{}, err
		}
	}

	root := accessor.ComputeStateRoot()
	accessor.SetAccountsRoot(accessor.LedgerRoot())
	return ProcessBlockResult{ComputedStateRoot: root}, nil
}
