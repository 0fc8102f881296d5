package config

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeCurrency describes a chain's native coin.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// ChainInfo is one entry of the chain table: where the Calamus contract
// lives on a chain and how to reach the chain and its subgraph.
type ChainInfo struct {
	Key              string         `json:"key"`
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	ContractAddress  common.Address `json:"contract_address"`
	RPCURL           string         `json:"rpc_url"`
	WSSAddress       string         `json:"wss_address"`
	BlockExplorerURL string         `json:"block_explorer_url"`
	SubgraphURL      string         `json:"subgraph_url"`
	NativeCurrency   NativeCurrency `json:"native_currency"`
}

// ChainID returns ID as a *big.Int for EIP-155 signing.
func (c ChainInfo) ChainID() *big.Int {
	return big.NewInt(c.ID)
}

// IsNative reports whether token designates the chain's native currency.
// Both the zero address (used by the subgraph) and the Calamus contract
// address (used by token resolution) mean native.
func (c ChainInfo) IsNative(token common.Address) bool {
	return token == (common.Address{}) || token == c.ContractAddress
}

// mainChains and testChains are read only; use Lookup.
var mainChains = map[string]ChainInfo{
	"bnb": {
		Key:              "bnb",
		ID:               56,
		Name:             "Bnb Mainnet",
		ContractAddress:  common.HexToAddress("0x39A7545D5043be7E1C170925c41494383Dd7f5b1"),
		RPCURL:           "https://bsc-dataseed.binance.org/",
		WSSAddress:       "https://bsc-dataseed1.binance.org",
		BlockExplorerURL: "https://bscscan.com",
		SubgraphURL:      "https://api.thegraph.com/subgraphs/name/nghiattbss/calamus-bsc",
		NativeCurrency:   NativeCurrency{Name: "Binance Coin", Symbol: "BNB", Decimals: 18},
	},
}

var testChains = map[string]ChainInfo{
	"bnb": {
		Key:              "bnb",
		ID:               97,
		Name:             "Bnb Testnet",
		ContractAddress:  common.HexToAddress("0x599B507bcfC75C08dF2726Cb6EC533cef74a4E04"),
		RPCURL:           "https://data-seed-prebsc-1-s1.binance.org:8545/",
		WSSAddress:       "https://data-seed-prebsc-1-s3.binance.org:8545",
		BlockExplorerURL: "https://testnet.bscscan.com",
		SubgraphURL:      "https://api-bnb.calamus.finance/subgraphs/name/calamus-chapel",
		NativeCurrency:   NativeCurrency{Name: "Binance Test Coin", Symbol: "tBNB", Decimals: 18},
	},
}

// Lookup returns the chain table entry for key on mainnet or testnet.
func Lookup(key string, testnet bool) (ChainInfo, bool) {
	table := mainChains
	if testnet {
		table = testChains
	}
	info, ok := table[strings.ToLower(key)]
	return info, ok
}

// Chains returns the keys available on mainnet or testnet.
func Chains(testnet bool) []string {
	table := mainChains
	if testnet {
		table = testChains
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	return keys
}
