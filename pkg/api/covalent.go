package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calamus-finance/calamus-sdk-go/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrTokenNotHeld is returned by ResolveToken when the account holds no
// balance of the requested token.
var ErrTokenNotHeld = errors.New("token not held by account")

// nativeSymbols maps the ticker Covalent reports for a chain's native coin
// to the chain key whose Calamus contract address designates it.
var nativeSymbols = map[string]string{
	"BNB":    "bnb",
	"BNBT":   "bnb",
	"MATIC":  "polygon",
	"PHOTON": "evmos",
}

// CovalentClient reads token balances from the Covalent API.
type CovalentClient struct {
	BaseURL string
	Key     string
	Testnet bool
	HTTP    *http.Client
}

// NewCovalentClient returns a client for baseURL authenticated with key.
// testnet selects which chain table resolves native tickers.
func NewCovalentClient(baseURL, key string, testnet bool, timeout time.Duration) *CovalentClient {
	return &CovalentClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Testnet: testnet,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// BalanceItem is one entry of a balances_v2 response.
type BalanceItem struct {
	ContractAddress      string  `json:"contract_address"`
	ContractName         string  `json:"contract_name"`
	ContractTickerSymbol string  `json:"contract_ticker_symbol"`
	ContractDecimals     int32   `json:"contract_decimals"`
	LogoURL              string  `json:"logo_url"`
	Balance              string  `json:"balance"`
	Quote                float64 `json:"quote"`
}

type balancesResponse struct {
	Data struct {
		Items []BalanceItem `json:"items"`
	} `json:"data"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// ResolvedToken is a token held by an account.
type ResolvedToken struct {
	ChainID  int64
	Address  common.Address
	Name     string
	Abbr     string
	Decimals int32
	Logo     string
	Balance  string
	Quote    float64
}

// Balances returns the token balances of account on chainID.
func (c *CovalentClient) Balances(ctx context.Context, chainID int64, account common.Address) ([]BalanceItem, error) {
	q := url.Values{}
	q.Set("quote-currency", "USD")
	q.Set("format", "JSON")
	q.Set("nft", "false")
	q.Set("no-nft-fetch", "false")
	q.Set("key", c.Key)
	u := fmt.Sprintf("%s/v1/%d/address/%s/balances_v2/?%s", c.BaseURL, chainID, strings.ToLower(account.Hex()), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out balancesResponse
	if err := doJSON(c.HTTP, req, &out); err != nil {
		return nil, err
	}
	if out.Error {
		return nil, fmt.Errorf("covalent: %s", out.ErrorMessage)
	}
	return out.Data.Items, nil
}

// ResolveToken finds token among the balances of account. Native coin
// tickers are mapped to the Calamus contract address of their chain when
// that chain is configured, which is how the contract designates native
// currency.
func (c *CovalentClient) ResolveToken(ctx context.Context, chainID int64, account, token common.Address) (*ResolvedToken, error) {
	items, err := c.Balances(ctx, chainID, account)
	if err != nil {
		return nil, err
	}

	var found *ResolvedToken
	for _, it := range items {
		if !strings.EqualFold(it.ContractAddress, token.Hex()) {
			continue
		}
		addr := common.HexToAddress(it.ContractAddress)
		if key, ok := nativeSymbols[it.ContractTickerSymbol]; ok {
			if info, ok := config.Lookup(key, c.Testnet); ok {
				addr = info.ContractAddress
			}
		}
		found = &ResolvedToken{
			ChainID:  chainID,
			Address:  addr,
			Name:     it.ContractName,
			Abbr:     it.ContractTickerSymbol,
			Decimals: it.ContractDecimals,
			Logo:     it.LogoURL,
			Balance:  it.Balance,
			Quote:    it.Quote,
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotHeld, token.Hex())
	}
	zap.L().Debug("token resolved",
		zap.String("token", token.Hex()),
		zap.String("resolved", found.Address.Hex()),
		zap.String("symbol", found.Abbr))
	return found, nil
}
