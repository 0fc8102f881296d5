package model

import (
	"github.com/shopspring/decimal"
)

// Direction of a stream relative to the account it was listed for.
const (
	Incoming = "Incoming"
	Outgoing = "Outgoing"
)

// DisplayStream is the display-ready projection of a Stream merged with its
// off-chain metadata. It is built per request and never persisted.
type DisplayStream struct {
	StreamID int64 `json:"streamId"`

	ContractTitle string `json:"contractTitle"`
	EmailAddress  string `json:"emailAddress"`
	Recipient     string `json:"recipient"`
	Sender        string `json:"sender"`
	TokenAddress  string `json:"tokenAddress"`
	TokenAbbr     string `json:"tokenAbbr"`
	TokenLogo     string `json:"tokenLogo"`
	TokenID       string `json:"tokenId"`
	TokenDecimal  int32  `json:"tokenDecimal"`
	IsVesting     bool   `json:"isVesting"`
	Chain         string `json:"chain"`
	TrxHash       string `json:"trxHash"`
	Type          string `json:"type"`

	Status       Status `json:"status"`
	OriginStatus int    `json:"originStatus"`
	StartTime    int64  `json:"startTime"`
	StopTime     int64  `json:"stopTime"`

	ReleaseAmount    decimal.Decimal `json:"releaseAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	WithdrawAmount   decimal.Decimal `json:"withdrawAmount"`
	RatePerTime      decimal.Decimal `json:"ratePerTime"`
	ReleaseRate      string          `json:"releaseRate"`
	InitialRelease   string          `json:"initialRelease"`

	ReleaseFrequency     int64     `json:"releaseFrequency"`
	ReleaseFrequencyType Frequency `json:"releaseFrequencyType"`
	TransferPrivilege    Privilege `json:"transferPrivilege"`
	CancelPrivilege      Privilege `json:"cancelPrivilege"`

	// decimals the amounts above were converted with
	decimals int32
}

// Decimals returns the precision the amounts of d were converted with.
func (d *DisplayStream) Decimals() int32 {
	return d.decimals
}

// SetDecimals records the precision used for the amounts of d.
func (d *DisplayStream) SetDecimals(decimals int32) {
	d.decimals = decimals
}
