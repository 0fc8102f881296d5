package model

// Recipient is the off-chain metadata the Calamus API keeps for a stream.
// JSON tags follow the /api/recipient/get-recipients wire format.
type Recipient struct {
	StreamID      int64  `json:"stream_id"`
	ContractTitle string `json:"contract_title"`
	EmailAddress  string `json:"email_address"`
	TokenAbbr     string `json:"token_abbr"`
	TokenLogo     string `json:"token_logo"`
	TokenDecimal  int32  `json:"token_decimal"`
	TokenID       string `json:"token_id"`
	IsVesting     bool   `json:"is_vesting"`
	Chain         string `json:"chain"`
	TrxHash       string `json:"trx_hash"`
}

// Token describes a token as returned by the /api/token/get endpoint.
type Token struct {
	TokenAddress string `json:"tokenAddress"`
	TokenAbbr    string `json:"tokenAbbr"`
	TokenLogo    string `json:"tokenLogo"`
	TokenDecimal int32  `json:"tokenDecimal"`
}
