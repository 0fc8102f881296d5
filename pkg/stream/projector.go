package stream

import (
	"fmt"
	"strings"

	"github.com/calamus-finance/calamus-sdk-go/pkg/model"
	"github.com/calamus-finance/calamus-sdk-go/pkg/units"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReleaseRateLabel formats the release rate of a stream. Without a token
// symbol the rate keeps four decimals ("0.0116 / 1 Day(s)"); with one it
// keeps two and names the token ("0.01 BUSD / 1 Day(s)").
func ReleaseRateLabel(rate decimal.Decimal, count int64, unit model.Frequency, symbol string, labeled bool) string {
	if !labeled {
		return fmt.Sprintf("%s / %d %s", rate.StringFixed(4), count, unit.Label())
	}
	return fmt.Sprintf("%s %s / %d %s", rate.StringFixed(2), strings.ToUpper(symbol), count, unit.Label())
}

// Project converts a raw stream into its display form using decimals for
// every amount. Metadata fields stay empty until Merge. The direction is
// Outgoing when account is the stream's sender and Incoming otherwise.
func Project(s *model.Stream, decimals int32, chain string, account string, now int64) model.DisplayStream {
	d := model.DisplayStream{
		StreamID:             s.ID.Int64(),
		Recipient:            strings.ToLower(s.Recipient.Hex()),
		Sender:               strings.ToLower(s.Sender.Hex()),
		TokenAddress:         strings.ToLower(s.TokenAddress.Hex()),
		Chain:                chain,
		Type:                 model.Incoming,
		Status:               DeriveStatus(s.Status, s.StartTime, s.StopTime, now),
		OriginStatus:         s.Status,
		StartTime:            s.StartTime,
		StopTime:             s.StopTime,
		ReleaseFrequency:     s.ReleaseFrequency,
		ReleaseFrequencyType: s.ReleaseFrequencyType,
		TransferPrivilege:    s.TransferPrivilege,
		CancelPrivilege:      s.CancelPrivilege,
		InitialRelease:       decimal.NewFromInt(s.VestingRelease).Div(hundred).StringFixed(2),
	}
	if account != "" && strings.EqualFold(account, s.Sender.Hex()) {
		d.Type = model.Outgoing
	}
	convertAmounts(&d, s, decimals)
	d.ReleaseRate = ReleaseRateLabel(d.RatePerTime, d.ReleaseFrequency, d.ReleaseFrequencyType, "", false)
	return d
}

// Merge copies off-chain metadata into d and switches the release rate to
// the token-qualified label. When the metadata declares a different,
// positive token precision the amounts are converted again from s with it.
func Merge(d *model.DisplayStream, s *model.Stream, r model.Recipient) {
	d.ContractTitle = r.ContractTitle
	d.EmailAddress = r.EmailAddress
	d.TokenAbbr = r.TokenAbbr
	d.TokenLogo = r.TokenLogo
	d.TokenDecimal = r.TokenDecimal
	d.TokenID = r.TokenID
	d.IsVesting = r.IsVesting
	d.Chain = r.Chain
	d.TrxHash = r.TrxHash

	if r.TokenDecimal > 0 && r.TokenDecimal != d.Decimals() {
		convertAmounts(d, s, r.TokenDecimal)
	}
	d.ReleaseRate = ReleaseRateLabel(d.RatePerTime, d.ReleaseFrequency, d.ReleaseFrequencyType, r.TokenAbbr, true)
}

func convertAmounts(d *model.DisplayStream, s *model.Stream, decimals int32) {
	d.SetDecimals(decimals)
	d.RatePerTime = units.MustToDecimal(s.RatePerTime, decimals)
	d.ReleaseAmount = units.MustToDecimal(s.ReleaseAmount, decimals)
	d.RemainingBalance = units.MustToDecimal(s.RemainingBalance, decimals)
	d.WithdrawAmount = d.ReleaseAmount.Sub(d.RemainingBalance)
}
