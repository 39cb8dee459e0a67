package entity

// FundingRequest charges a payer's saved instrument.
// InstrumentID is optional; when empty the preferred instrument is used.
type FundingRequest struct {
	Amount       int64
	Currency     string
	CustomerID   string
	InstrumentID string
}

// ChargeRequest is what the processor receives for a confirmed off-session charge.
type ChargeRequest struct {
	Amount       int64
	Currency     string
	CustomerID   string
	InstrumentID string
}

// TransferRequest moves platform balance to a connected account.
type TransferRequest struct {
	Amount      int64
	Currency    string
	Destination string
}

// PayoutRequest moves a balance to an external bank destination.
// A connected-account destination pays out that account's own balance.
type PayoutRequest struct {
	Amount      int64
	Currency    string
	Destination string
}

// AccountSpec describes a new express connected account.
type AccountSpec struct {
	Email   string
	Country string
}

// OnboardingLink is a single-use hosted onboarding URL.
type OnboardingLink struct {
	URL        string
	RefreshURL string
	ReturnURL  string
}
