// Package dto holds the JSON bodies of the HTTP API. Amounts travel as
// decimal strings so they survive clients without big integers.
package dto

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type DepositRequest struct {
	Caller    string `json:"caller"`
	AssetA    string `json:"asset_a"`
	AssetB    string `json:"asset_b"`
	DesiredA  string `json:"desired_a"`
	DesiredB  string `json:"desired_b"`
	MinA      string `json:"min_a,omitempty"`
	MinB      string `json:"min_b,omitempty"`
	Recipient string `json:"recipient"`
	Deadline  uint64 `json:"deadline"`
}

type WithdrawRequest struct {
	Caller    string `json:"caller"`
	AssetA    string `json:"asset_a"`
	AssetB    string `json:"asset_b"`
	Claim     string `json:"claim"`
	MinA      string `json:"min_a,omitempty"`
	MinB      string `json:"min_b,omitempty"`
	Recipient string `json:"recipient"`
	Deadline  uint64 `json:"deadline"`
}

type SwapRequest struct {
	Caller       string   `json:"caller"`
	AmountIn     string   `json:"amount_in"`
	MinAmountOut string   `json:"min_amount_out,omitempty"`
	Path         []string `json:"path"`
	Recipient    string   `json:"recipient"`
	Deadline     uint64   `json:"deadline"`
}

type ReconcileRequest struct {
	Caller string `json:"caller"`
	Asset  string `json:"asset"`
}

type TransferClaimsRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ApproveRequest struct {
	Owner  string `json:"owner"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type FaucetRequest struct {
	Owner  string `json:"owner"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

// PriceResponse carries an 18-decimal fixed-point price.
type PriceResponse struct {
	Price string `json:"price"`
}

type ReservesResponse struct {
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`
}

type PositionResponse struct {
	Owner       string `json:"owner"`
	Claims      string `json:"claims"`
	TotalSupply string `json:"total_supply"`
}

type DepositResponse struct {
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
	Claim   string `json:"claim"`
	Seq     uint64 `json:"seq"`
}

type WithdrawResponse struct {
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
	Seq     uint64 `json:"seq"`
}

type SwapResponse struct {
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Seq       uint64 `json:"seq"`
}

type ReconcileResponse struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Seq      uint64 `json:"seq"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
