package validate

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	svcdto "github.com/fleshka4/ammpool/internal/service/dto"
	"github.com/fleshka4/ammpool/internal/transport/http/dto"
)

const maxBodySize = 1 << 20

func address(name, v string) (common.Address, error) {
	if v == "" {
		return common.Address{}, errors.Errorf("missing %s", name)
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, errors.Errorf("bad %s address format", name)
	}
	return common.HexToAddress(v), nil
}

// amount parses a non-negative decimal. An empty optional amount is nil.
func amount(name, v string, required bool) (*big.Int, error) {
	if v == "" {
		if required {
			return nil, errors.Errorf("missing %s", name)
		}
		return nil, nil
	}
	a, ok := new(big.Int).SetString(v, 10)
	if !ok || a.Sign() < 0 {
		return nil, errors.Errorf("bad %s", name)
	}
	return a, nil
}

func decode(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "bad json body")
	}
	return nil
}

type fields struct {
	err error
}

func (f *fields) address(name, v string) common.Address {
	if f.err != nil {
		return common.Address{}
	}
	a, err := address(name, v)
	f.err = err
	return a
}

func (f *fields) amount(name, v string, required bool) *big.Int {
	if f.err != nil {
		return nil
	}
	a, err := amount(name, v, required)
	f.err = err
	return a
}

func (f *fields) query(q url.Values, name string) common.Address {
	return f.address(name, q.Get(name))
}

// QuoteRequestValidate validates /quote request and returns dto.
func QuoteRequestValidate(r *http.Request) (*svcdto.QuoteRequest, int, error) {
	q := r.URL.Query()
	var f fields
	req := &svcdto.QuoteRequest{
		AmountIn:   f.amount("amount_in", q.Get("amount_in"), true),
		ReserveIn:  f.amount("reserve_in", q.Get("reserve_in"), true),
		ReserveOut: f.amount("reserve_out", q.Get("reserve_out"), true),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

// PairRequestValidate validates /price and /reserves requests.
func PairRequestValidate(r *http.Request) (*svcdto.PairRequest, int, error) {
	q := r.URL.Query()
	var f fields
	req := &svcdto.PairRequest{
		AssetA: f.query(q, "asset_a"),
		AssetB: f.query(q, "asset_b"),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

// RecordsRequestValidate validates /records request. Both parameters are
// optional.
func RecordsRequestValidate(r *http.Request) (*svcdto.RecordsRequest, int, error) {
	q := r.URL.Query()
	req := &svcdto.RecordsRequest{}
	if v := q.Get("from"); v != "" {
		from, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("bad from")
		}
		req.From = from
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, http.StatusBadRequest, errors.New("bad limit")
		}
		req.Limit = limit
	}
	return req, 0, nil
}

func PositionRequestValidate(r *http.Request) (*svcdto.PositionRequest, int, error) {
	owner, err := address("owner", r.URL.Query().Get("owner"))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &svcdto.PositionRequest{Owner: owner}, 0, nil
}

func BalanceRequestValidate(r *http.Request) (*svcdto.BalanceRequest, int, error) {
	q := r.URL.Query()
	var f fields
	req := &svcdto.BalanceRequest{
		Owner: f.query(q, "owner"),
		Asset: f.query(q, "asset"),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

// DepositRequestValidate validates /deposit body and returns dto.
func DepositRequestValidate(r *http.Request) (*svcdto.DepositRequest, int, error) {
	var body dto.DepositRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.DepositRequest{
		Caller:    f.address("caller", body.Caller),
		AssetA:    f.address("asset_a", body.AssetA),
		AssetB:    f.address("asset_b", body.AssetB),
		DesiredA:  f.amount("desired_a", body.DesiredA, true),
		DesiredB:  f.amount("desired_b", body.DesiredB, true),
		MinA:      f.amount("min_a", body.MinA, false),
		MinB:      f.amount("min_b", body.MinB, false),
		Recipient: f.address("recipient", body.Recipient),
		Deadline:  body.Deadline,
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

func WithdrawRequestValidate(r *http.Request) (*svcdto.WithdrawRequest, int, error) {
	var body dto.WithdrawRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.WithdrawRequest{
		Caller:    f.address("caller", body.Caller),
		AssetA:    f.address("asset_a", body.AssetA),
		AssetB:    f.address("asset_b", body.AssetB),
		Claim:     f.amount("claim", body.Claim, true),
		MinA:      f.amount("min_a", body.MinA, false),
		MinB:      f.amount("min_b", body.MinB, false),
		Recipient: f.address("recipient", body.Recipient),
		Deadline:  body.Deadline,
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

// SwapRequestValidate validates /swap body. Path length is checked by the
// pool so that it reports invalid_path.
func SwapRequestValidate(r *http.Request) (*svcdto.SwapRequest, int, error) {
	var body dto.SwapRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.SwapRequest{
		Caller:       f.address("caller", body.Caller),
		AmountIn:     f.amount("amount_in", body.AmountIn, true),
		MinAmountOut: f.amount("min_amount_out", body.MinAmountOut, false),
		Recipient:    f.address("recipient", body.Recipient),
		Deadline:     body.Deadline,
	}
	for _, hop := range body.Path {
		req.Path = append(req.Path, f.address("path", hop))
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

func ReconcileRequestValidate(r *http.Request) (*svcdto.ReconcileRequest, int, error) {
	var body dto.ReconcileRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.ReconcileRequest{
		Caller: f.address("caller", body.Caller),
		Asset:  f.address("asset", body.Asset),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

func TransferClaimsRequestValidate(r *http.Request) (*svcdto.TransferClaimsRequest, int, error) {
	var body dto.TransferClaimsRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.TransferClaimsRequest{
		From:   f.address("from", body.From),
		To:     f.address("to", body.To),
		Amount: f.amount("amount", body.Amount, true),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

func ApproveRequestValidate(r *http.Request) (*svcdto.ApproveRequest, int, error) {
	var body dto.ApproveRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.ApproveRequest{
		Owner:  f.address("owner", body.Owner),
		Asset:  f.address("asset", body.Asset),
		Amount: f.amount("amount", body.Amount, true),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}

func FaucetRequestValidate(r *http.Request) (*svcdto.FaucetRequest, int, error) {
	var body dto.FaucetRequest
	if err := decode(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var f fields
	req := &svcdto.FaucetRequest{
		Owner:  f.address("owner", body.Owner),
		Asset:  f.address("asset", body.Asset),
		Amount: f.amount("amount", body.Amount, true),
	}
	if f.err != nil {
		return nil, http.StatusBadRequest, f.err
	}
	return req, 0, nil
}
