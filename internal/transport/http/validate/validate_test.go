package validate

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	assetA = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	assetB = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

func getRequest(path string, params map[string]string) *http.Request {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return httptest.NewRequest(http.MethodGet, path+"?"+q.Encode(), nil)
}

func postRequest(path, body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
}

func TestQuoteRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		queryParams    map[string]string
		expectedStatus int
		wantErr        assert.ErrorAssertionFunc
	}{
		{
			name:           "valid request",
			queryParams:    map[string]string{"amount_in": "10", "reserve_in": "100", "reserve_out": "200"},
			expectedStatus: 0,
			wantErr:        assert.NoError,
		},
		{
			name:           "zero amount is left to the pool",
			queryParams:    map[string]string{"amount_in": "0", "reserve_in": "100", "reserve_out": "200"},
			expectedStatus: 0,
			wantErr:        assert.NoError,
		},
		{
			name:           "missing reserve",
			queryParams:    map[string]string{"amount_in": "10", "reserve_in": "100"},
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "negative amount",
			queryParams:    map[string]string{"amount_in": "-10", "reserve_in": "100", "reserve_out": "200"},
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "not a number",
			queryParams:    map[string]string{"amount_in": "1e18", "reserve_in": "100", "reserve_out": "200"},
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, code, err := QuoteRequestValidate(getRequest("/quote", tt.queryParams))
			tt.wantErr(t, err)
			assert.Equal(t, tt.expectedStatus, code)
			if err == nil {
				require.NotNil(t, got)
				assert.Equal(t, tt.queryParams["amount_in"], got.AmountIn.String())
			}
		})
	}
}

func TestPairRequestValidate(t *testing.T) {
	t.Parallel()

	got, code, err := PairRequestValidate(getRequest("/price", map[string]string{"asset_a": assetA, "asset_b": assetB}))
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, common.HexToAddress(assetA), got.AssetA)
	require.Equal(t, common.HexToAddress(assetB), got.AssetB)

	_, code, err = PairRequestValidate(getRequest("/price", map[string]string{"asset_a": assetA, "asset_b": "0x123"}))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)

	_, code, err = PairRequestValidate(getRequest("/price", map[string]string{"asset_a": assetA}))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRecordsRequestValidate(t *testing.T) {
	t.Parallel()

	got, _, err := RecordsRequestValidate(getRequest("/records", nil))
	require.NoError(t, err)
	require.Zero(t, got.From)
	require.Zero(t, got.Limit)

	got, _, err = RecordsRequestValidate(getRequest("/records", map[string]string{"from": "7", "limit": "20"}))
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.From)
	require.Equal(t, 20, got.Limit)

	for _, params := range []map[string]string{{"from": "-1"}, {"limit": "-1"}, {"limit": "many"}} {
		_, code, err := RecordsRequestValidate(getRequest("/records", params))
		require.Error(t, err)
		require.Equal(t, http.StatusBadRequest, code)
	}
}

func TestDepositRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantErr        assert.ErrorAssertionFunc
	}{
		{
			name: "valid request",
			body: `{"caller":"` + owner + `","asset_a":"` + assetA + `","asset_b":"` + assetB +
				`","desired_a":"1000","desired_b":"2000","min_a":"900","recipient":"` + owner + `","deadline":1700000000}`,
			wantErr: assert.NoError,
		},
		{
			name:           "bad json",
			body:           `{"caller":`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "unknown field",
			body:           `{"caller":"` + owner + `","pool":"x"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name: "missing desired amount",
			body: `{"caller":"` + owner + `","asset_a":"` + assetA + `","asset_b":"` + assetB +
				`","desired_a":"1000","recipient":"` + owner + `"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name: "bad recipient",
			body: `{"caller":"` + owner + `","asset_a":"` + assetA + `","asset_b":"` + assetB +
				`","desired_a":"1000","desired_b":"2000","recipient":"nobody"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, code, err := DepositRequestValidate(postRequest("/deposit", tt.body))
			tt.wantErr(t, err)
			assert.Equal(t, tt.expectedStatus, code)
			if err == nil {
				require.NotNil(t, got)
				assert.Equal(t, "1000", got.DesiredA.String())
				assert.Equal(t, "900", got.MinA.String())
				assert.Nil(t, got.MinB)
				assert.Equal(t, uint64(1_700_000_000), got.Deadline)
			}
		})
	}
}

func TestSwapRequestValidate(t *testing.T) {
	t.Parallel()

	body := `{"caller":"` + owner + `","amount_in":"5","path":["` + assetA + `","` + assetB + `"],"recipient":"` + owner + `","deadline":1}`
	got, code, err := SwapRequestValidate(postRequest("/swap", body))
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, []common.Address{common.HexToAddress(assetA), common.HexToAddress(assetB)}, got.Path)
	require.Nil(t, got.MinAmountOut)

	// A single-hop path is passed through for the pool to reject.
	body = `{"caller":"` + owner + `","amount_in":"5","path":["` + assetA + `"],"recipient":"` + owner + `"}`
	got, _, err = SwapRequestValidate(postRequest("/swap", body))
	require.NoError(t, err)
	require.Len(t, got.Path, 1)

	body = `{"caller":"` + owner + `","amount_in":"5","path":["` + assetA + `","bad"],"recipient":"` + owner + `"}`
	_, code, err = SwapRequestValidate(postRequest("/swap", body))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestWithdrawAndClaimRequestsValidate(t *testing.T) {
	t.Parallel()

	w, _, err := WithdrawRequestValidate(postRequest("/withdraw",
		`{"caller":"`+owner+`","asset_a":"`+assetA+`","asset_b":"`+assetB+`","claim":"10","recipient":"`+owner+`"}`))
	require.NoError(t, err)
	require.Equal(t, "10", w.Claim.String())

	_, code, err := WithdrawRequestValidate(postRequest("/withdraw",
		`{"caller":"`+owner+`","asset_a":"`+assetA+`","asset_b":"`+assetB+`","recipient":"`+owner+`"}`))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)

	tc, _, err := TransferClaimsRequestValidate(postRequest("/claims/transfer",
		`{"from":"`+owner+`","to":"`+assetA+`","amount":"3"}`))
	require.NoError(t, err)
	require.Equal(t, "3", tc.Amount.String())

	rc, _, err := ReconcileRequestValidate(postRequest("/reconcile", `{"caller":"`+owner+`","asset":"`+assetA+`"}`))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(assetA), rc.Asset)

	ap, _, err := ApproveRequestValidate(postRequest("/approve", `{"owner":"`+owner+`","asset":"`+assetA+`","amount":"1"}`))
	require.NoError(t, err)
	require.Equal(t, "1", ap.Amount.String())

	_, code, err = FaucetRequestValidate(postRequest("/faucet", `{"owner":"`+owner+`","asset":"`+assetA+`"}`))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestPositionAndBalanceRequestValidate(t *testing.T) {
	t.Parallel()

	pos, _, err := PositionRequestValidate(getRequest("/position", map[string]string{"owner": owner}))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(owner), pos.Owner)

	_, code, err := PositionRequestValidate(getRequest("/position", nil))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, code)

	bal, _, err := BalanceRequestValidate(getRequest("/balance", map[string]string{"owner": owner, "asset": assetB}))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(assetB), bal.Asset)
}
