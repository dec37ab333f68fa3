package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/transport/http/dto"
	"github.com/fleshka4/ammpool/internal/transport/http/validate"
)

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		s.log.Warn("ping write error", zap.Error(err))
	}
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.QuoteRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	out, err := s.svc.Quote(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.AmountResponse{Amount: out.String()})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.PairRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	price, err := s.svc.Price(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.PriceResponse{Price: price.String()})
}

func (s *Server) handleReserves(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.PairRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Reserves(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.ReservesResponse{
		ReserveA: res.ReserveA.String(),
		ReserveB: res.ReserveB.String(),
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.RecordsRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	records, err := s.svc.Records(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewRecordsResponse(records))
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.PositionRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	pos, err := s.svc.Position(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.PositionResponse{
		Owner:       pos.Owner.Hex(),
		Claims:      pos.Claims.String(),
		TotalSupply: pos.TotalSupply.String(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.BalanceRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	balance, err := s.svc.Balance(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.AmountResponse{Amount: balance.String()})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.DepositRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Deposit(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.DepositResponse{
		AmountA: res.AmountA.String(),
		AmountB: res.AmountB.String(),
		Claim:   res.Claim.String(),
		Seq:     res.Record.Seq,
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.WithdrawRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Withdraw(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.WithdrawResponse{
		AmountA: res.AmountA.String(),
		AmountB: res.AmountB.String(),
		Seq:     res.Record.Seq,
	})
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.SwapRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Swap(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.SwapResponse{
		AmountIn:  res.AmountIn.String(),
		AmountOut: res.AmountOut.String(),
		Seq:       res.Record.Seq,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.ReconcileRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.svc.Reconcile(ctx, *req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.ReconcileResponse{
		Previous: res.Previous.String(),
		Current:  res.Current.String(),
		Seq:      res.Record.Seq,
	})
}

func (s *Server) handleTransferClaims(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.TransferClaimsRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.From); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.svc.TransferClaims(ctx, *req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.ApproveRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Owner); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.svc.Approve(ctx, *req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

func (s *Server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.FaucetRequestValidate(r)
	if err != nil {
		s.writeBadRequest(w, r, code, err)
		return
	}
	if err := authorize(r.Context(), req.Owner); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.svc.Faucet(ctx, *req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// statusOf maps the error taxonomy onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrReentrant):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperrors.Kind(err) == "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := dto.ErrorResponse{
		Error:     apperrors.Kind(err),
		Message:   err.Error(),
		RequestID: requestID(r.Context()),
	}
	if status == http.StatusInternalServerError || status == http.StatusGatewayTimeout {
		s.log.Error("request failed", zap.Error(err), zap.String("request_id", resp.RequestID))
		resp.Message = "internal error"
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code == 0 {
		code = http.StatusBadRequest
	}
	s.writeJSON(w, code, dto.ErrorResponse{
		Error:     "invalid_argument",
		Message:   err.Error(),
		RequestID: requestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response write error", zap.Error(err))
	}
}
