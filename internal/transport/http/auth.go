package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

const bearerPrefix = "Bearer "

type identityKey struct{}

type credential struct {
	token   []byte
	address common.Address
}

// authenticated admits only requests carrying a configured bearer token and
// stores the address it authenticates in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.identify(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ammpool"`)
			s.writeError(w, r, errors.Wrap(apperrors.ErrUnauthenticated, "missing or unknown bearer token"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	}
}

// identify compares the token against every credential so the time taken does
// not depend on which one matched.
func (s *Server) identify(header string) (common.Address, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return common.Address{}, false
	}

	var (
		id    common.Address
		found bool
	)
	for _, c := range s.credentials {
		if subtle.ConstantTimeCompare([]byte(token), c.token) == 1 {
			id, found = c.address, true
		}
	}
	return id, found
}

// authorize fails unless the authenticated caller is acting as addr.
func authorize(ctx context.Context, addr common.Address) error {
	id, ok := ctx.Value(identityKey{}).(common.Address)
	if !ok {
		return errors.Wrap(apperrors.ErrUnauthenticated, "request is not authenticated")
	}
	if id != addr {
		return errors.Wrapf(apperrors.ErrUnauthorized, "token of %s cannot act as %s", id.Hex(), addr.Hex())
	}
	return nil
}
