package tokens

import (
	"errors"
	"strings"
	"time"
)

// ResolutionKind tags the outcome of token resolution. Modelling the
// DB-then-signature priority as one tagged variant keeps the order
// auditable and testable away from HTTP concerns.
type ResolutionKind int

const (
	// ResolutionDbBacked means the store returned a row; expiry and quota
	// are still the caller's to enforce against the record.
	ResolutionDbBacked ResolutionKind = iota
	// ResolutionStateless means the signature checked out and the token is
	// unexpired; no use-count enforcement is possible on this path.
	ResolutionStateless
	// ResolutionExpired means the token was structurally valid (signed)
	// but past its expiry.
	ResolutionExpired
	// ResolutionInvalid means no verification path accepted the token and
	// the store cleanly reported absence.
	ResolutionInvalid
	// ResolutionUnavailable means the store could not be reached and the
	// stateless fallback did not validate either: the token's true status
	// is unknown, which is not the same as "never existed".
	ResolutionUnavailable
)

type Resolution struct {
	Kind      ResolutionKind
	Record    *TokenWithBiodata
	Filename  string
	ExpiresAt time.Time
}

// Resolve decides what a caller-presented token is, in strict priority
// order: DB lookup first, stateless signature verification only when the
// lookup yields no record. A lookup failure falls through rather than
// rejecting, because absence may mean degraded-mode issuance.
func (s *TokenService) Resolve(token string) Resolution {
	record, err := s.repository.FindByToken(token)
	storeUnavailable := err != nil
	if storeUnavailable {
		s.logger.Warn("token store lookup failed, trying stateless fallback", "error", err)
	}

	if record != nil {
		return Resolution{Kind: ResolutionDbBacked, Record: record}
	}

	if strings.Count(token, ".") == 1 {
		filename, expiresAt, verifyErr := s.codec.Verify(token)

		switch {
		case verifyErr == nil:
			return Resolution{
				Kind:      ResolutionStateless,
				Filename:  filename,
				ExpiresAt: expiresAt,
			}
		case errors.Is(verifyErr, ErrTokenExpired):
			return Resolution{Kind: ResolutionExpired, Filename: filename, ExpiresAt: expiresAt}
		}
	}

	if storeUnavailable {
		return Resolution{Kind: ResolutionUnavailable}
	}

	return Resolution{Kind: ResolutionInvalid}
}
