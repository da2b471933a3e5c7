package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenPair is what a successful login returns
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

type TokenServiceOption func(*TokenServiceImpl)

// WithTokenTTL overrides token lifetimes, zero values keep the defaults
func WithTokenTTL(access, refresh time.Duration) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if access > 0 {
			ts.accessTTL = access
		}
		if refresh > 0 {
			ts.refreshTTL = refresh
		}
	}
}

func WithIssuer(issuer string) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.issuer = issuer
	}
}

// WithClock sets the time source used to issue and verify tokens
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(logger)
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, opts ...TokenServiceOption) *TokenServiceImpl {
	ts := &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  DefaultAccessTokenTTL,
		refreshTTL: DefaultRefreshTokenTTL,
		now:        time.Now,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// Issue signs a token of the given kind for subjectID
func (ts *TokenServiceImpl) Issue(subjectID string, kind TokenKind) (string, error) {
	if subjectID == "" {
		return "", goerrors.New("token subject must not be empty", goerrors.CategoryInternal)
	}
	if !kind.Valid() {
		return "", goerrors.New(fmt.Sprintf("unknown token kind %q", kind), goerrors.CategoryInternal)
	}

	ttl := ts.accessTTL
	if kind == TokenKindRefresh {
		ttl = ts.refreshTTL
	}

	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:  subjectID,
		Kind: kind,
	}

	return ts.signClaims(claims)
}

// IssuePair signs an access and a refresh token for subjectID
func (ts *TokenServiceImpl) IssuePair(subjectID string) (*TokenPair, error) {
	access, err := ts.Issue(subjectID, TokenKindAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := ts.Issue(subjectID, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (ts *TokenServiceImpl) signClaims(claims *Claims) (string, error) {

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Verify parses raw and returns its claims. Every failure, expired,
// tampered or malformed, is reported as ErrTokenInvalid.
func (ts *TokenServiceImpl) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			ts.logger.Debug("token verify rejected expired token")
		} else {
			ts.logger.Debug("token verify rejected token", "error", err)
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// now must be strictly before exp
	if claims.ExpiresAt == nil || !ts.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenInvalid
	}

	if claims.UserID() == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyKind verifies raw and checks it was issued as kind
func (ts *TokenServiceImpl) VerifyKind(raw string, kind TokenKind) (*Claims, error) {
	claims, err := ts.Verify(raw)
	if err != nil {
		return nil, err
	}

	if claims.Kind != kind {
		ts.logger.Debug("token verify rejected kind", "expected", kind, "got", claims.Kind)
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Refresh exchanges a refresh token for a new access token for the same
// subject. The refresh token itself stays valid until it expires.
func (ts *TokenServiceImpl) Refresh(refreshToken string) (string, error) {
	claims, err := ts.VerifyKind(refreshToken, TokenKindRefresh)
	if err != nil {
		return "", err
	}
	return ts.Issue(claims.UserID(), TokenKindAccess)
}

// AccessTTL returns the configured access token lifetime
func (ts *TokenServiceImpl) AccessTTL() time.Duration {
	return ts.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime
func (ts *TokenServiceImpl) RefreshTTL() time.Duration {
	return ts.refreshTTL
}
