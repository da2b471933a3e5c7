package auth

import (
	"context"
	"errors"
)

// LoginMode selects what a successful login returns
type LoginMode string

const (
	// LoginModePair returns an access and a refresh token
	LoginModePair LoginMode = "pair"
	// LoginModeLegacy returns a single access token as {token}
	LoginModeLegacy LoginMode = "legacy"
)

// LoginResult holds the tokens of a successful login. RefreshToken is
// empty in legacy mode.
type LoginResult struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// Auther orchestrates credential checks and token issuance
type Auther struct {
	credentials  Credentials
	tokenService TokenService
	mode         LoginMode
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Auther in pair mode
func NewAuthenticator(credentials Credentials, tokenService TokenService) *Auther {
	return &Auther{
		credentials:  credentials,
		tokenService: tokenService,
		mode:         LoginModePair,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithLoginMode sets the login response mode, unknown values fall back to pair
func (s *Auther) WithLoginMode(mode LoginMode) *Auther {
	if mode != LoginModeLegacy {
		mode = LoginModePair
	}
	s.mode = mode
	return s
}

// Mode returns the configured login mode
func (s *Auther) Mode() LoginMode {
	return s.mode
}

// TokenService returns the TokenService used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login checks the credentials and issues tokens. Unknown email and wrong
// password both fail with ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("Login find user error", "error", err)
			return nil, err
		}
		// burn a comparison so unknown emails are not faster
		s.credentials.VerifyPassword(nil, password)
		s.emitLoginFailure(ctx, "", "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if !s.credentials.VerifyPassword(user, password) {
		s.emitLoginFailure(ctx, user.ID.String(), "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	userID := user.ID.String()
	result := &LoginResult{UserID: userID}

	if s.mode == LoginModeLegacy {
		result.AccessToken, err = s.tokenService.Issue(userID, TokenKindAccess)
	} else {
		var pair *TokenPair
		if pair, err = s.tokenService.IssuePair(userID); err == nil {
			result.AccessToken = pair.AccessToken
			result.RefreshToken = pair.RefreshToken
		}
	}
	if err != nil {
		s.logger.Error("Login issue token error", "error", err)
		return nil, err
	}

	emitActivity(ctx, s.activitySink, s.logger, ActivityEventLoginSuccess, userID, map[string]any{
		"mode": string(s.mode),
	})

	return result, nil
}

// Refresh exchanges a refresh token for a new access token
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshTokenMissing
	}

	access, err := s.tokenService.Refresh(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			return "", ErrRefreshTokenInvalid
		}
		return "", err
	}

	var userID string
	if claims, err := s.tokenService.VerifyKind(access, TokenKindAccess); err == nil {
		userID = claims.UserID()
	}
	emitActivity(ctx, s.activitySink, s.logger, ActivityEventRefresh, userID, nil)

	return access, nil
}

// Logout only records the event, tokens stay valid until they expire
func (s *Auther) Logout(ctx context.Context, userID string) {
	emitActivity(ctx, s.activitySink, s.logger, ActivityEventLogout, userID, nil)
}

// Profile loads the record of the authenticated subject
func (s *Auther) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := ProfileFromUser(user)
	return &profile, nil
}

func (s *Auther) emitLoginFailure(ctx context.Context, userID, reason string) {
	emitActivity(ctx, s.activitySink, s.logger, ActivityEventLoginFailure, userID, map[string]any{
		"reason": reason,
	})
}
