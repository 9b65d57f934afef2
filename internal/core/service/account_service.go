package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// tokenTTL is the fixed lifetime of an issued bearer token.
const tokenTTL = 30 * time.Minute

const minPasswordLength = 8

// TokenConfig carries the signing material for bearer tokens.
type TokenConfig struct {
	Key      string
	Issuer   string
	Audience string
}

// AccountService implements registration, interactive sign-in/sign-out and
// API token issuance. Every sign-in attempt, interactive or programmatic, is
// appended to the audit log and committed before the call returns.
type AccountService struct {
	repo        ports.AccountRepository
	audit       ports.AuditLog
	sessions    ports.SessionStore
	lockout     ports.LockoutStore
	token       TokenConfig
	sessionTTL  time.Duration
	rememberTTL time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewAccountService(
	repo ports.AccountRepository,
	audit ports.AuditLog,
	sessions ports.SessionStore,
	lockout ports.LockoutStore,
	token TokenConfig,
	sessionTTL, rememberTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	return &AccountService{
		repo:        repo,
		audit:       audit,
		sessions:    sessions,
		lockout:     lockout,
		token:       token,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		log:         log,
		now:         time.Now,
	}
}

// Register creates the account and, when it is the first account ever
// created, grants it the administrator role. The first-account check is an
// atomic claim in the repository, so exactly one of any set of concurrent
// registrations wins the grant. A failed grant is reported on the result but
// never undoes the creation.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if descs := passwordPolicyViolations(in.Password); len(descs) > 0 {
		return nil, &domain.CredentialError{Descriptions: descs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	res := &ports.RegisterResult{Account: created}

	first, err := s.repo.ClaimFirstAccount(ctx, created.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("username", created.Username).Msg("first-account claim failed")
		return res, nil
	}
	if !first {
		return res, nil
	}

	if err := s.repo.AddRole(ctx, created.ID, domain.RoleAdministrator); err != nil {
		res.RoleGrantErrors = []string{"failed to grant the administrator role", err.Error()}
		s.log.Error().Err(err).Str("username", created.Username).Msg("administrator grant failed")
		return res, nil
	}

	res.BootstrapAdmin = true
	s.log.Info().Str("username", created.Username).Msg("bootstrap administrator granted")
	return res, nil
}

// SignIn runs the interactive login flow: lockout and account-state checks,
// password verification with lockout bookkeeping, one audit record, and on
// success a fresh session.
func (s *AccountService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.SignInOutcome, error) {
	var result domain.SignInResult

	acct, err := s.repo.FindByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		// Unknown username counts as a plain failure: no flags, no lockout
		// counter to maintain.
	case err != nil:
		return nil, err
	default:
		result = s.checkPassword(ctx, acct, in.Password, true)
	}

	if err := s.recordAttempt(ctx, domain.OriginUI, in.Username, result); err != nil {
		return nil, fmt.Errorf("record login attempt: %w", err)
	}

	out := &ports.SignInOutcome{Result: result}
	if !result.Succeeded {
		s.log.Info().
			Str("username", in.Username).
			Str("reason", result.FailureReason()).
			Msg("interactive sign-in failed")
		return out, nil
	}

	if err := s.lockout.Reset(ctx, in.Username); err != nil {
		s.log.Warn().Err(err).Str("username", in.Username).Msg("failed to reset lockout counter")
	}

	ttl := s.sessionTTL
	if in.RememberMe {
		ttl = s.rememberTTL
	}
	sessionID, err := s.sessions.Create(ctx, in.Username, ttl)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	out.SessionID = sessionID

	s.log.Info().Str("username", in.Username).Msg("interactive sign-in succeeded")
	return out, nil
}

// SignOut ends the session. It has no precondition and no error path: a
// missing or already-expired session signs out all the same.
func (s *AccountService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn().Err(err).Msg("failed to delete session")
	}
	return nil
}

// IssueToken authenticates the credentials and returns a signed bearer
// token. The password check performs no lockout bookkeeping on this path.
// Every failure collapses to domain.ErrInvalidCredentials so the response
// carries no account-existence signal; the audit log keeps the detail.
func (s *AccountService) IssueToken(ctx context.Context, username, password string) (*ports.TokenResult, error) {
	acct, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		if rerr := s.recordAttempt(ctx, domain.OriginAPI, username, domain.SignInResult{}); rerr != nil {
			return nil, fmt.Errorf("record login attempt: %w", rerr)
		}
		s.log.Info().Str("username", username).Msg("token request for unknown username")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	result := s.checkPassword(ctx, acct, password, false)

	if err := s.recordAttempt(ctx, domain.OriginAPI, username, result); err != nil {
		return nil, fmt.Errorf("record login attempt: %w", err)
	}

	if !result.Succeeded {
		s.log.Info().
			Str("username", username).
			Str("reason", result.FailureReason()).
			Msg("token request rejected")
		return nil, domain.ErrInvalidCredentials
	}

	expiresAt := s.now().UTC().Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":      acct.Email,
		"jti":      uuid.NewString(),
		"username": acct.Username,
		"iss":      s.token.Issuer,
		"aud":      s.token.Audience,
		"exp":      expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.token.Key))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("username", username).Time("expires_at", expiresAt).Msg("bearer token issued")
	return &ports.TokenResult{Token: signed, ExpiresAt: expiresAt}, nil
}

// checkPassword evaluates one credential check. All applicable failure flags
// are reported together; Succeeded requires a correct password and no flag.
// When lockoutOnFailure is set, a wrong password is counted against the
// lockout window and may flip LockedOut on this very attempt.
func (s *AccountService) checkPassword(ctx context.Context, acct *domain.Account, password string, lockoutOnFailure bool) domain.SignInResult {
	var result domain.SignInResult

	locked, err := s.lockout.IsLockedOut(ctx, acct.Username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", acct.Username).Msg("lockout check failed, treating as unlocked")
	}
	result.LockedOut = locked
	result.NotAllowed = acct.Disabled
	result.RequiresTwoFactor = acct.TwoFactorEnabled

	passwordOK := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) == nil

	if passwordOK && !result.NotAllowed && !result.LockedOut && !result.RequiresTwoFactor {
		result.Succeeded = true
		return result
	}

	if !passwordOK && lockoutOnFailure {
		nowLocked, err := s.lockout.RecordFailure(ctx, acct.Username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", acct.Username).Msg("failed to record lockout failure")
		} else if nowLocked {
			result.LockedOut = true
		}
	}

	return result
}

// recordAttempt appends exactly one audit record and commits the unit of
// work, whether the attempt succeeded or not.
func (s *AccountService) recordAttempt(ctx context.Context, origin domain.AttemptOrigin, username string, result domain.SignInResult) error {
	unit := s.audit.Begin()
	unit.AppendAttempt(domain.NewLoginAttempt(origin, username, result))
	return unit.Commit(ctx)
}

// passwordPolicyViolations enforces the credential-store password policy.
// Each violated rule contributes one description for the registration form.
func passwordPolicyViolations(password string) []string {
	var descs []string
	if len(password) < minPasswordLength {
		descs = append(descs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hasDigit := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		descs = append(descs, "password must contain at least one digit")
	}
	return descs
}
