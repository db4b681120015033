package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/task-manager/internal/domain"
	"github.com/spec-kit/task-manager/internal/repository"
)

// TokenManager issues and verifies signed session tokens. It owns the
// process-wide signing secret; the secret is set once at construction and
// never changes afterwards.
type TokenManager struct {
	secret       []byte
	ttl          time.Duration
	store        repository.UserStore
	storeTimeout time.Duration
	logger       *zap.Logger
}

// TokenDependencies carries the optional collaborators of the manager. A nil
// Store disables the verification-time existence re-check.
type TokenDependencies struct {
	Store        repository.UserStore
	StoreTimeout time.Duration
	Logger       *zap.Logger
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, deps TokenDependencies) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if deps.StoreTimeout <= 0 {
		deps.StoreTimeout = 500 * time.Millisecond
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TokenManager{
		secret:       []byte(secret),
		ttl:          ttl,
		store:        deps.Store,
		storeTimeout: deps.StoreTimeout,
		logger:       deps.Logger,
	}
}

// Claims describes the JWT payload. The subject id travels both as the "id"
// claim and as the registered subject so either spelling verifies.
type Claims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) subjectID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// TTL returns the validity window tokens are issued with.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a session token for the user. The expiry window is
// fixed by configuration; callers cannot extend it.
func (tm *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	if user == nil || user.ID == "" || user.Email == "" {
		return "", time.Time{}, ErrInvalidSubject
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates a raw token and resolves it to an identity. Every failure
// mode collapses to nil; the reason is logged, never returned, so callers
// cannot leak it to clients.
func (tm *TokenManager) Verify(ctx context.Context, raw string) *domain.Identity {
	identity, err := tm.verify(ctx, raw)
	if err != nil {
		tm.logger.Debug("token rejected", zap.Error(err))
		return nil
	}
	return identity
}

func (tm *TokenManager) verify(ctx context.Context, raw string) (*domain.Identity, error) {
	tokenString := normalizeToken(raw)
	if tokenString == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errSignatureInvalid
		default:
			return nil, errMalformedToken
		}
	}
	if !parsed.Valid {
		return nil, errMalformedToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, errTokenExpired
	}

	subjectID := claims.subjectID()
	if subjectID == "" {
		return nil, errMalformedToken
	}

	identity, err := domain.NewIdentity(subjectID, claims.Email, claims.Name, claims.Role)
	if err != nil {
		return nil, errMalformedToken
	}

	if tm.store == nil {
		return identity, nil
	}
	return tm.recheckSubject(ctx, identity)
}

// recheckSubject confirms the account behind verified claims still exists.
// When the store is unreachable the verified claims are trusted instead of
// failing closed; availability wins over strict revocation here, so the
// degradation is logged loudly.
func (tm *TokenManager) recheckSubject(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, tm.storeTimeout)
	defer cancel()

	user, err := tm.store.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errSubjectNotFound
		}
		tm.logger.Warn("user store unreachable, trusting verified claims", zap.Error(err))
		return identity, nil
	}

	// The stored record wins over claims that may have gone stale.
	return domain.NewIdentity(user.ID, user.Email, user.Name, user.Role)
}

// normalizeToken strips the decorations clients sometimes wrap around the
// raw token: whitespace, a Bearer prefix, surrounding quotes.
func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(rest)
	}
	token = strings.TrimPrefix(token, `"`)
	token = strings.TrimSuffix(token, `"`)
	return token
}
