package actorjwt

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	goAudit "github.com/MrEthical07/goAudit"
)

// SigningMethod defines a public type used by goAudit APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodEd25519 is an exported constant or variable used by the audit layer.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 is an exported constant or variable used by the audit layer.
	MethodHS256 SigningMethod = "hs256"
)

// ErrNoBearerToken is an exported constant or variable used by the audit layer.
var ErrNoBearerToken = errors.New("no bearer token in context")

// Config defines a public type used by goAudit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte

	// RequireToken makes a missing bearer token a resolution failure instead
	// of an anonymous actor.
	RequireToken bool
}

// Provider defines a public type used by goAudit APIs.
//
// Provider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Provider struct {
	config Config
}

var _ goAudit.IdentityProvider = (*Provider)(nil)

// ActorClaims defines a public type used by goAudit APIs.
//
// ActorClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ActorClaims struct {
	UID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Provider, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 && len(cfg.VerifyKeys) == 0 {
			return nil, errors.New("hs256 requires shared secret or verify key set")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Provider{config: cfg}, nil
}

// CurrentActor describes the currentactor operation and its observable behavior.
//
// CurrentActor may return an error when input validation, dependency calls, or security checks fail.
// CurrentActor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) CurrentActor(ctx context.Context) (goAudit.Identity, error) {
	token, ok := goAudit.BearerTokenFromContext(ctx)
	if !ok {
		if p.config.RequireToken {
			return goAudit.Identity{}, ErrNoBearerToken
		}
		return goAudit.Identity{}, nil
	}

	claims, err := p.Parse(token)
	if err != nil {
		return goAudit.Identity{}, fmt.Errorf("actor token rejected: %w", err)
	}

	actor := claims.UID
	if actor == "" {
		actor = claims.Subject
	}
	if actor == "" {
		return goAudit.Identity{}, errors.New("actor token carries no uid or subject")
	}
	return goAudit.Identity{ID: actor}, nil
}

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) Issue(actorID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", errors.New("actor id required")
	}
	if ttl <= 0 {
		return "", errors.New("invalid TTL")
	}

	claims := ActorClaims{
		UID: actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    p.config.Issuer,
		},
	}
	if p.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{p.config.Audience}
	}

	token := jwt.NewWithClaims(p.getMethod(), claims)
	if p.config.KeyID != "" {
		token.Header["kid"] = p.config.KeyID
	}

	signKey, err := p.getSignKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

// Parse describes the parse operation and its observable behavior.
//
// Parse may return an error when input validation, dependency calls, or security checks fail.
// Parse does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) Parse(tokenStr string) (*ActorClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{p.getMethod().Alg()}),
	}
	if p.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(p.config.Leeway))
	}
	if p.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if p.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(p.config.Issuer))
	}
	if p.config.Audience != "" {
		options = append(options, jwt.WithAudience(p.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &ActorClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != p.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}

		if len(p.config.VerifyKeys) > 0 {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("missing kid")
			}
			key, ok := p.config.VerifyKeys[kid]
			if !ok {
				return nil, errors.New("unknown kid")
			}
			return p.keyBytesToVerifyKey(key)
		}

		if p.config.KeyID != "" {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("missing kid")
			}
			if kid != p.config.KeyID {
				return nil, errors.New("unknown kid")
			}
		}

		return p.getVerifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt != nil && p.config.MaxFutureIAT > 0 {
		maxAllowed := time.Now().Add(p.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, errors.New("token iat too far in the future")
		}
	}

	return claims, nil
}

func (p *Provider) getMethod() jwt.SigningMethod {
	switch p.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (p *Provider) getSignKey() (interface{}, error) {
	switch p.config.SigningMethod {
	case MethodHS256:
		return p.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(p.config.PrivateKey)
	}
}

func (p *Provider) getVerifyKey() (interface{}, error) {
	switch p.config.SigningMethod {
	case MethodHS256:
		return p.config.PrivateKey, nil
	default:
		return parseEdPublicKey(p.config.PublicKey)
	}
}

func (p *Provider) keyBytesToVerifyKey(key []byte) (interface{}, error) {
	switch p.config.SigningMethod {
	case MethodHS256:
		return key, nil
	default:
		return parseEdPublicKey(key)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
