// internal/media/token.go
package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredentials means the media API key or secret is not configured.
	ErrMissingCredentials = errors.New("media credentials are not configured")
	// ErrInvalidRole is returned for roles other than host, debater and viewer.
	ErrInvalidRole = errors.New("invalid participant role")
)

// Role decides what a participant may do in the media room.
type Role string

const (
	RoleHost    Role = "host"
	RoleDebater Role = "debater"
	RoleViewer  Role = "viewer"
)

// ParseRole maps a request value to a Role. An empty value means viewer.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleViewer, nil
	case RoleHost, RoleDebater, RoleViewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) canPublish() bool {
	return r == RoleHost || r == RoleDebater
}

// TokenMinter issues join tokens for the external media service.
type TokenMinter interface {
	MintToken(ctx context.Context, roomName, identity string, role Role) (string, error)
}

// VideoGrant is the media room permission block of an access token.
type VideoGrant struct {
	Room           string `json:"room"`
	RoomJoin       bool   `json:"roomJoin"`
	RoomAdmin      bool   `json:"roomAdmin,omitempty"`
	CanPublish     bool   `json:"canPublish"`
	CanSubscribe   bool   `json:"canSubscribe"`
	CanPublishData bool   `json:"canPublishData"`
}

// AccessClaims are the JWT claims understood by LiveKit-compatible servers.
type AccessClaims struct {
	jwt.RegisteredClaims
	Name     string     `json:"name,omitempty"`
	Metadata string     `json:"metadata,omitempty"`
	Video    VideoGrant `json:"video"`
}

// DefaultTokenTTL is how long a minted token stays valid.
const DefaultTokenTTL = 6 * time.Hour

// LiveKitMinter signs access tokens with an API key/secret pair.
type LiveKitMinter struct {
	APIKey    string
	APISecret string
	TTL       time.Duration

	now func() time.Time
}

// NewLiveKitMinter returns a minter. Missing credentials are reported at mint
// time rather than here so the server can still start without media.
func NewLiveKitMinter(apiKey, apiSecret string, ttl time.Duration) *LiveKitMinter {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &LiveKitMinter{APIKey: apiKey, APISecret: apiSecret, TTL: ttl, now: time.Now}
}

// MintToken signs a token allowing identity to join roomName with role.
func (m *LiveKitMinter) MintToken(ctx context.Context, roomName, identity string, role Role) (string, error) {
	if m.APIKey == "" || m.APISecret == "" {
		return "", ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := m.now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.APIKey,
			Subject:   identity,
			ID:        identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
		Name:     identity,
		Metadata: fmt.Sprintf(`{"role":%q}`, role),
		Video: VideoGrant{
			Room:           roomName,
			RoomJoin:       true,
			RoomAdmin:      role == RoleHost,
			CanPublish:     role.canPublish(),
			CanSubscribe:   true,
			CanPublishData: role.canPublish(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.APISecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign media token: %w", err)
	}
	return signed, nil
}
