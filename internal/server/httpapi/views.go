package httpapi

import (
	"time"

	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
)

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type createWorkerRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

type principalView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newPrincipalView(p *models.Principal) principalView {
	return principalView{
		ID:        p.Ref.ID(),
		Kind:      string(p.Ref.Kind()),
		Username:  p.Username,
		Email:     p.Email,
		Roles:     p.RoleNames(),
		Active:    p.Active,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
	}
}

type sessionResponse struct {
	AccessToken           string        `json:"accessToken"`
	AccessTokenExpiresAt  time.Time     `json:"accessTokenExpiresAt"`
	RefreshToken          string        `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time     `json:"refreshTokenExpiresAt"`
	Principal             principalView `json:"principal"`
}

func newSessionResponse(pair *sessions.TokenPair, p *models.Principal) sessionResponse {
	return sessionResponse{
		AccessToken:           pair.AccessToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		Principal:             newPrincipalView(p),
	}
}

type refreshTokenView struct {
	Token         string    `json:"token"`
	ExpiryDate    time.Time `json:"expiryDate"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PrincipalKind string    `json:"principalKind"`
	PrincipalID   string    `json:"principalId"`
}

func newRefreshTokenView(t *models.RefreshToken) refreshTokenView {
	return refreshTokenView{
		Token:         t.Token,
		ExpiryDate:    t.ExpiryDate,
		Username:      t.Username,
		Email:         t.Email,
		PrincipalKind: string(t.Owner.Kind()),
		PrincipalID:   t.Owner.ID(),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
