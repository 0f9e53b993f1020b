package proto

import (
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
)

type LoginRequest struct {
	Identifier string
	Password   string
}

type RefreshTokenRequest struct {
	RefreshToken string
}

type WhoAmIRequest struct{}

type Principal struct {
	ID       string
	Kind     string
	Username string
	Email    string
	Roles    []string
	Active   bool
	OwnerID  string
}

// SessionResponse carries a fresh token pair. Zero expiry times are left
// off the wire.
type SessionResponse struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Principal             *Principal
}

type InvalidateResponse struct {
	Message string
}

type VerifyResponse struct {
	Token         string
	ExpiryDate    time.Time
	Username      string
	Email         string
	PrincipalKind string
	PrincipalID   string
}

func (*LoginRequest) messageName() protoreflect.Name { return "LoginRequest" }

func (x *LoginRequest) encode(m protoreflect.Message) {
	setString(m, "identifier", x.Identifier)
	setString(m, "password", x.Password)
}

func (x *LoginRequest) decode(m protoreflect.Message) {
	x.Identifier = getString(m, "identifier")
	x.Password = getString(m, "password")
}

func (*RefreshTokenRequest) messageName() protoreflect.Name { return "RefreshTokenRequest" }

func (x *RefreshTokenRequest) encode(m protoreflect.Message) {
	setString(m, "refresh_token", x.RefreshToken)
}

func (x *RefreshTokenRequest) decode(m protoreflect.Message) {
	x.RefreshToken = getString(m, "refresh_token")
}

func (*WhoAmIRequest) messageName() protoreflect.Name { return "WhoAmIRequest" }
func (*WhoAmIRequest) encode(protoreflect.Message)    {}
func (*WhoAmIRequest) decode(protoreflect.Message)    {}

func (*Principal) messageName() protoreflect.Name { return "Principal" }

func (x *Principal) encode(m protoreflect.Message) {
	setString(m, "id", x.ID)
	setString(m, "kind", x.Kind)
	setString(m, "username", x.Username)
	setString(m, "email", x.Email)
	setStrings(m, "roles", x.Roles)
	setBool(m, "active", x.Active)
	setString(m, "owner_id", x.OwnerID)
}

func (x *Principal) decode(m protoreflect.Message) {
	x.ID = getString(m, "id")
	x.Kind = getString(m, "kind")
	x.Username = getString(m, "username")
	x.Email = getString(m, "email")
	x.Roles = getStrings(m, "roles")
	x.Active = getBool(m, "active")
	x.OwnerID = getString(m, "owner_id")
}

func (*SessionResponse) messageName() protoreflect.Name { return "SessionResponse" }

func (x *SessionResponse) encode(m protoreflect.Message) {
	setString(m, "access_token", x.AccessToken)
	setTime(m, "access_token_expires_at", x.AccessTokenExpiresAt)
	setString(m, "refresh_token", x.RefreshToken)
	setTime(m, "refresh_token_expires_at", x.RefreshTokenExpiresAt)
	if x.Principal != nil {
		x.Principal.encode(m.Mutable(fieldOf(m, "principal")).Message())
	}
}

func (x *SessionResponse) decode(m protoreflect.Message) {
	x.AccessToken = getString(m, "access_token")
	x.AccessTokenExpiresAt = getTime(m, "access_token_expires_at")
	x.RefreshToken = getString(m, "refresh_token")
	x.RefreshTokenExpiresAt = getTime(m, "refresh_token_expires_at")
	x.Principal = nil
	if fd := fieldOf(m, "principal"); m.Has(fd) {
		x.Principal = &Principal{}
		x.Principal.decode(m.Get(fd).Message())
	}
}

func (*InvalidateResponse) messageName() protoreflect.Name { return "InvalidateResponse" }

func (x *InvalidateResponse) encode(m protoreflect.Message) {
	setString(m, "message", x.Message)
}

func (x *InvalidateResponse) decode(m protoreflect.Message) {
	x.Message = getString(m, "message")
}

func (*VerifyResponse) messageName() protoreflect.Name { return "VerifyResponse" }

func (x *VerifyResponse) encode(m protoreflect.Message) {
	setString(m, "token", x.Token)
	setTime(m, "expiry_date", x.ExpiryDate)
	setString(m, "username", x.Username)
	setString(m, "email", x.Email)
	setString(m, "principal_kind", x.PrincipalKind)
	setString(m, "principal_id", x.PrincipalID)
}

func (x *VerifyResponse) decode(m protoreflect.Message) {
	x.Token = getString(m, "token")
	x.ExpiryDate = getTime(m, "expiry_date")
	x.Username = getString(m, "username")
	x.Email = getString(m, "email")
	x.PrincipalKind = getString(m, "principal_kind")
	x.PrincipalID = getString(m, "principal_id")
}
