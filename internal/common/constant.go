package common

const (
	// AccessTokenHeaderName is the gRPC metadata key (and HTTP header) used to
	// carry the access token on inbound requests.
	AccessTokenHeaderName = "authorization"

	// BearerPrefix prefixes access tokens in the authorization header.
	BearerPrefix = "Bearer "
)
