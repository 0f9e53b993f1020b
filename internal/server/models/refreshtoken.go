package models

import (
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
)

// RefreshTokenRecord is a refresh_tokens row as stored. The two owner columns
// are nullable and exactly one of them must be set.
type RefreshTokenRecord struct {
	Token      string
	ExpiryDate time.Time
	Username   string
	Email      string
	PrimaryID  *string
	WorkerID   *string
	CreatedAt  time.Time
}

// NewRefreshTokenRecord builds the row persisted for principal p.
func NewRefreshTokenRecord(token string, expiry time.Time, p *Principal) *RefreshTokenRecord {
	primaryID, workerID := p.Ref.Columns()
	return &RefreshTokenRecord{
		Token:      token,
		ExpiryDate: expiry,
		Username:   p.Username,
		Email:      p.Email,
		PrimaryID:  primaryID,
		WorkerID:   workerID,
	}
}

// Owner resolves the owner columns into a PrincipalRef.
// Both or neither being set yields common.ErrInvalidTokenConfiguration.
func (r *RefreshTokenRecord) Owner() (PrincipalRef, error) {
	hasPrimary := r.PrimaryID != nil && *r.PrimaryID != ""
	hasWorker := r.WorkerID != nil && *r.WorkerID != ""

	switch {
	case hasPrimary && !hasWorker:
		return PrimaryRef(*r.PrimaryID), nil
	case hasWorker && !hasPrimary:
		return WorkerRef(*r.WorkerID), nil
	default:
		return PrincipalRef{}, common.ErrInvalidTokenConfiguration
	}
}

// Expired reports whether the record is past its expiry at now.
func (r *RefreshTokenRecord) Expired(now time.Time) bool {
	return r.ExpiryDate.Before(now)
}

// RefreshToken is a verified refresh token with a well-formed owner.
type RefreshToken struct {
	Token      string
	ExpiryDate time.Time
	Username   string
	Email      string
	Owner      PrincipalRef
}

// Validate checks ownership and returns the verified form of the record.
func (r *RefreshTokenRecord) Validate() (*RefreshToken, error) {
	owner, err := r.Owner()
	if err != nil {
		return nil, err
	}
	return &RefreshToken{
		Token:      r.Token,
		ExpiryDate: r.ExpiryDate,
		Username:   r.Username,
		Email:      r.Email,
		Owner:      owner,
	}, nil
}
