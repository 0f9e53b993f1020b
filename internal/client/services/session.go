// Package services contains application services for the skillhub CLI.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skillhub/internal/client/client"
	"github.com/dmitrijs2005/skillhub/internal/client/repositories/metadata"
	pb "github.com/dmitrijs2005/skillhub/internal/proto"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
)

// Client is the subset of client.GRPCClient used by SessionService.
type Client interface {
	Login(ctx context.Context, identifier, password string) (*pb.SessionResponse, error)
	Regenerate(ctx context.Context) (*pb.SessionResponse, error)
	Invalidate(ctx context.Context) error
	Verify(ctx context.Context) (*pb.VerifyResponse, error)
	WhoAmI(ctx context.Context) (*pb.Principal, error)
	Tokens() client.Tokens
	SetTokens(client.Tokens)
}

// SessionService keeps the CLI's session in the local metadata store so it
// survives between invocations. Every call that may rotate tokens persists
// the client's pair afterwards.
type SessionService struct {
	client Client
	store  metadata.Repository
}

func NewSessionService(c Client, store metadata.Repository) *SessionService {
	return &SessionService{client: c, store: store}
}

// Restore loads a previously saved session into the client.
func (s *SessionService) Restore(ctx context.Context) error {
	access, err := s.store.Get(ctx, keyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := s.store.Get(ctx, keyRefreshToken)
	if err != nil {
		return err
	}
	s.client.SetTokens(client.Tokens{AccessToken: string(access), RefreshToken: string(refresh)})
	return nil
}

// Username returns the name saved at the last login, or "" if none.
func (s *SessionService) Username(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, keyUsername)
	return string(v), err
}

func (s *SessionService) Login(ctx context.Context, identifier, password string) (*pb.SessionResponse, error) {
	resp, err := s.client.Login(ctx, identifier, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, keyUsername, []byte(resp.Principal.Username)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SessionService) Refresh(ctx context.Context) (*pb.SessionResponse, error) {
	resp, err := s.client.Regenerate(ctx)
	if err != nil {
		return nil, s.dropIfGone(ctx, err)
	}
	return resp, s.save(ctx)
}

// Logout invalidates the refresh token on the server and wipes the local
// session. A token the server no longer knows still clears local state.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.client.Invalidate(ctx)
	if err != nil {
		return s.dropIfGone(ctx, err)
	}
	return s.store.Clear(ctx)
}

func (s *SessionService) Verify(ctx context.Context) (*pb.VerifyResponse, error) {
	resp, err := s.client.Verify(ctx)
	if err != nil {
		return nil, s.dropIfGone(ctx, err)
	}
	return resp, nil
}

func (s *SessionService) WhoAmI(ctx context.Context) (*pb.Principal, error) {
	resp, err := s.client.WhoAmI(ctx)
	// the access token may have been regenerated even when the call failed
	if saveErr := s.save(ctx); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SessionService) save(ctx context.Context) error {
	t := s.client.Tokens()
	if err := s.store.Set(ctx, keyAccessToken, []byte(t.AccessToken)); err != nil {
		return err
	}
	return s.store.Set(ctx, keyRefreshToken, []byte(t.RefreshToken))
}

func (s *SessionService) dropIfGone(ctx context.Context, err error) error {
	if errors.Is(err, client.ErrSessionNotFound) {
		s.client.SetTokens(client.Tokens{})
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			return fmt.Errorf("%w (clearing local session: %v)", err, clearErr)
		}
	}
	return err
}
