package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hangmanparty/internal/dependencies/mocks"
	"github.com/mcoot/hangmanparty/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterCreatesPlayerAndSession() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("alice", session.Player.Username)
	s.Equal(s.clock.Now().Add(30*24*time.Hour), session.ExpiresAt)

	// The player is persisted
	player, err := s.storage.GetPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.Equal("alice", player.Username)
}

func (s *ServiceSuite) TestRegisterDuplicateUsernameFails() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other-password")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterDoesNotStorePlaintextPassword() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	rp, err := s.storage.GetRegisteredPlayer(s.ctx, session.PlayerID)
	s.Require().NoError(err)
	s.NotEqual("hunter22", rp.PasswordHash)
	s.NotEmpty(rp.PasswordHash)
}

func (s *ServiceSuite) TestLoginSucceedsWithCorrectPassword() {
	registered, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	session, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.Equal(registered.PlayerID, session.PlayerID)
	s.NotEqual(registered.Token, session.Token)
}

func (s *ServiceSuite) TestLoginWrongPasswordFails() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUsernameFails() {
	_, err := s.service.Login(s.ctx, "nobody", "hunter22")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestValidateSessionReturnsSession() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.PlayerID, got.PlayerID)
}

func (s *ServiceSuite) TestValidateUnknownTokenFails() {
	_, err := s.service.ValidateSession("sess_nonexistent")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestExpiredSessionIsRejected() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.clock.Advance(30*24*time.Hour + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestGetPlayer() {
	session, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	player, err := s.service.GetPlayer(session.Token)
	s.Require().NoError(err)
	s.Equal("alice", player.Username)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, err := s.service.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.clock.Advance(31 * 24 * time.Hour)

	fresh, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
