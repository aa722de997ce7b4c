package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hangmanparty/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: complete round from registration to a finished game and restart
func (s *IntegrationSuite) TestCompleteRoundFlow() {
	// Step 1: two players register
	aliceSession, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	bobSession, err := s.app.AuthService.Register(s.ctx, "bob", "hunter23")
	s.Require().NoError(err)

	alice := aliceSession.Player
	bob := bobSession.Player

	// Step 2: both join the same room; alice created it, so she hosts
	rm, err := s.app.RoomController.Join(s.ctx, "AB12CD", alice, "conn-a")
	s.Require().NoError(err)
	s.Equal(alice.ID, rm.Host)

	rm, err = s.app.RoomController.Join(s.ctx, "AB12CD", bob, "conn-b")
	s.Require().NoError(err)
	s.Len(rm.Players, 2)
	s.Equal(model.RoomStatusWaiting, rm.Status)

	// Step 3: the host starts; alice is first word master
	rm, err = s.app.RoomController.Start(s.ctx, "AB12CD", alice.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusSelection, rm.Status)
	s.Equal(alice.ID, rm.WordMaster)

	// Step 4: alice picks "cat"
	rm, err = s.app.RoomController.SelectWord(s.ctx, "AB12CD", alice.ID, "cat")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusGuessing, rm.Status)
	s.Equal("___", rm.MaskedWord)

	// Step 5: bob guesses through the word with one miss
	_, changed, err := s.app.RoomController.Guess(s.ctx, "AB12CD", bob.ID, "z")
	s.Require().NoError(err)
	s.True(changed)

	for _, l := range []string{"c", "a", "t"} {
		_, changed, err = s.app.RoomController.Guess(s.ctx, "AB12CD", bob.ID, l)
		s.Require().NoError(err)
		s.True(changed)
	}

	// Step 6: the round resolved for the guessers and bob scored
	rm, err = s.app.RoomController.GetRoom(s.ctx, "AB12CD")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFinished, rm.Status)
	s.Equal(model.WinnerGuessers, rm.Winner)
	s.Equal("CAT", rm.MaskedWord)
	s.Equal(1, rm.WrongGuesses)
	s.Equal(1, rm.GetPlayer(bob.ID).Score)
	s.Equal(0, rm.GetPlayer(alice.ID).Score)

	// Step 7: restart rotates the word-master role to bob
	rm, err = s.app.RoomController.Start(s.ctx, "AB12CD", alice.ID)
	s.Require().NoError(err)
	s.Equal(bob.ID, rm.WordMaster)
	s.Equal(model.RoomStatusSelection, rm.Status)
	s.Empty(rm.CurrentWord)
	s.Equal(1, rm.GetPlayer(bob.ID).Score)
}

func (s *IntegrationSuite) TestRoleChecksAcrossTheStack() {
	aliceSession, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	bobSession, err := s.app.AuthService.Register(s.ctx, "bob", "hunter23")
	s.Require().NoError(err)

	_, err = s.app.RoomController.Join(s.ctx, "AB12CD", aliceSession.Player, "conn-a")
	s.Require().NoError(err)
	_, err = s.app.RoomController.Join(s.ctx, "AB12CD", bobSession.Player, "conn-b")
	s.Require().NoError(err)

	// Non-host cannot start
	_, err = s.app.RoomController.Start(s.ctx, "AB12CD", bobSession.PlayerID)
	s.ErrorIs(err, model.ErrNotHost)

	_, err = s.app.RoomController.Start(s.ctx, "AB12CD", aliceSession.PlayerID)
	s.Require().NoError(err)

	// Non-master cannot select
	_, err = s.app.RoomController.SelectWord(s.ctx, "AB12CD", bobSession.PlayerID, "cat")
	s.ErrorIs(err, model.ErrNotWordMaster)
}

func (s *IntegrationSuite) TestDictionaryOutageKeepsRoomConsistent() {
	aliceSession, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	_, err = s.app.RoomController.Join(s.ctx, "AB12CD", aliceSession.Player, "conn-a")
	s.Require().NoError(err)
	_, err = s.app.RoomController.Start(s.ctx, "AB12CD", aliceSession.PlayerID)
	s.Require().NoError(err)

	s.app.Words.Unavailable = true
	_, err = s.app.RoomController.SelectWord(s.ctx, "AB12CD", aliceSession.PlayerID, "cat")
	s.ErrorIs(err, model.ErrDictionaryUnavailable)

	// Recovery: the same word goes through once the dictionary is back
	s.app.Words.Unavailable = false
	rm, err := s.app.RoomController.SelectWord(s.ctx, "AB12CD", aliceSession.PlayerID, "cat")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusGuessing, rm.Status)
}

func (s *IntegrationSuite) TestSessionValidationBacksRealtimeAuth() {
	session, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	player, err := s.app.AuthService.GetPlayer(session.Token)
	s.Require().NoError(err)
	s.Equal("alice", player.Username)

	s.app.AuthService.InvalidateSession(session.Token)
	_, err = s.app.AuthService.GetPlayer(session.Token)
	s.Error(err)
}
