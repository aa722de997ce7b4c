package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub("AB12CD", testutil.NopLogger())
}

func (s *HubSuite) newClient(id string) *Client {
	player := model.Player{ID: model.PlayerID(id), Username: id}
	return NewClient(nil, player, "conn-"+id, testutil.NopLogger())
}

// receive pops one queued message off the client's send buffer
func (s *HubSuite) receive(c *Client) Envelope {
	select {
	case msg := <-c.send:
		var env Envelope
		s.Require().NoError(json.Unmarshal(msg, &env))
		return env
	default:
		s.FailNow("no message queued for client")
		return Envelope{}
	}
}

func (s *HubSuite) TestRegisterAndUnregister() {
	c1 := s.newClient("u1")
	c2 := s.newClient("u2")

	s.hub.Register(c1)
	s.hub.Register(c2)
	s.Equal(2, s.hub.ClientCount())

	s.hub.Unregister(c1)
	s.Equal(1, s.hub.ClientCount())
}

func (s *HubSuite) TestBroadcastReachesAllClients() {
	c1 := s.newClient("u1")
	c2 := s.newClient("u2")
	s.hub.Register(c1)
	s.hub.Register(c2)

	s.hub.BroadcastRoom(&model.Room{
		Code:   "AB12CD",
		Status: model.RoomStatusWaiting,
	})

	for _, c := range []*Client{c1, c2} {
		env := s.receive(c)
		s.Equal(EventRoomUpdate, env.Event)
	}
}

func (s *HubSuite) TestBroadcastIsPersonalized() {
	master := s.newClient("u1")
	guesser := s.newClient("u2")
	s.hub.Register(master)
	s.hub.Register(guesser)

	s.hub.BroadcastRoom(&model.Room{
		Code:   "AB12CD",
		Status: model.RoomStatusGuessing,
		Players: []model.RoomPlayer{
			{ID: "u1", Username: "alice"},
			{ID: "u2", Username: "bob"},
		},
		WordMaster:  "u1",
		CurrentWord: "CAT",
		MaskedWord:  "___",
	})

	var masterView, guesserView RoomView
	s.Require().NoError(json.Unmarshal(s.receive(master).Data, &masterView))
	s.Require().NoError(json.Unmarshal(s.receive(guesser).Data, &guesserView))

	s.Equal("CAT", masterView.CurrentWord)
	s.Empty(guesserView.CurrentWord)
	s.Equal("___", guesserView.MaskedWord)
}

func (s *HubSuite) TestBroadcastDropsWhenBufferFull() {
	slow := s.newClient("u1")
	s.hub.Register(slow)

	rm := &model.Room{Code: "AB12CD", Status: model.RoomStatusWaiting}
	for i := 0; i < sendBufferSize+10; i++ {
		s.hub.BroadcastRoom(rm)
	}

	// The hub stays live and the client holds a full buffer
	s.Equal(1, s.hub.ClientCount())
	s.Len(slow.send, sendBufferSize)
}

func (s *HubSuite) TestSendErrorDeliversErrorEvent() {
	c := s.newClient("u1")

	c.SendError("Could not join room")

	env := s.receive(c)
	s.Equal(EventError, env.Event)

	var msg string
	s.Require().NoError(json.Unmarshal(env.Data, &msg))
	s.Equal("Could not join room", msg)
}

type HubManagerSuite struct {
	suite.Suite
	manager *HubManager
}

func TestHubManagerSuite(t *testing.T) {
	suite.Run(t, new(HubManagerSuite))
}

func (s *HubManagerSuite) SetupTest() {
	s.manager = NewHubManager(testutil.NopLogger())
}

func (s *HubManagerSuite) TestGetOrCreateHubIsIdempotent() {
	h1 := s.manager.GetOrCreateHub("AB12CD")
	h2 := s.manager.GetOrCreateHub("AB12CD")
	s.Same(h1, h2)
}

func (s *HubManagerSuite) TestGetHubReturnsNilForUnknownRoom() {
	s.Nil(s.manager.GetHub("NOPE"))
}

func (s *HubManagerSuite) TestRemoveHub() {
	s.manager.GetOrCreateHub("AB12CD")
	s.manager.RemoveHub("AB12CD")
	s.Nil(s.manager.GetHub("AB12CD"))
}

func (s *HubManagerSuite) TestCleanupEmptyHubs() {
	empty := s.manager.GetOrCreateHub("EMPTY1")
	_ = empty

	occupied := s.manager.GetOrCreateHub("BUSY01")
	player := model.Player{ID: "u1", Username: "alice"}
	occupied.Register(NewClient(nil, player, "conn-1", testutil.NopLogger()))

	s.manager.CleanupEmptyHubs()

	s.Nil(s.manager.GetHub("EMPTY1"))
	s.NotNil(s.manager.GetHub("BUSY01"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("conn-1")
	if ok {
		t.Fatal("expected no binding for unknown connection")
	}

	r.Bind("conn-1", "u1")
	playerID, ok := r.Lookup("conn-1")
	if !ok || playerID != "u1" {
		t.Fatalf("expected conn-1 bound to u1, got %q (ok=%v)", playerID, ok)
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 binding, got %d", r.Count())
	}

	r.Release("conn-1")
	if _, ok := r.Lookup("conn-1"); ok {
		t.Fatal("expected binding released")
	}
}
