package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/protocol/convert"
	"github.com/palemoky/crazy-eights/internal/storage"
	"github.com/palemoky/crazy-eights/internal/testutil"
)

func newTestManager(t *testing.T, recorder storage.Recorder) *RoomManager {
	t.Helper()
	var seed atomic.Uint64
	rm := NewRoomManager(nil, recorder, Options{
		BotDelay: time.Millisecond,
		NewRand: func() *rand.Rand {
			s := seed.Add(1)
			return rand.New(rand.NewPCG(s, s))
		},
	})
	t.Cleanup(rm.Close)
	return rm
}

// twoPlayerRoom creates a waiting room hosted by Alice with Bob joined
func twoPlayerRoom(t *testing.T, rm *RoomManager) (*Room, *testutil.SimpleClient, *testutil.SimpleClient) {
	t.Helper()
	host := testutil.NewSimpleClient("p1", "Alice")
	guest := testutil.NewSimpleClient("p2", "Bob")

	r, err := rm.CreateRoom(host, "", 2)
	require.NoError(t, err)
	_, err = rm.JoinRoom(guest, r.Code, "")
	require.NoError(t, err)
	return r, host, guest
}

func lastState(t *testing.T, c *testutil.SimpleClient) *protocol.GameStatePayload {
	t.Helper()
	msg := c.LastMessage(protocol.MsgGameState)
	require.NotNil(t, msg, "no game_state for %s", c.Name)
	st, err := codec.ParsePayload[protocol.GameStatePayload](msg)
	require.NoError(t, err)
	return st
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	r, err := rm.CreateRoom(client, "  Queen of Hearts  ", 0)
	require.NoError(t, err)

	assert.Len(t, r.Code, roomCodeLength)
	assert.Equal(t, 7, r.MaxPlayers, "zero uses the default")
	assert.Equal(t, r.Code, client.GetRoom())
	assert.Same(t, r, rm.GetRoom(r.Code))
	assert.Equal(t, StatusWaiting, r.Status())

	msg := client.LastMessage(protocol.MsgRoomCreated)
	require.NotNil(t, msg)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, r.Code, created.RoomCode)
	assert.Equal(t, 7, created.MaxPlayers)
	assert.True(t, created.Player.IsHost)

	// The lobby view follows room_created
	msgs := client.SentMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, protocol.MsgRoomCreated, msgs[0].Type)
	assert.Equal(t, protocol.MsgPlayerList, msgs[1].Type)
	list, err := codec.ParsePayload[protocol.PlayerListPayload](msgs[1])
	require.NoError(t, err)
	require.Len(t, list.Players, 1)
	assert.Equal(t, "Queen of Hearts", list.Players[0].Name)

	players := r.PlayerList()
	require.Len(t, players, 1)
	assert.Equal(t, "Queen of Hearts", players[0].Name)
	assert.True(t, players[0].IsHost)
	assert.Equal(t, 0, players[0].Seat)
}

func TestCreateRoom_InvalidMaxPlayers(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	for _, n := range []int{1, 9, -3} {
		_, err := rm.CreateRoom(testutil.NewSimpleClient("p1", "Alice"), "", n)
		assert.ErrorIs(t, err, apperrors.ErrInvalidMaxPlayers, "max players %d", n)
	}
	assert.Zero(t, rm.RoomCount())
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Nick", displayName("   ", "Nick"))
	assert.Equal(t, "Alice", displayName(" Alice ", "Nick"))
	assert.Equal(t, "一二三四五六七八九十一二三四五六", displayName("一二三四五六七八九十一二三四五六七八", "Nick"))
}

func TestJoinRoom(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 3)
	require.NoError(t, err)

	guest := testutil.NewSimpleClient("p2", "Bob")
	joined, err := rm.JoinRoom(guest, r.Code, "Bobby")
	require.NoError(t, err)
	assert.Same(t, r, joined)
	assert.Equal(t, r.Code, guest.GetRoom())

	msg := guest.LastMessage(protocol.MsgRoomJoined)
	require.NotNil(t, msg)
	joinedMsg, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, 1, joinedMsg.Player.Seat)
	assert.Equal(t, "Bobby", joinedMsg.Player.Name)
	assert.Len(t, joinedMsg.Players, 2)

	// Existing members learn about the newcomer
	msg = host.LastMessage(protocol.MsgPlayerList)
	require.NotNil(t, msg)
	list, err := codec.ParsePayload[protocol.PlayerListPayload](msg)
	require.NoError(t, err)
	require.Len(t, list.Players, 2)
	assert.Equal(t, "Bobby", list.Players[1].Name)
	assert.False(t, list.Players[1].IsHost)
	assert.Nil(t, guest.LastMessage(protocol.MsgPlayerList))
}

func TestJoinRoom_Rejections(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)

	_, err := rm.JoinRoom(testutil.NewSimpleClient("p3", "Carol"), "000000", "")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = rm.JoinRoom(guest, r.Code, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	_, err = rm.JoinRoom(testutil.NewSimpleClient("p3", "Carol"), r.Code, "")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	require.NoError(t, rm.StartGame(host, r.Code))
	_, err = rm.JoinRoom(testutil.NewSimpleClient("p4", "Dave"), r.Code, "")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 4)
	require.NoError(t, err)

	assert.ErrorIs(t, rm.StartGame(host, r.Code), apperrors.ErrNotEnoughPlayers)

	guest := testutil.NewSimpleClient("p2", "Bob")
	_, err = rm.JoinRoom(guest, r.Code, "")
	require.NoError(t, err)

	assert.ErrorIs(t, rm.StartGame(guest, r.Code), apperrors.ErrNotHost)
	assert.ErrorIs(t, rm.StartGame(testutil.NewSimpleClient("p9", "Eve"), r.Code), apperrors.ErrNotInRoom)

	require.NoError(t, rm.StartGame(host, ""))
	assert.Equal(t, StatusInProgress, r.Status())
	assert.Equal(t, 1, rm.GetActiveGamesCount())

	for _, c := range []*testutil.SimpleClient{host, guest} {
		assert.NotNil(t, c.LastMessage(protocol.MsgGameStarted))
		st := lastState(t, c)
		assert.Equal(t, string(StatusInProgress), st.Status)
		assert.Len(t, st.Hand, 7)
		assert.Equal(t, 0, st.CurrentTurn)
		require.NotNil(t, st.TopCard)
	}

	assert.ErrorIs(t, rm.StartGame(host, r.Code), apperrors.ErrGameStarted)
}

func TestStateView_OnlyOwnHand(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 3)
	require.NoError(t, err)
	clients := []*testutil.SimpleClient{host, testutil.NewSimpleClient("p2", "Bob"), testutil.NewSimpleClient("p3", "Carol")}
	for _, c := range clients[1:] {
		_, err := rm.JoinRoom(c, r.Code, "")
		require.NoError(t, err)
	}
	require.NoError(t, rm.StartGame(host, r.Code))

	r.mu.RLock()
	defer r.mu.RUnlock()
	for seat, c := range clients {
		st := lastState(t, c)
		assert.Equal(t, seat, st.YourSeat)

		hand, err := convert.InfosToCards(st.Hand)
		require.NoError(t, err)
		assert.Equal(t, []card.Card(r.players[seat].Hand), hand)

		require.Len(t, st.Players, 3)
		for _, p := range st.Players {
			assert.Equal(t, 5, p.CardsCount)
		}
		assert.Equal(t, r.deck.Len(), st.DeckSize)
	}
}

func TestPlayCard_RejectionsAreLocal(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.RigForTest(r.Code, RiggedGame{
		Top:   cd(card.Hearts, card.Rank5),
		Deck:  []card.Card{cd(card.Clubs, card.Rank3)},
		Hands: []card.Hand{{cd(card.Clubs, card.RankK)}, {cd(card.Spades, card.Rank9)}},
	}))
	host.Reset()
	guest.Reset()

	assert.ErrorIs(t, rm.PlayCard(guest, r.Code, 0, 0), apperrors.ErrNotYourTurn)
	assert.ErrorIs(t, rm.PlayCard(host, r.Code, 0, 0), apperrors.ErrIllegalMove)
	assert.ErrorIs(t, rm.ChooseSuit(host, r.Code, "stars"), apperrors.ErrInvalidSuit)
	assert.ErrorIs(t, rm.ChooseSuit(host, r.Code, "hearts"), apperrors.ErrNoSuitPending)

	assert.Empty(t, host.SentMessages())
	assert.Empty(t, guest.SentMessages())
}

func TestPlayCard_StaleDuplicate(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.RigForTest(r.Code, RiggedGame{
		Top:  cd(card.Hearts, card.Rank5),
		Deck: []card.Card{cd(card.Clubs, card.Rank3)},
		Hands: []card.Hand{
			{cd(card.Hearts, card.Rank6), cd(card.Hearts, card.Rank9)},
			{cd(card.Spades, card.Rank6), cd(card.Spades, card.Rank9)},
		},
	}))
	v := r.Version()
	host.Reset()
	guest.Reset()

	require.NoError(t, rm.PlayCard(host, r.Code, 0, v))
	assert.ErrorIs(t, rm.PlayCard(host, r.Code, 0, v), apperrors.ErrNotYourTurn)
	assert.ErrorIs(t, rm.PlayCard(host, r.Code, 0, v), apperrors.ErrNotYourTurn)
	assert.ErrorIs(t, rm.PlayCard(guest, r.Code, 0, v), apperrors.ErrStaleIntent)

	assert.Len(t, host.MessagesOfType(protocol.MsgGameState), 1)
	assert.Len(t, guest.MessagesOfType(protocol.MsgGameState), 1)
	st := lastState(t, guest)
	assert.Equal(t, v+1, st.Version)
	assert.Equal(t, 1, st.CurrentTurn)
	assert.Equal(t, 1, st.Players[0].CardsCount)

	require.NoError(t, rm.PlayCard(guest, r.Code, 0, st.Version))
}

func TestEightThenSuitChoice(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.RigForTest(r.Code, RiggedGame{
		Top:   cd(card.Hearts, card.Rank5),
		Deck:  []card.Card{cd(card.Clubs, card.Rank3)},
		Hands: []card.Hand{{cd(card.Clubs, card.Rank8), cd(card.Clubs, card.RankK)}, {cd(card.Spades, card.Rank9)}},
	}))

	require.NoError(t, rm.PlayCard(host, r.Code, 0, 0))
	st := lastState(t, guest)
	assert.Equal(t, string(PhaseAwaitingSuitChoice), st.Phase)
	assert.Equal(t, 0, st.CurrentTurn)

	require.NoError(t, rm.ChooseSuit(host, r.Code, "Diamonds"))
	st = lastState(t, guest)
	assert.Equal(t, "diamonds", st.ForcedSuit)
	assert.Equal(t, 1, st.CurrentTurn)
	assert.Equal(t, string(PhaseAwaitingPlayOrDraw), st.Phase)
}

func TestGameOver(t *testing.T) {
	t.Parallel()

	records := make(chan *storage.GameRecord, 1)
	recorder := &testutil.MockRecorder{}
	recorder.On("RecordCompletedGame", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { records <- args.Get(1).(*storage.GameRecord) }).
		Return(nil)

	rm := newTestManager(t, recorder)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.RigForTest(r.Code, RiggedGame{
		Top:   cd(card.Hearts, card.Rank5),
		Deck:  []card.Card{cd(card.Clubs, card.Rank3)},
		Hands: []card.Hand{{cd(card.Spades, card.Rank5)}, {cd(card.Spades, card.Rank9)}},
	}))
	host.Reset()
	guest.Reset()

	require.NoError(t, rm.PlayCard(host, r.Code, 0, 0))

	for _, c := range []*testutil.SimpleClient{host, guest} {
		msgs := c.SentMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, protocol.MsgGameState, msgs[0].Type)
		require.Equal(t, protocol.MsgGameOver, msgs[1].Type)

		over, err := codec.ParsePayload[protocol.GameOverPayload](msgs[1])
		require.NoError(t, err)
		assert.Equal(t, "Alice", over.WinnerName)
		assert.Equal(t, 0, over.WinnerSeat)
		assert.Empty(t, c.GetRoom())
	}

	assert.Equal(t, StatusCompleted, r.Status())
	assert.Nil(t, rm.GetRoom(r.Code))
	assert.ErrorIs(t, rm.DrawCard(guest, r.Code, 0), apperrors.ErrRoomNotFound)

	select {
	case rec := <-records:
		assert.Equal(t, r.Code, rec.RoomCode)
		assert.Equal(t, "Alice", rec.WinnerName)
		assert.Equal(t, []string{"Alice", "Bob"}, rec.PlayerNames())
		assert.False(t, rec.StartedAt.After(rec.EndedAt))
	case <-time.After(time.Second):
		t.Fatal("completed game was not recorded")
	}
}

func TestGameOver_RecorderFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	called := make(chan struct{})
	recorder := &testutil.MockRecorder{}
	recorder.On("RecordCompletedGame", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(called) }).
		Return(errors.New("database unavailable"))

	rm := newTestManager(t, recorder)
	r, host, _ := twoPlayerRoom(t, rm)
	require.NoError(t, rm.RigForTest(r.Code, RiggedGame{
		Top:   cd(card.Hearts, card.Rank5),
		Hands: []card.Hand{{cd(card.Hearts, card.Rank9)}, {cd(card.Spades, card.Rank9)}},
	}))

	require.NoError(t, rm.PlayCard(host, r.Code, 0, 0))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("recorder was not called")
	}
	assert.Equal(t, StatusCompleted, r.Status())
	assert.NotNil(t, host.LastMessage(protocol.MsgGameOver))
}

func TestLeaveRoom_WaitingPassesHost(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 4)
	require.NoError(t, err)
	guest := testutil.NewSimpleClient("p2", "Bob")
	_, err = rm.JoinRoom(guest, r.Code, "")
	require.NoError(t, err)

	rm.LeaveRoom(host)

	assert.Empty(t, host.GetRoom())
	require.NotNil(t, rm.GetRoom(r.Code))
	players := r.PlayerList()
	require.Len(t, players, 1)
	assert.Equal(t, "Bob", players[0].Name)
	assert.True(t, players[0].IsHost)
	assert.NotNil(t, guest.LastMessage(protocol.MsgPlayerList))

	// The new host can start once someone else joins
	_, err = rm.JoinRoom(testutil.NewSimpleClient("p3", "Carol"), r.Code, "")
	require.NoError(t, err)
	require.NoError(t, rm.StartGame(guest, r.Code))

	rm.LeaveRoom(testutil.NewSimpleClient("p9", "Nobody"))
}

func TestLeaveRoom_LastPlayerDeletesRoom(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 4)
	require.NoError(t, err)

	rm.LeaveRoom(host)

	assert.Nil(t, rm.GetRoom(r.Code))
	assert.Equal(t, StatusAbandoned, r.Status())
}

func TestLeaveRoom_InProgressAbandons(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.StartGame(host, r.Code))

	rm.LeaveRoom(guest)

	assert.Equal(t, StatusAbandoned, r.Status())
	assert.Nil(t, rm.GetRoom(r.Code))
	assert.Empty(t, host.GetRoom())
	assert.Empty(t, guest.GetRoom())

	msg := host.LastMessage(protocol.MsgRoomClosed)
	require.NotNil(t, msg)
	closed, err := codec.ParsePayload[protocol.RoomClosedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, r.Code, closed.RoomCode)
	assert.Contains(t, closed.Reason, "Bob")
	assert.Nil(t, guest.LastMessage(protocol.MsgRoomClosed))

	assert.ErrorIs(t, rm.DrawCard(host, r.Code, 0), apperrors.ErrRoomNotFound)
	assert.ErrorIs(t, rm.DrawCard(host, "", 0), apperrors.ErrNotInRoom)
}

func TestGetRoomList(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)

	open, err := rm.CreateRoom(testutil.NewSimpleClient("p1", "Alice"), "", 4)
	require.NoError(t, err)
	// Full rooms are not listed
	twoPlayerRoom(t, rm)

	started, err := rm.CreateRoom(testutil.NewSimpleClient("p5", "Eve"), "", 3)
	require.NoError(t, err)
	_, err = rm.JoinRoom(testutil.NewSimpleClient("p6", "Frank"), started.Code, "")
	require.NoError(t, err)
	require.NoError(t, rm.StartGame(testutil.NewSimpleClient("p5", "Eve"), started.Code))

	rooms := rm.GetRoomList()
	require.Len(t, rooms, 1)
	assert.Equal(t, open.Code, rooms[0].RoomCode)
	assert.Equal(t, "Alice", rooms[0].HostName)
	assert.Equal(t, 1, rooms[0].PlayerCount)
	assert.Equal(t, 4, rooms[0].MaxPlayers)
}

func TestConcurrentIntents_AreSerialized(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	r, host, guest := twoPlayerRoom(t, rm)
	require.NoError(t, rm.StartGame(host, r.Code))
	start := r.Version()
	host.Reset()

	clients := []*testutil.SimpleClient{host, guest}
	var wg sync.WaitGroup
	var accepted atomic.Int64
	for i := range 60 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rm.DrawCard(clients[i%2], r.Code, 0) == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Positive(t, accepted.Load())

	r.mu.RLock()
	assertInvariants(t, r)
	assert.Equal(t, start+accepted.Load(), r.version)
	r.mu.RUnlock()

	// Snapshots reach each client in commit order
	var last int64
	for _, msg := range host.MessagesOfType(protocol.MsgGameState) {
		st, err := codec.ParsePayload[protocol.GameStatePayload](msg)
		require.NoError(t, err)
		assert.Greater(t, st.Version, last)
		last = st.Version
	}
	assert.Equal(t, start+accepted.Load(), last)
}

func TestSoloRoom_BotsTakeTurns(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	human := testutil.NewSimpleClient("p1", "Alice")

	_, err := rm.CreateSoloRoom(human, "", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMaxPlayers)
	_, err = rm.CreateSoloRoom(human, "", MaxPlayers)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMaxPlayers)

	r, err := rm.CreateSoloRoom(human, "", 2)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, r.Status())
	assert.Equal(t, r.Code, human.GetRoom())

	// room_created and the seat list precede the first snapshot
	msgs := human.SentMessages()
	require.GreaterOrEqual(t, len(msgs), 4)
	assert.Equal(t, protocol.MsgRoomCreated, msgs[0].Type)
	assert.Equal(t, protocol.MsgPlayerList, msgs[1].Type)
	assert.Equal(t, protocol.MsgGameStarted, msgs[2].Type)
	assert.Equal(t, protocol.MsgGameState, msgs[3].Type)

	players := r.PlayerList()
	require.Len(t, players, 3)
	assert.False(t, players[0].IsBot)
	assert.True(t, players[1].IsBot)
	assert.True(t, players[2].IsBot)
	assert.Equal(t, "Bot 1", players[1].Name)

	st := lastState(t, human)
	require.Equal(t, 0, st.CurrentTurn)
	require.NoError(t, rm.DrawCard(human, r.Code, st.Version))
	after := st.Version + 1

	// Both bots act on their own and hand the turn back, unless one of them wins first
	assert.Eventually(t, func() bool {
		st, ok := r.StateFor("p1")
		return ok && (st.Status != string(StatusInProgress) || (st.CurrentTurn == 0 && st.Version > after))
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRedisMirror(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client)

	rm := NewRoomManager(store, nil, Options{})
	t.Cleanup(rm.Close)

	host := testutil.NewSimpleClient("p1", "Alice")
	r, err := rm.CreateRoom(host, "", 4)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Eventually(t, func() bool {
		data, err := store.LoadRoom(ctx, r.Code)
		return err == nil && data != nil && data.Status == string(StatusWaiting) && len(data.Players) == 1
	}, time.Second, 5*time.Millisecond)

	rm.LeaveRoom(host)

	assert.Eventually(t, func() bool {
		data, err := store.LoadRoom(ctx, r.Code)
		return err == nil && data == nil
	}, time.Second, 5*time.Millisecond)
}

func TestRedisMirror_CreateLeaveChurnLeavesNoKeys(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rm := NewRoomManager(storage.NewRedisStore(client), nil, Options{})
	t.Cleanup(rm.Close)

	for i := range 250 {
		host := testutil.NewSimpleClient(fmt.Sprintf("p%d", i), "Alice")
		_, err := rm.CreateRoom(host, "", 4)
		require.NoError(t, err)
		rm.LeaveRoom(host)
	}
	assert.Zero(t, rm.RoomCount())

	require.Eventually(t, rm.mirror.idle, 5*time.Second, 5*time.Millisecond)
	for _, key := range mr.Keys() {
		assert.False(t, strings.HasPrefix(key, "room:"), "deleted room resurrected as %s", key)
	}
}

func TestCreateRoom_HostSeatedBeforeVisible(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, nil)
	const creators = 50

	stop := make(chan struct{})
	var joiners sync.WaitGroup
	for j := range 4 {
		joiners.Add(1)
		go func() {
			defer joiners.Done()
			for n := 0; ; n++ {
				select {
				case <-stop:
					return
				default:
				}
				for _, r := range rm.snapshotRooms() {
					c := testutil.NewSimpleClient(fmt.Sprintf("j%d-%d", j, n), fmt.Sprintf("Joiner %d-%d", j, n))
					_, _ = rm.JoinRoom(c, r.Code, "")
				}
			}
		}()
	}

	hosts := make([]*testutil.SimpleClient, creators)
	rooms := make([]*Room, creators)
	var wg sync.WaitGroup
	for i := range creators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hosts[i] = testutil.NewSimpleClient(fmt.Sprintf("h%d", i), fmt.Sprintf("Host %d", i))
			r, err := rm.CreateRoom(hosts[i], "", 8)
			assert.NoError(t, err)
			rooms[i] = r
		}()
	}
	wg.Wait()
	close(stop)
	joiners.Wait()

	for i, r := range rooms {
		require.NotNil(t, r)
		players := r.PlayerList()
		require.NotEmpty(t, players)
		assert.Equal(t, hosts[i].Name, players[0].Name, "room %s", r.Code)
		assert.True(t, players[0].IsHost)
		for _, p := range players[1:] {
			assert.False(t, p.IsHost, "room %s seat %d", r.Code, p.Seat)
		}

		msg := hosts[i].LastMessage(protocol.MsgRoomCreated)
		require.NotNil(t, msg)
		created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
		require.NoError(t, err)
		assert.Equal(t, hosts[i].Name, created.Player.Name)
		assert.Equal(t, 0, created.Player.Seat)
	}
}

func TestJoinRoom_NameTaken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		join    string
		wantErr error
	}{
		{"Exact duplicate", "Alice", apperrors.ErrNameTaken},
		{"Case-insensitive duplicate", "  aLiCe ", apperrors.ErrNameTaken},
		{"Distinct name", "Alicia", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rm := newTestManager(t, nil)
			r, err := rm.CreateRoom(testutil.NewSimpleClient("p1", "Alice"), "", 4)
			require.NoError(t, err)

			guest := testutil.NewSimpleClient("p2", "Nick")
			_, err = rm.JoinRoom(guest, r.Code, tt.join)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, guest.GetRoom())
				assert.Len(t, r.PlayerList(), 1)
				return
			}
			require.NoError(t, err)
			assert.Len(t, r.PlayerList(), 2)
		})
	}
}
