package room

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/storage"
	"github.com/palemoky/crazy-eights/internal/types"
)

const maxNameLength = 16

// RoomStore 房间元数据镜像
type RoomStore interface {
	SaveRoom(ctx context.Context, code string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
}

// Options 房间管理器配置
type Options struct {
	DefaultMaxPlayers int
	RoomTimeout       time.Duration // 等待中的房间超过该时长被清理
	BotDelay          time.Duration // 机器人每步之前的延迟
	StoreTimeout      time.Duration // 单次 Redis / 归档写入超时
	NewRand           func() *rand.Rand
}

func (o Options) withDefaults() Options {
	o.DefaultMaxPlayers = cmp.Or(o.DefaultMaxPlayers, 7)
	o.RoomTimeout = cmp.Or(o.RoomTimeout, 10*time.Minute)
	o.BotDelay = cmp.Or(o.BotDelay, 800*time.Millisecond)
	o.StoreTimeout = cmp.Or(o.StoreTimeout, 5*time.Second)
	if o.NewRand == nil {
		o.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	return o
}

// RoomManager 房间注册表。
// 加锁顺序：可以在持有 Room.mu 时获取 rm.mu，反之不行。
type RoomManager struct {
	mirror   *roomMirror // store 为 nil 时为 nil
	recorder storage.Recorder
	opts     Options
	rooms    map[string]*Room
	mu       sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewRoomManager 创建房间管理器，store 和 recorder 可以为 nil
func NewRoomManager(store RoomStore, recorder storage.Recorder, opts Options) *RoomManager {
	rm := &RoomManager{
		recorder: recorder,
		opts:     opts.withDefaults(),
		rooms:    make(map[string]*Room),
		done:     make(chan struct{}),
	}

	if store != nil {
		rm.mirror = newRoomMirror(store, rm.opts.StoreTimeout)
		go rm.mirror.run(rm.done)
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// Close 停止清理协程，写完已排队的房间镜像
func (rm *RoomManager) Close() {
	rm.closeOnce.Do(func() { close(rm.done) })
}

// CreateRoom 创建房间，创建者成为 0 号座位的房主
func (rm *RoomManager) CreateRoom(client types.ClientInterface, name string, maxPlayers int) (*Room, error) {
	maxPlayers = cmp.Or(maxPlayers, rm.opts.DefaultMaxPlayers)
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, apperrors.ErrInvalidMaxPlayers
	}

	r := rm.register(maxPlayers, humanPlayer(client, name, true))
	defer r.mu.Unlock()

	client.SetRoom(r.Code)
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, r.roomCreatedPayload()))
	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerList, r.playerListPayload()))
	rm.persist(r)

	logger.LogInfo("🏠 房间 %s 已创建，房主 %s，人数上限 %d", r.Code, r.players[0].Name, maxPlayers)
	return r, nil
}

// CreateSoloRoom 创建单人房间：其余座位由机器人占据，并立即开始
func (rm *RoomManager) CreateSoloRoom(client types.ClientInterface, name string, bots int) (*Room, error) {
	if bots < 1 || bots+1 > MaxPlayers {
		return nil, apperrors.ErrInvalidMaxPlayers
	}

	players := []*Player{humanPlayer(client, name, true)}
	for i := 1; i <= bots; i++ {
		players = append(players, newBotPlayer(i, SimpleStrategy{}))
	}

	r := rm.register(bots+1, players...)
	defer r.mu.Unlock()

	client.SetRoom(r.Code)

	if err := r.start(); err != nil {
		r.detachClients()
		r.status = StatusAbandoned
		rm.removeRoom(r.Code)
		return nil, err
	}

	logger.LogInfo("🤖 单人房间 %s 已创建，玩家 %s，机器人 %d 个", r.Code, r.players[0].Name, bots)
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, r.roomCreatedPayload()))
	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerList, r.playerListPayload()))
	rm.announceStart(r)
	return r, nil
}

// JoinRoom 加入等待中的房间
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code, name string) (*Room, error) {
	r := rm.GetRoom(code)
	if r == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.status.Closed():
		return nil, apperrors.ErrRoomNotFound
	case r.status != StatusWaiting:
		return nil, apperrors.ErrGameStarted
	case r.seatOf(client.GetID()) >= 0:
		return nil, apperrors.ErrAlreadyInRoom
	case len(r.players) >= r.MaxPlayers:
		return nil, apperrors.ErrRoomFull
	}

	p := humanPlayer(client, name, false)
	if r.nameTaken(p.Name) {
		return nil, apperrors.ErrNameTaken
	}

	seat := len(r.players)
	r.players = append(r.players, p)
	client.SetRoom(r.Code)

	logger.LogInfo("👤 玩家 %s 加入房间 %s", r.players[seat].Name, r.Code)

	// 先回复加入者，再通知其他成员
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode:   r.Code,
		MaxPlayers: r.MaxPlayers,
		Player:     r.playerInfo(seat),
		Players:    r.playerInfos(),
	}))

	r.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerList, r.playerListPayload()))
	rm.persist(r)
	return r, nil
}

// LeaveRoom 离开当前房间；对局进行中离开会解散房间
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	client.SetRoom("")

	r := rm.GetRoom(code)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(client.GetID())
	if seat < 0 {
		return
	}
	name := r.players[seat].Name

	switch r.status {
	case StatusInProgress:
		r.abandon()
		r.broadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgRoomClosed, protocol.RoomClosedPayload{
			RoomCode: r.Code,
			Reason:   "玩家 " + name + " 离开，对局已终止",
		}))
		r.detachClients()
		rm.removeRoom(r.Code)
		logger.Room(r.Code).Info().Str("player", name).Int64("version", r.version).Msg("🚪 对局中途解散")

	case StatusWaiting:
		wasHost := r.players[seat].IsHost
		r.players = slices.Delete(r.players, seat, seat+1)
		logger.LogInfo("👋 玩家 %s 离开房间 %s (座位 %d)", name, r.Code, seat)

		if !r.hasHumans() {
			r.detachClients()
			r.status = StatusAbandoned
			rm.removeRoom(r.Code)
			logger.LogInfo("🏠 房间 %s 已解散", r.Code)
			return
		}
		if wasHost {
			r.players[0].IsHost = true
		}
		r.broadcast(codec.MustNewMessage(protocol.MsgPlayerList, r.playerListPayload()))
		rm.persist(r)
	}
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// GetRoomList 获取可加入的房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rooms := make([]protocol.RoomListItem, 0)
	for _, r := range rm.snapshotRooms() {
		r.mu.RLock()
		if r.status == StatusWaiting && len(r.players) < r.MaxPlayers {
			rooms = append(rooms, r.roomListItem())
		}
		r.mu.RUnlock()
	}
	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int { return strings.Compare(a.RoomCode, b.RoomCode) })
	return rooms
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	count := 0
	for _, r := range rm.snapshotRooms() {
		if r.Status() == StatusInProgress {
			count++
		}
	}
	return count
}

// RoomCount 注册表中的房间数
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func humanPlayer(client types.ClientInterface, name string, host bool) *Player {
	return &Player{
		ID:         client.GetID(),
		Name:       displayName(name, client.GetName()),
		IsHost:     host,
		Controller: Human{Client: client},
	}
}

// displayName 去掉首尾空白并截断，为空时使用连接昵称
func displayName(name, fallback string) string {
	name = cmp.Or(strings.TrimSpace(name), fallback)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}

// register 生成唯一房间号并登记新房间。
// 玩家在房间可见之前就座，返回时调用方持有 r.mu。
func (rm *RoomManager) register(maxPlayers int, players ...*Player) *Room {
	r := newRoom("", maxPlayers, rm.opts.NewRand())
	r.players = append(r.players, players...)
	r.mu.Lock()

	rm.mu.Lock()
	defer rm.mu.Unlock()
	r.Code = rm.generateRoomCode()
	rm.rooms[r.Code] = r
	return r
}

// generateRoomCode 生成房间号（调用方持有 rm.mu）
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

func (rm *RoomManager) snapshotRooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// removeRoom 从注册表和 Redis 中删除房间（调用方持有 r.mu）
func (rm *RoomManager) removeRoom(code string) {
	rm.mu.Lock()
	delete(rm.rooms, code)
	rm.mu.Unlock()

	if rm.mirror != nil {
		rm.mirror.enqueue(mirrorOp{code: code})
	}
}

// persist 镜像房间元数据到 Redis（调用方持有 r.mu）
func (rm *RoomManager) persist(r *Room) {
	if rm.mirror != nil {
		rm.mirror.enqueue(mirrorOp{code: r.Code, data: r.toRoomData()})
	}
}
