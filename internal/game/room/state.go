package room

// Status 房间生命周期状态，只会单向推进
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Closed 房间是否已结束（完成或中途解散）
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Phase 对局进行中的回合子状态
type Phase string

const (
	PhaseNone               Phase = ""
	PhaseAwaitingPlayOrDraw Phase = "awaiting_play_or_draw"
	PhaseAwaitingSuitChoice Phase = "awaiting_suit_choice"
	PhaseGameOver           Phase = "game_over"
)
