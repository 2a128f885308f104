package server

// PlayerID 会话标识，同时作为世界中玩家实体的 ID
type PlayerID string

// Sender 房间向客户端推送消息的出口；只在房间协程内调用
type Sender interface {
	Enqueue(b []byte)
	Close()
}
