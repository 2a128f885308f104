package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"sokoarena/arena"
)

// Input 已归属到会话的客户端意图，按到达顺序进入房间
type Input struct {
	PlayerID PlayerID
	Intent   arena.Intent
	Seq      int64 // 客户端本地序列号，仅用于日志与确认
}

// InputMessage 入站 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","dir":1}
type InputMessage struct {
	Type    string         `json:"type"`
	Dir     *int           `json:"dir,omitempty"`
	Seq     int64          `json:"seq,omitempty"`
	Profile *arena.Profile `json:"profile,omitempty"`
}

var errInvalidMessage = errors.New("invalid message")

// ParseInput 校验并解析一条入站消息
func ParseInput(pid PlayerID, payload []byte) (Input, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Input{}, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	if err := intentValidator.Validate(raw); err != nil {
		return Input{}, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return Input{}, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}

	in := Input{PlayerID: pid, Seq: im.Seq}
	in.Intent = arena.Intent{Kind: arena.IntentKind(im.Type), Session: string(pid)}
	if im.Dir != nil {
		in.Intent.Dir = arena.Direction(*im.Dir)
	}
	if im.Profile != nil {
		in.Intent.Profile = *im.Profile
	}
	return in, nil
}
