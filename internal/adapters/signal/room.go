package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	RoomCode      domain.RoomCode `json:"roomCode"`
	VoterIdentity domain.VoterID  `json:"voterIdentity"`
	Label         string          `json:"label"`
}

type leavePayload struct {
	RoomCode domain.RoomCode `json:"roomCode"`
}

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, MsgJoinRoom, codeBadPayload, "")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomCode)).Str("voter", string(p.VoterIdentity)).Msg("join")
	if err := ctl.Orch.Join(ctx, sid, p.RoomCode, p.VoterIdentity, p.Label); err != nil {
		ctl.sendError(conn, MsgJoinRoom, errorCode(err), "")
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, MsgLeaveRoom, codeBadPayload, "")
		return
	}

	room := p.RoomCode
	if room == "" {
		room, _, _ = ctl.Orch.Registry.RoomOf(sid)
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("leave")
	if err := ctl.Orch.Leave(sid, p.RoomCode); err != nil {
		ctl.sendError(conn, MsgLeaveRoom, errorCode(err), "")
		return
	}
	ctl.sendJSON(conn, struct {
		Type     string          `json:"type"`
		RoomCode domain.RoomCode `json:"roomCode"`
	}{
		Type:     "left",
		RoomCode: room,
	})
}
