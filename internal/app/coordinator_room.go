package app

import (
	"quiz-duel-service/internal/domain"
)

const (
	reasonOwnerLeft = "the room owner has closed the room"
	reasonExpired   = "the room expired"
)

func (c *Coordinator) createRoom(connID, ownerName, reserved string) ([]domain.Outbound, *domain.Room, error) {
	if _, ok := c.roster.Get(connID); ok {
		return nil, nil, domain.ErrAlreadyJoined
	}
	name, err := ValidateName(ownerName)
	if err != nil {
		return nil, nil, err
	}

	room := c.rooms.CreateWithCode(connID, name, reserved)
	c.roster.Register(connID, name, domain.RoleOwner, room.Code)

	c.logger.Info().Str("room", room.Code).Str("owner", name).Msg("room created")
	return []domain.Outbound{
		domain.Unicast(connID, domain.EventRoomCreated, domain.RoomCreatedPayload{Code: room.Code, OwnerName: name}),
	}, room, nil
}

func (c *Coordinator) joinRoom(connID, playerName, code string) ([]domain.Outbound, error) {
	if _, ok := c.roster.Get(connID); ok {
		return nil, domain.ErrAlreadyJoined
	}
	name, err := ValidateName(playerName)
	if err != nil {
		return nil, err
	}
	code, err = ValidateCode(code)
	if err != nil {
		return nil, err
	}
	room, err := c.rooms.Lookup(code)
	if err != nil {
		return nil, err
	}

	c.roster.Register(connID, name, domain.RolePlayer, room.Code)
	room.AddPlayer(connID)

	c.logger.Info().Str("room", room.Code).Str("player", name).Int("players", room.PlayerCount()).Msg("player joined")
	return []domain.Outbound{
		domain.Unicast(connID, domain.EventRoomJoined, domain.RoomJoinedPayload{
			Code:      room.Code,
			OwnerName: room.OwnerName,
			Question:  room.Round.Public(),
		}),
		domain.Multicast(room, domain.EventParticipantJoined, domain.ParticipantPayload{
			Name:        name,
			PlayerCount: room.PlayerCount(),
		}),
	}, nil
}

func (c *Coordinator) roomInfo(connID string) ([]domain.Outbound, error) {
	p, room, err := c.membership(connID)
	if err != nil {
		return nil, err
	}
	return []domain.Outbound{
		domain.Unicast(connID, domain.EventRoomInfo, domain.RoomInfoPayload{
			Code:        room.Code,
			OwnerName:   room.OwnerName,
			PlayerCount: room.PlayerCount(),
			IsOwner:     p.Role.IsOwner(),
			RoundActive: room.Round.IsActive(),
			Question:    room.Round.Public(),
		}),
	}, nil
}

func (c *Coordinator) systemStats(connID string) ([]domain.Outbound, error) {
	if _, _, err := c.ownership(connID); err != nil {
		return nil, err
	}
	return []domain.Outbound{
		domain.Unicast(connID, domain.EventSystemStats, domain.SystemStatsPayload{
			Rooms:  c.rooms.Stats(),
			Roster: c.roster.Stats(),
		}),
	}, nil
}

// disconnect removes the connection from the roster and from its room together.
// An owner leaving closes the room for every player.
func (c *Coordinator) disconnect(connID string) []domain.Outbound {
	p, ok := c.roster.Get(connID)
	if !ok {
		return nil
	}
	room, err := c.rooms.Lookup(p.RoomCode)
	if err != nil {
		c.roster.Remove(connID)
		return nil
	}

	if p.Role.IsOwner() {
		out := c.closeRoom(room, reasonOwnerLeft)
		c.logger.Info().Str("room", room.Code).Str("owner", p.Name).Msg("room closed, owner disconnected")
		return out
	}

	room.RemovePlayer(connID)
	c.roster.Remove(connID)
	c.logger.Info().Str("room", room.Code).Str("player", p.Name).Int("players", room.PlayerCount()).Msg("player left")
	return []domain.Outbound{
		domain.Multicast(room, domain.EventParticipantLeft, domain.ParticipantPayload{
			Name:        p.Name,
			PlayerCount: room.PlayerCount(),
		}),
	}
}

// closeRoom notifies each player once, then drops the room, its players and its owner.
// Players stay connected but are no longer identified and may create or join again.
func (c *Coordinator) closeRoom(room *domain.Room, reason string) []domain.Outbound {
	players := room.Players()
	out := make([]domain.Outbound, 0, len(players))
	for _, id := range players {
		out = append(out, domain.Unicast(id, domain.EventRoomClosed, domain.RoomClosedPayload{Reason: reason}))
		room.RemovePlayer(id)
		c.roster.Remove(id)
	}
	c.rooms.Delete(room.Code)
	c.roster.Remove(room.OwnerID)
	c.releaseCode(room.Code)
	return out
}

func (c *Coordinator) sweep() []domain.Outbound {
	var out []domain.Outbound
	for _, room := range c.rooms.Expired() {
		out = append(out, domain.Unicast(room.OwnerID, domain.EventRoomClosed, domain.RoomClosedPayload{Reason: reasonExpired}))
		out = append(out, c.closeRoom(room, reasonExpired)...)
		c.logger.Info().Str("room", room.Code).Msg("expired room swept")
	}
	return out
}

// membership resolves an identified connection and its room.
func (c *Coordinator) membership(connID string) (*domain.Participant, *domain.Room, error) {
	p, ok := c.roster.Get(connID)
	if !ok {
		return nil, nil, domain.ErrUnidentified
	}
	room, err := c.rooms.Lookup(p.RoomCode)
	if err != nil {
		return nil, nil, err
	}
	return p, room, nil
}

// ownership resolves the room owned by connID.
func (c *Coordinator) ownership(connID string) (*domain.Participant, *domain.Room, error) {
	p, ok := c.roster.Get(connID)
	if !ok || !p.Role.IsOwner() {
		return nil, nil, domain.ErrNoPermission
	}
	room, err := c.rooms.Lookup(p.RoomCode)
	if err != nil {
		return nil, nil, err
	}
	return p, room, nil
}
