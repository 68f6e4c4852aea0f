package engine

import (
	"context"
	"strings"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	uuid "github.com/satori/go.uuid"
)

const maxNameLength = 20

func (s *Session) lobbyUpdate() {
	u := LobbyUpdate{GameId: s.id, Status: s.status, Players: make([]LobbyPlayer, 0, len(s.players))}
	for _, p := range s.players {
		u.Players = append(u.Players, LobbyPlayer{
			Id:        p.Id,
			Name:      p.Name,
			Piece:     p.Piece,
			Ready:     p.Ready,
			Connected: p.Connected,
		})
	}
	s.broadcast(EventLobbyUpdate, u)
}

func (s *Session) playerByName(name string) *models.Player {
	for _, p := range s.players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// Join adds a player to the lobby. A disconnected player with the same name is
// re-attached instead, keeping everything they had, whether or not the game
// has started.
func (s *Session) Join(ctx context.Context, name string) (models.PlayerDto, error) {
	s.lock()
	defer s.unlock()

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return models.PlayerDto{}, fail(CodeInvalidName, "name must be 1 to %d characters", maxNameLength)
	}
	if p := s.playerByName(name); p != nil {
		if p.Connected {
			return models.PlayerDto{}, fail(CodeNameTaken, "%s is already playing", p.Name)
		}
		err := s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
			p.Connected = true
			s.record("reconnect", p.Id, nil)
			s.lobbyUpdate()
			return nil
		})
		if err != nil {
			return models.PlayerDto{}, err
		}
		s.log.WithField("player", p.Id).Info("player reconnected")
		return p.Dto(), nil
	}
	if s.status != models.GameLobby {
		return models.PlayerDto{}, fail(CodeGameInProgress, "game has already started")
	}
	if len(s.players) >= MaxPlayers {
		return models.PlayerDto{}, fail(CodeGameFull, "game is full")
	}

	p := &models.Player{
		Id:        uuid.NewV4().String(),
		Game_id:   s.id,
		Name:      name,
		Money:     StartingMoney,
		TileId:    s.graph.StartTile(),
		Connected: true,
	}
	err := s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		s.players = append(s.players, p)
		s.record("join", p.Id, map[string]interface{}{"name": name})
		s.lobbyUpdate()
		return nil
	})
	if err != nil {
		return models.PlayerDto{}, err
	}
	s.log.WithField("player", p.Id).Info("player joined")
	return p.Dto(), nil
}

// SelectPiece claims a token. Pieces are unique within a game.
func (s *Session) SelectPiece(ctx context.Context, playerId, piece string) error {
	s.lock()
	defer s.unlock()

	p, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}
	if s.status != models.GameLobby {
		return fail(CodeGameInProgress, "game has already started")
	}
	if !validPiece(piece) {
		return fail(CodeInvalidPiece, "unknown piece %q", piece)
	}
	for _, o := range s.players {
		if o != p && o.Piece == piece {
			return fail(CodePieceTaken, "%s is taken", piece)
		}
	}
	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.Piece = piece
		s.record("selectPiece", p.Id, map[string]interface{}{"piece": piece})
		s.lobbyUpdate()
		return nil
	})
}

// SetReady marks a player ready. The game starts as soon as at least
// MinPlayers are in the lobby and all of them are ready.
func (s *Session) SetReady(ctx context.Context, playerId string, ready bool) error {
	s.lock()
	defer s.unlock()

	p, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}
	if s.status != models.GameLobby {
		return fail(CodeGameInProgress, "game has already started")
	}
	if ready && p.Piece == "" {
		return fail(CodePieceRequired, "pick a piece first")
	}
	return s.apply(ctx, s.players, func(tx database.Tx) error {
		p.Ready = ready
		s.record("ready", p.Id, map[string]interface{}{"ready": ready})
		s.lobbyUpdate()
		if s.allReady() {
			s.start()
		}
		return nil
	})
}

func (s *Session) allReady() bool {
	if len(s.players) < MinPlayers {
		return false
	}
	for _, p := range s.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// start moves the lobby into play. Turn order is join order.
func (s *Session) start() {
	s.status = models.GameInProgress
	s.current = 0
	start := s.graph.StartTile()
	players := make([]models.PlayerDto, 0, len(s.players))
	for _, p := range s.players {
		p.TileId, p.PrevTile = start, 0
		p.HasRolled, p.HasMoved = false, false
		players = append(players, p.Dto())
	}
	s.record("gameStart", "", map[string]interface{}{"players": len(s.players)})
	s.broadcast(EventGameStart, GameStart{Players: players, CurrentPlayerId: s.players[0].Id})
	s.log.WithField("players", len(s.players)).Info("game started")
}
