package controllers

import (
	"encoding/json"
	"strings"

	"github.com/DedS3t/tycoon-backend/app/engine"
	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type GameController struct {
	Manager *engine.Manager
	// Cache is optional. Without it state is read from the live session.
	Cache queries.Reader
}

func (g *GameController) CreateGame(c *fiber.Ctx) error {
	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	name := strings.TrimSpace(gameCreateDto.Name)
	if name == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	s := g.Manager.Create(name)
	logrus.WithFields(logrus.Fields{"game": s.Id(), "name": name}).Info("game created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": s.Id()})
}

func (g *GameController) GetAllAvailGames(c *fiber.Ctx) error {
	return c.JSON(g.Manager.List(models.GameLobby))
}

func (g *GameController) VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	s, ok := g.Manager.Get(verifyGameDto.Code)
	if !ok {
		return c.JSON(fiber.Map{"status": false})
	}
	return c.JSON(fiber.Map{"status": s.Snapshot().Status == models.GameLobby})
}

// GameState serves the cached snapshot, falling back to the live session when
// redis has nothing.
func (g *GameController) GameState(c *fiber.Ctx) error {
	id := c.Params("id")
	if g.Cache != nil {
		data, err := g.Cache.Snapshot(id)
		if err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(data)
		}
		logrus.WithError(err).WithField("game", id).Debug("snapshot cache miss")
	}
	s, ok := g.Manager.Get(id)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (g *GameController) GameHistory(c *fiber.Ctx) error {
	s, ok := g.Manager.Get(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(s.History())
}

func (g *GameController) GameStandings(c *fiber.Ctx) error {
	id := c.Params("id")
	if g.Cache != nil {
		standings, err := queries.Standings(g.Cache, id)
		if err == nil && len(standings) > 0 {
			return c.JSON(standings)
		}
	}
	s, ok := g.Manager.Get(id)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(queries.SnapshotStandings(s.Snapshot()))
}
