package controllers

import (
	"github.com/DedS3t/tycoon-backend/platform/queries"
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
)

func tokenClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	user, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := user.Claims.(jwt.MapClaims)
	return claims, ok
}

// Cur returns the player id carried by the token issued on joinLobby.
func Cur(c *fiber.Ctx) error {
	claims, ok := tokenClaims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	player_id, ok := claims["player_id"].(string)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	return c.SendString(player_id)
}

// PlayerTurn reports whether it is the token holder's turn.
func (g *GameController) PlayerTurn(c *fiber.Ctx) error {
	claims, ok := tokenClaims(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	game_id, _ := claims["game_id"].(string)
	player_id, _ := claims["player_id"].(string)

	if g.Cache != nil {
		return c.JSON(fiber.Map{"turn": queries.IsPlayerTurn(g.Cache, game_id, player_id)})
	}
	s, ok := g.Manager.Get(game_id)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(fiber.Map{"turn": s.CurrentPlayerId() == player_id})
}
