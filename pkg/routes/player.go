package routes

import (
	"github.com/DedS3t/tycoon-backend/app/controllers"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
)

func PlayerRoutes(a *fiber.App, secret string, g *controllers.GameController) {
	route := a.Group("/player", jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
	}))
	route.Get("/cur", controllers.Cur)
	route.Get("/turn", g.PlayerTurn)
}
