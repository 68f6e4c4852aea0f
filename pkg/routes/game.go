package routes

import (
	"github.com/DedS3t/tycoon-backend/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func GameRoutes(a *fiber.App, g *controllers.GameController) {
	route := a.Group("/game")
	route.Post("/create", g.CreateGame)
	route.Get("/verify", g.VerifyGame)
	route.Get("/all", g.GetAllAvailGames)
	route.Get("/:id/state", g.GameState)
	route.Get("/:id/history", g.GameHistory)
	route.Get("/:id/standings", g.GameStandings)
}
