package routes

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DedS3t/tycoon-backend/app/controllers"
	"github.com/DedS3t/tycoon-backend/app/engine"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/DedS3t/tycoon-backend/platform/database"
	socket "github.com/DedS3t/tycoon-backend/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerCurNeedsToken(t *testing.T) {
	app := fiber.New()
	g := &controllers.GameController{Manager: engine.NewManager(board.LoadBoard(), database.NewMemoryStore())}
	PlayerRoutes(app, "secret", g)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/player/cur", nil))
	require.NoError(t, err)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	token, err := socket.IssueToken([]byte("secret"), "GAME0001", "player-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/player/cur", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "player-1", string(body))

	forged, err := socket.IssueToken([]byte("other"), "GAME0001", "player-1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/player/cur", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGameRoutesAreMounted(t *testing.T) {
	app := fiber.New()
	g := &controllers.GameController{Manager: engine.NewManager(board.LoadBoard(), database.NewMemoryStore())}
	GameRoutes(app, g)
	s := g.Manager.Create("mounted")

	paths := []string{
		"/game/all",
		"/game/verify?code=" + s.Id(),
		"/game/" + s.Id() + "/state",
		"/game/" + s.Id() + "/history",
		"/game/" + s.Id() + "/standings",
	}
	for _, path := range paths {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestPlayerTurnReadsLiveSession(t *testing.T) {
	app := fiber.New()
	g := &controllers.GameController{Manager: engine.NewManager(board.LoadBoard(), database.NewMemoryStore())}
	PlayerRoutes(app, "secret", g)

	s := g.Manager.Create("turns")
	ctx := context.Background()
	a, err := s.Join(ctx, "Alice")
	require.NoError(t, err)
	b, err := s.Join(ctx, "Bob")
	require.NoError(t, err)
	require.NoError(t, s.SelectPiece(ctx, a.Id, "car"))
	require.NoError(t, s.SelectPiece(ctx, b.Id, "hat"))
	require.NoError(t, s.SetReady(ctx, a.Id, true))
	require.NoError(t, s.SetReady(ctx, b.Id, true))

	for id, want := range map[string]string{a.Id: `{"turn":true}`, b.Id: `{"turn":false}`} {
		token, err := socket.IssueToken([]byte("secret"), s.Id(), id)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/player/turn", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := ioutil.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, want, string(body))
	}
}
