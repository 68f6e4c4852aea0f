package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/gomodule/redigo/redis"
)

var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotCache mirrors the last committed state of every session into redis so
// readers never touch the live session.
//
//	<game>           current player id
//	<game>.order     turn order
//	<game>.<player>  hash: bal, loan, pos, piece
//	<game>.snapshot  full JSON snapshot
type SnapshotCache struct {
	pool *redis.Pool
}

func NewSnapshotCache(pool *redis.Pool) *SnapshotCache {
	return &SnapshotCache{pool: pool}
}

func (c *SnapshotCache) Publish(snap models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	conn := c.pool.Get()
	defer conn.Close()

	send := func(cmd string, args ...interface{}) {
		if err == nil {
			err = conn.Send(cmd, args...)
		}
	}
	send("MULTI")
	send("SET", snap.Id, snap.CurrentPlayerId)
	send("SET", snap.Id+".snapshot", data)
	send("DEL", snap.Id+".order")
	for _, p := range snap.Players {
		send("RPUSH", snap.Id+".order", p.Id)
		send("HSET", redis.Args{}.Add(fmt.Sprintf("%s.%s", snap.Id, p.Id)).
			Add("bal", p.Money).Add("loan", p.Loan).Add("pos", p.TileId).Add("piece", p.Piece)...)
	}
	if err != nil {
		return err
	}
	_, err = conn.Do("EXEC")
	return err
}

func (c *SnapshotCache) Snapshot(gameId string) ([]byte, error) {
	conn := c.pool.Get()
	defer conn.Close()
	data, err := GetBytes(gameId+".snapshot", conn)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNoSnapshot
	}
	return data, err
}

// CurrentPlayer returns whose turn it is according to the last snapshot.
func (c *SnapshotCache) CurrentPlayer(gameId string) (string, error) {
	conn := c.pool.Get()
	defer conn.Close()
	return Get(gameId, conn)
}

// Balances reads the per-player hashes in turn order.
func (c *SnapshotCache) Balances(gameId string) (map[string]map[string]string, error) {
	conn := c.pool.Get()
	defer conn.Close()
	ids, err := LRANGE(gameId+".order", conn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string, len(ids))
	for _, id := range ids {
		fields, err := HGETALL(fmt.Sprintf("%s.%s", gameId, id), conn)
		if err != nil {
			return nil, err
		}
		out[id] = fields
	}
	return out, nil
}

// Drop removes everything cached for a finished game.
func (c *SnapshotCache) Drop(gameId string) error {
	conn := c.pool.Get()
	defer conn.Close()
	ids, err := LRANGE(gameId+".order", conn)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+3)
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf("%s.%s", gameId, id))
	}
	keys = append(keys, gameId+".order", gameId+".snapshot", gameId)
	// Every key is attempted; the first failure is reported.
	var first error
	for _, key := range keys {
		if err := Del(key, conn); err != nil && first == nil {
			first = err
		}
	}
	return first
}
