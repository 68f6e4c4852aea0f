package cache

import (
	"github.com/gomodule/redigo/redis"
)

func Get(key string, conn redis.Conn) (string, error) {
	return redis.String(conn.Do("GET", key))
}

func GetBytes(key string, conn redis.Conn) ([]byte, error) {
	return redis.Bytes(conn.Do("GET", key))
}

func Del(key string, conn redis.Conn) error {
	_, err := conn.Do("DEL", key)
	return err
}

func HGETALL(key string, conn redis.Conn) (map[string]string, error) {
	return redis.StringMap(conn.Do("HGETALL", key))
}

func LRANGE(key string, conn redis.Conn) ([]string, error) {
	return redis.Strings(conn.Do("LRANGE", key, 0, -1))
}
