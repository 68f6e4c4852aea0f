package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/config"
	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

func PostgreSQLConnection(cfg config.Config) *pg.DB {
	return pg.Connect(&pg.Options{
		User:     cfg.DBUser,
		Addr:     cfg.DBAddr,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	})
}

type PGStore struct {
	db *pg.DB
}

func NewPGStore(db *pg.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateSchema() error {
	for _, model := range []interface{}{(*models.Player)(nil), (*models.GameSession)(nil)} {
		err := s.db.Model(model).CreateTable(&orm.CreateTableOptions{IfNotExists: true})
		if err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx *pg.Tx
}

func (t *pgTx) Player(ctx context.Context, id string) (*models.Player, error) {
	player := &models.Player{Id: id}
	err := t.tx.ModelContext(ctx, player).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select player %s: %w", id, err)
	}
	return player, nil
}

// WritePlayer upserts the listed columns. The update only applies when the
// stored version is the one the caller read.
func (t *pgTx) WritePlayer(ctx context.Context, p *models.Player, columns ...string) error {
	q := t.tx.ModelContext(ctx, p).
		OnConflict("(id) DO UPDATE").
		Set("version = EXCLUDED.version")
	for _, col := range columns {
		q = q.Set("? = EXCLUDED.?", pg.Ident(col), pg.Ident(col))
	}
	res, err := q.Where("?TableAlias.version = ?", p.Version-1).Insert()
	if err != nil {
		return fmt.Errorf("write player %s: %w", p.Id, err)
	}
	if res.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (t *pgTx) WriteSession(ctx context.Context, s *models.GameSession) error {
	_, err := t.tx.ModelContext(ctx, s).
		OnConflict("(id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("status = EXCLUDED.status").
		Set("turn_order = EXCLUDED.turn_order").
		Set("current_player_index = EXCLUDED.current_player_index").
		Set("winner = EXCLUDED.winner").
		Set("history = EXCLUDED.history").
		Set("loans = EXCLUDED.loans").
		Set("updated_at = EXCLUDED.updated_at").
		Insert()
	if err != nil {
		return fmt.Errorf("write session %s: %w", s.Id, err)
	}
	return nil
}

func (t *pgTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback() error {
	return t.tx.Rollback()
}
