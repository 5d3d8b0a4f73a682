package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	qb "github.com/riskibarqy/puntodeoro/internal/platform/querybuilder"
)

const favoritesTable = "favorites"

type FavoriteRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewFavoriteRepository(db *sqlx.DB, opts Options) *FavoriteRepository {
	return &FavoriteRepository{db: db, opts: opts}
}

func (r *FavoriteRepository) ListAll(ctx context.Context) ([]favorite.Favorite, error) {
	query, args, err := qb.Select(qb.Columns(favoriteTableModel{})...).
		From(favoritesTable).
		OrderBy("user_id", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list favorites query: %w", err)
	}
	return r.list(ctx, "list favorites", query, args)
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]favorite.Favorite, error) {
	query, args, err := qb.Select(qb.Columns(favoriteTableModel{})...).
		From(favoritesTable).
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user favorites query: %w", err)
	}
	return r.list(ctx, "list user favorites", query, args)
}

func (r *FavoriteRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From(favoritesTable).
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count favorites query: %w", err)
	}

	var count int
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &count, query, args...)
	})
	if err != nil {
		return 0, persistenceError("count favorites", err)
	}
	return count, nil
}

// Add reports AddAlreadyExists instead of failing when the pair is present.
func (r *FavoriteRepository) Add(ctx context.Context, fav favorite.Favorite) (favorite.AddResult, error) {
	query, args, err := addFavoriteQuery(fav)
	if err != nil {
		return 0, fmt.Errorf("build add favorite query: %w", err)
	}

	var affected int64
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	switch {
	case isUniqueViolation(err):
		return favorite.AddAlreadyExists, nil
	case err != nil:
		return 0, persistenceError("add favorite", err)
	case affected == 0:
		return favorite.AddAlreadyExists, nil
	default:
		return favorite.AddInserted, nil
	}
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, playerID int64) (favorite.RemoveResult, error) {
	query, args, err := qb.DeleteFrom(favoritesTable).
		Where(qb.Eq("user_id", userID), qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build remove favorite query: %w", err)
	}

	var affected int64
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, persistenceError("remove favorite", err)
	}
	if affected == 0 {
		return favorite.RemoveNotFound, nil
	}
	return favorite.RemoveDeleted, nil
}

func (r *FavoriteRepository) list(ctx context.Context, op, query string, args []any) ([]favorite.Favorite, error) {
	var rows []favoriteTableModel
	err := runStatement(ctx, r.opts, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, persistenceError(op, err)
	}

	out := make([]favorite.Favorite, 0, len(rows))
	for _, row := range rows {
		out = append(out, favorite.Favorite{
			UserID:     row.UserID,
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func addFavoriteQuery(fav favorite.Favorite) (string, []any, error) {
	return qb.InsertModel(favoritesTable, favoriteInsertModel{
		UserID:     fav.UserID,
		PlayerID:   fav.PlayerID,
		PlayerName: strings.TrimSpace(fav.PlayerName),
	}, "ON CONFLICT (user_id, player_id) DO NOTHING")
}
