package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quickbites/orderhub/internal/adapter/storage"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
)

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

var orderColumns = []string{
	"id", "restaurant_id", "user_id", "status", "payment_status",
	"cancellation_reason", "amount", "version", "created_at", "updated_at",
}

// storageErr maps low-level failures onto the domain taxonomy. A timed-out
// call is transient and retried by the caller or the transport.
func storageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrDependencyUnavailable
	}
	return err
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.RestaurantID,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.CancellationReason,
		&order.Amount,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, storageErr(err)
	}
	return &order, nil
}

func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := or.db.QueryBuilder.Insert("orders").
		Columns(orderColumns...).
		Values(order.ID, order.RestaurantID, order.UserID, order.Status, order.PaymentStatus,
			order.CancellationReason, order.Amount, order.Version, order.CreatedAt, order.UpdatedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	_, err = or.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, storageErr(err)
	}
	return order, nil
}

func (or *Repository) ReadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return scanOrder(or.db.QueryRow(ctx, sql, args...))
}

// UpdateOrder persists the mutation with a compare-and-set on the version
// column. Zero affected rows on an existing order means a concurrent
// writer won.
func (or *Repository) UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := or.db.QueryBuilder.Update("orders").
		Set("status", order.Status).
		Set("payment_status", order.PaymentStatus).
		Set("cancellation_reason", order.CancellationReason).
		Set("version", order.Version+1).
		Set("updated_at", order.UpdatedAt).
		Where(sq.Eq{"id": order.ID, "version": order.Version})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := or.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := or.ReadOrder(ctx, order.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrConcurrentModification
	}

	order.Version++
	return order, nil
}

func (or *Repository) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"restaurant_id": restaurantID}).
		OrderBy("created_at desc")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}

	err = rows.Err()
	if err != nil {
		return nil, storageErr(err)
	}

	return list, nil
}

// ApplyOrderPayment records the event reference and mutates the order in a
// single transaction. A reference seen before leaves the order untouched
// and reports domain.ErrEventAlreadyApplied; an absent order rolls the
// whole transaction back, so the reference stays unrecorded.
func (or *Repository) ApplyOrderPayment(ctx context.Context, orderID string,
	eventRef string, updateFn port.UpdateOrderFn) (*domain.Order, error) {
	var result *domain.Order
	var applied bool

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		eventSt := or.db.QueryBuilder.
			Insert("payment_events").
			Columns("order_id", "event_ref").
			Values(orderID, eventRef).
			Suffix("on conflict do nothing")

		sql, args, err := eventSt.ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		orderSt := or.db.QueryBuilder.
			Select(orderColumns...).
			From("orders").
			Where(sq.Eq{"id": orderID})
		if tag.RowsAffected() > 0 {
			orderSt = orderSt.Suffix("for update")
		}

		sql, args, err = orderSt.ToSql()
		if err != nil {
			return err
		}

		order, err := scanOrder(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			result = order
			return nil
		}

		if err := updateFn(order); err != nil {
			return err
		}

		updateSt := or.db.QueryBuilder.Update("orders").
			Set("payment_status", order.PaymentStatus).
			Set("version", order.Version+1).
			Set("updated_at", order.UpdatedAt).
			Where(sq.Eq{"id": order.ID})

		sql, args, err = updateSt.ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		order.Version++
		result = order
		applied = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	if !applied {
		return result, domain.ErrEventAlreadyApplied
	}
	return result, nil
}

func (or *Repository) HasAppliedEvent(ctx context.Context, orderID string, eventRef string) (bool, error) {
	statement := or.db.QueryBuilder.
		Select("1").
		From("payment_events").
		Where(sq.Eq{"order_id": orderID, "event_ref": eventRef})

	sql, args, err := statement.ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = or.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, storageErr(err)
	}
	return true, nil
}
