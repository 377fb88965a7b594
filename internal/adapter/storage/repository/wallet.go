package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
	"github.com/quickbites/orderhub/internal/core/domain"
)

// CreditWallet appends the ledger entry and increments the restaurant
// balance in one transaction. The balance upsert takes the wallet row
// lock, which serializes concurrent credits per restaurant; credits to
// different restaurants never block each other.
func (or *Repository) CreditWallet(ctx context.Context, entry *domain.LedgerEntry) (*domain.WalletCredit, error) {
	var credit *domain.WalletCredit

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		entrySt := or.db.QueryBuilder.
			Insert("wallet_entries").
			Columns("restaurant_id", "order_id", "amount", "description", "created_at").
			Values(entry.RestaurantID, entry.OrderID, entry.Amount, entry.Description, entry.CreatedAt).
			Suffix("on conflict do nothing")

		sql, args, err := entrySt.ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			existing, balance, err := or.readSettlement(ctx, tx, entry.RestaurantID, entry.OrderID)
			if err != nil {
				return err
			}
			credit = &domain.WalletCredit{Entry: *existing, Balance: balance, Applied: false}
			return nil
		}

		balanceSt := or.db.QueryBuilder.
			Insert("wallets").
			Columns("restaurant_id", "balance").
			Values(entry.RestaurantID, entry.Amount).
			Suffix("on conflict (restaurant_id) do update set balance = wallets.balance + excluded.balance returning balance")

		sql, args, err = balanceSt.ToSql()
		if err != nil {
			return err
		}

		var balance decimal.Decimal
		if err := tx.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
			return err
		}

		credit = &domain.WalletCredit{Entry: *entry, Balance: balance, Applied: true}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return credit, nil
}

func (or *Repository) readSettlement(ctx context.Context, tx pgx.Tx,
	restaurantID string, orderID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	entrySt := or.db.QueryBuilder.
		Select("restaurant_id", "order_id", "amount", "description", "created_at").
		From("wallet_entries").
		Where(sq.Eq{"restaurant_id": restaurantID, "order_id": orderID})

	sql, args, err := entrySt.ToSql()
	if err != nil {
		return nil, decimal.Zero, err
	}

	entry := domain.LedgerEntry{}
	err = tx.QueryRow(ctx, sql, args...).Scan(
		&entry.RestaurantID,
		&entry.OrderID,
		&entry.Amount,
		&entry.Description,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, decimal.Zero, err
	}

	balanceSt := or.db.QueryBuilder.
		Select("balance").
		From("wallets").
		Where(sq.Eq{"restaurant_id": restaurantID})

	sql, args, err = balanceSt.ToSql()
	if err != nil {
		return nil, decimal.Zero, err
	}

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		return nil, decimal.Zero, err
	}

	return &entry, balance, nil
}

func (or *Repository) HasLedgerEntry(ctx context.Context, restaurantID string, orderID string) (bool, error) {
	statement := or.db.QueryBuilder.
		Select("1").
		From("wallet_entries").
		Where(sq.Eq{"restaurant_id": restaurantID, "order_id": orderID})

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

// ReadWallet returns a zero balance for a restaurant that was never
// credited: the balance is the sum of its entries, and there are none.
func (or *Repository) ReadWallet(ctx context.Context, restaurantID string) (*domain.Wallet, error) {
	statement := or.db.QueryBuilder.
		Select("balance").
		From("wallets").
		Where(sq.Eq{"restaurant_id": restaurantID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	wallet := domain.Wallet{RestaurantID: restaurantID, Balance: decimal.Zero}
	err = or.db.QueryRow(ctx, sql, args...).Scan(&wallet.Balance)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr(err)
	}

	return &wallet, nil
}

func (or *Repository) ListLedgerEntries(ctx context.Context, restaurantID string) ([]*domain.LedgerEntry, error) {
	statement := or.db.QueryBuilder.
		Select("restaurant_id", "order_id", "amount", "description", "created_at").
		From("wallet_entries").
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

	list := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		entry := domain.LedgerEntry{}
		err := rows.Scan(
			&entry.RestaurantID,
			&entry.OrderID,
			&entry.Amount,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, &entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, storageErr(err)
	}

	return list, nil
}
