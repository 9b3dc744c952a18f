package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id",
	"user_id",
	"client_id",
	"total_items",
	"total_cents",
	"currency",
	"is_deleted",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	Id         int64     `db:"id"`
	UserId     int64     `db:"user_id"`
	ClientId   string    `db:"client_id"`
	TotalItems int64     `db:"total_items"`
	TotalCents int64     `db:"total_cents"`
	Currency   string    `db:"currency"`
	IsDeleted  bool      `db:"is_deleted"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return order.Order{}, err
	}

	return order.Order{
		ID:         o.Id,
		UserID:     o.UserId,
		ClientID:   o.ClientId,
		TotalItems: o.TotalItems,
		TotalCents: o.TotalCents,
		Currency:   cur,
		IsDeleted:  o.IsDeleted,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		OrderLines: []orderline.OrderLine{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:         o.ID,
		UserId:     o.UserID,
		ClientId:   o.ClientID,
		TotalItems: o.TotalItems,
		TotalCents: o.TotalCents,
		Currency:   o.Currency.String(),
		IsDeleted:  o.IsDeleted,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.UserId,
		&o.ClientId,
		&o.TotalItems,
		&o.TotalCents,
		&o.Currency,
		&o.IsDeleted,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// PostgresOrderRepository stores order headers.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresOrderRepository) insertQuery(o *OrderDal) (string, []any, error) {
	return r.sb.Insert("orders").
		Columns(
			"user_id",
			"client_id",
			"total_items",
			"total_cents",
			"currency",
			"is_deleted",
			"created_at",
			"updated_at",
		).
		Values(
			o.UserId,
			o.ClientId,
			o.TotalItems,
			o.TotalCents,
			o.Currency,
			o.IsDeleted,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
}

// Insert inserts the order header and returns the order with its id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := r.insertQuery(OrderDalFromModel(&o))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetByID retrieves an order header, deleted or not.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

func (r *PostgresOrderRepository) queryByClientQuery(q order.QueryOrdersModel) (string, []any, error) {
	return r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"client_id": q.ClientID, "is_deleted": false}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(q.Limit())).
		Offset(uint64(q.Offset())).
		ToSql()
}

// QueryByClient retrieves a page of live orders for a client, newest first.
func (r *PostgresOrderRepository) QueryByClient(
	ctx context.Context,
	q order.QueryOrdersModel,
) ([]order.Order, error) {
	query, args, err := r.queryByClientQuery(q.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// CountByClient counts the live orders of a client.
func (r *PostgresOrderRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	query, args, err := r.sb.Select("count(*)").
		From("orders").
		Where(sq.Eq{"client_id": clientID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

func (r *PostgresOrderRepository) softDeleteQuery(id int64) (string, []any, error) {
	return r.sb.Update("orders").
		Set("is_deleted", true).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_deleted": false}).
		ToSql()
}

// SoftDelete flags the order as deleted. Deleting an already deleted order
// is not an error; the returned bool is false in that case.
func (r *PostgresOrderRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.softDeleteQuery(id)
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to soft delete order: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}
