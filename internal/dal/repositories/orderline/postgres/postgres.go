package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
)

// OrderLineDal represents order line data access layer model.
type OrderLineDal struct {
	Id             int64 `db:"id"`
	OrderId        int64 `db:"order_id"`
	Position       int   `db:"position"`
	BookId         int64 `db:"book_id"`
	Quantity       int64 `db:"quantity"`
	UnitPriceCents int64 `db:"unit_price_cents"`
}

// ToModel converts OrderLineDal to service layer OrderLine model.
func (ol *OrderLineDal) ToModel() orderline.OrderLine {
	return orderline.OrderLine{
		BookID:         ol.BookId,
		Quantity:       ol.Quantity,
		UnitPriceCents: ol.UnitPriceCents,
	}
}

// PostgresOrderLineRepository stores order lines.
type PostgresOrderLineRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderLineRepository creates a new Postgres order line repository.
func NewPostgresOrderLineRepository(conn postgres.GenericConn) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresOrderLineRepository) bulkInsertQuery(
	orderID int64,
	lines []orderline.OrderLine,
) (string, []any, error) {
	query := r.sb.Insert("order_lines").
		Columns("order_id", "position", "book_id", "quantity", "unit_price_cents")
	for i, l := range lines {
		query = query.Values(orderID, i, l.BookID, l.Quantity, l.UnitPriceCents)
	}

	return query.ToSql()
}

// BulkInsert stores the lines of one order, keeping their position.
func (r *PostgresOrderLineRepository) BulkInsert(
	ctx context.Context,
	orderID int64,
	lines []orderline.OrderLine,
) error {
	if len(lines) == 0 {
		return nil
	}

	query, args, err := r.bulkInsertQuery(orderID, lines)
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order lines: %w", err)
	}

	return nil
}

func (r *PostgresOrderLineRepository) queryByOrderIDsQuery(orderIDs []int64) (string, []any, error) {
	return r.sb.
		Select(
			"id",
			"order_id",
			"position",
			"book_id",
			"quantity",
			"unit_price_cents",
		).
		From("order_lines").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position").
		ToSql()
}

// QueryByOrderIDs retrieves the lines of the given orders grouped by order id.
func (r *PostgresOrderLineRepository) QueryByOrderIDs(
	ctx context.Context,
	orderIDs []int64,
) (map[int64][]orderline.OrderLine, error) {
	result := make(map[int64][]orderline.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query, args, err := r.queryByOrderIDsQuery(orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dal OrderLineDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.Position,
			&dal.BookId,
			&dal.Quantity,
			&dal.UnitPriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result[dal.OrderId] = append(result[dal.OrderId], dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
