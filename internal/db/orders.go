package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/models"
)

type Order = models.Order
type OrderItem = models.OrderItem

var ErrOrderNotFound = errors.New("order not found")

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `
	id, user_id, first_name, last_name, email, company, address1, address2,
	city, country, province, postal_code, phone, special_instructions,
	total_price, currency, payment_provider, status, provider_session_id,
	stripe_payment_intent_id, created_at, updated_at`

// Create inserts the order and its items in one transaction and fills in
// the generated ids and timestamps.
func (s *OrderStore) Create(ctx context.Context, order *Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO orders (
			user_id, first_name, last_name, email, company, address1, address2,
			city, country, province, postal_code, phone, special_instructions,
			total_price, currency, payment_provider, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`
	var createdAt, updatedAt pgtype.Timestamptz
	err = tx.QueryRow(ctx, query,
		textOrNull(order.UserID),
		order.FirstName,
		order.LastName,
		order.Email,
		order.Company,
		order.Address1,
		order.Address2,
		order.City,
		order.Country,
		order.Province,
		order.PostalCode,
		order.Phone,
		order.SpecialInstructions,
		numericFromDecimal(order.TotalPrice),
		order.Currency,
		string(order.PaymentProvider),
		string(order.Status),
	).Scan(&order.ID, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time

	itemQuery := `
		INSERT INTO order_items (order_id, product_sku, product_name, size, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRow(ctx, itemQuery,
			order.ID,
			item.ProductSKU,
			item.ProductName,
			item.Size,
			item.Quantity,
			numericFromDecimal(item.Price),
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to insert order item %s: %w", item.ProductSKU, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// Delete removes an order; its items go with it through the foreign key cascade.
func (s *OrderStore) Delete(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := s.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// AttachPaymentSession records the remote checkout session created for the order.
func (s *OrderStore) AttachPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID, paymentIntentID string) error {
	query := `
		UPDATE orders
		SET provider_session_id = $1,
		    stripe_payment_intent_id = COALESCE(NULLIF($2, ''), stripe_payment_intent_id),
		    updated_at = NOW()
		WHERE id = $3
	`
	cmdTag, err := s.pool.Exec(ctx, query, sessionID, paymentIntentID, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkProcessing moves the order to processing regardless of its current
// status; concurrent cancel and webhook deliveries resolve as last write wins.
func (s *OrderStore) MarkProcessing(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	query := `
		UPDATE orders
		SET status = $1,
		    stripe_payment_intent_id = COALESCE(NULLIF($2, ''), stripe_payment_intent_id),
		    updated_at = NOW()
		WHERE id = $3
	`
	cmdTag, err := s.pool.Exec(ctx, query, string(models.StatusProcessing), paymentIntentID, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) MarkCancelled(ctx context.Context, orderID uuid.UUID) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`
	cmdTag, err := s.pool.Exec(ctx, query, string(models.StatusCancelled), orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) listItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_sku, product_name, size, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var (
			item     OrderItem
			quantity int32
			price    pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductSKU, &item.ProductName, &item.Size, &quantity, &price); err != nil {
			return nil, err
		}
		item.Quantity = int(quantity)
		item.Price = decimalFromNumeric(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

type orderRow struct {
	ID                    uuid.UUID
	UserID                pgtype.Text
	FirstName             string
	LastName              string
	Email                 string
	Company               string
	Address1              string
	Address2              string
	City                  string
	Country               string
	Province              string
	PostalCode            string
	Phone                 string
	SpecialInstructions   string
	TotalPrice            pgtype.Numeric
	Currency              string
	PaymentProvider       string
	Status                string
	ProviderSessionID     pgtype.Text
	StripePaymentIntentID pgtype.Text
	CreatedAt             pgtype.Timestamptz
	UpdatedAt             pgtype.Timestamptz
}

func scanOrder(row pgx.Row) (*Order, error) {
	var r orderRow
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.FirstName,
		&r.LastName,
		&r.Email,
		&r.Company,
		&r.Address1,
		&r.Address2,
		&r.City,
		&r.Country,
		&r.Province,
		&r.PostalCode,
		&r.Phone,
		&r.SpecialInstructions,
		&r.TotalPrice,
		&r.Currency,
		&r.PaymentProvider,
		&r.Status,
		&r.ProviderSessionID,
		&r.StripePaymentIntentID,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return rowToOrder(r), nil
}

func rowToOrder(row orderRow) *Order {
	order := &Order{
		ID:                  row.ID,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Email:               row.Email,
		Company:             row.Company,
		Address1:            row.Address1,
		Address2:            row.Address2,
		City:                row.City,
		Country:             row.Country,
		Province:            row.Province,
		PostalCode:          row.PostalCode,
		Phone:               row.Phone,
		SpecialInstructions: row.SpecialInstructions,
		TotalPrice:          decimalFromNumeric(row.TotalPrice),
		Currency:            row.Currency,
		PaymentProvider:     models.PaymentProvider(row.PaymentProvider),
		Status:              models.OrderStatus(row.Status),
		CreatedAt:           row.CreatedAt.Time,
		UpdatedAt:           row.UpdatedAt.Time,
	}

	if row.UserID.Valid {
		order.UserID = row.UserID.String
	}
	if row.ProviderSessionID.Valid {
		order.ProviderSessionID = row.ProviderSessionID.String
	}
	if row.StripePaymentIntentID.Valid {
		order.StripePaymentIntentID = row.StripePaymentIntentID.String
	}

	return order
}

func textOrNull(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}

func numericFromDecimal(value decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: value.Coefficient(), Exp: value.Exponent(), Valid: true}
}

func decimalFromNumeric(value pgtype.Numeric) decimal.Decimal {
	if !value.Valid || value.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value.Int, value.Exp)
}
