// Package orders implements the order creation workflow and the reads and
// status transitions that operate on existing orders.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Anasanas60/krishokbazar/internal/auth"

	"github.com/shopspring/decimal"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// CreateOrder validates the request against the catalog inside one
// transaction, computes the total from current product prices, and persists
// the order header together with all its items. Either every row becomes
// visible or none do. Product stock is checked but not decremented, so two
// concurrent orders can pass the availability check against the same stock.
func (c *Conf) CreateOrder(ctx context.Context, consumerID int64, req NewOrder) (*Order, error) {
	if req.FarmerID == 0 || len(req.Items) == 0 {
		return nil, validationError("Farmer ID and items array are required")
	}
	if (req.PickupDetails == nil) == (req.DeliveryDetails == nil) {
		return nil, validationError("Exactly one of pickupDetails or deliveryDetails is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, validationError("Quantity for product %d must be at least 1", item.ProductID)
		}
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = PaymentCash
	}
	switch paymentMethod {
	case PaymentCash, PaymentBankTransfer, PaymentOther:
	default:
		return nil, validationError("Payment method must be one of: cash, bank_transfer, other")
	}

	var orderID int64
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		totalAmount := decimal.Zero
		staged := make([]OrderItem, 0, len(req.Items))

		const queryProduct = `
			SELECT id, name, farmer_id, price, quantity_available
			FROM products
			WHERE id = $1
		`
		for _, item := range req.Items {
			var (
				productID     int64
				name          string
				farmerID      int64
				price         decimal.Decimal
				quantityAvail int
			)
			err := tx.QueryRowContext(ctx, queryProduct, item.ProductID).
				Scan(&productID, &name, &farmerID, &price, &quantityAvail)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFoundError("Product with ID %d not found", item.ProductID)
				}
				return fmt.Errorf("failed to query product %d: %w", item.ProductID, err)
			}

			if farmerID != req.FarmerID {
				return validationError("Product %s does not belong to the specified farmer", name)
			}
			if quantityAvail < item.Quantity {
				return validationError("Not enough quantity available for %s. Available: %d, Requested: %d",
					name, quantityAvail, item.Quantity)
			}

			totalAmount = totalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			staged = append(staged, OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     price,
			})
		}

		now := time.Now().UTC()
		var (
			pickupDate, pickupTime, pickupLocation     *string
			dStreet, dCity, dState, dZip, dDate, dTime *string
		)
		if req.PickupDetails != nil {
			pickupDate = &req.PickupDetails.Date
			pickupTime = &req.PickupDetails.Time
			pickupLocation = &req.PickupDetails.Location
		}
		if req.DeliveryDetails != nil {
			dStreet = &req.DeliveryDetails.Address.Street
			dCity = &req.DeliveryDetails.Address.City
			dState = &req.DeliveryDetails.Address.State
			dZip = &req.DeliveryDetails.Address.ZipCode
			dDate = &req.DeliveryDetails.Date
			dTime = &req.DeliveryDetails.Time
		}
		var notes *string
		if req.Notes != "" {
			notes = &req.Notes
		}

		const queryInsertOrder = `
			INSERT INTO orders (
				consumer_id, farmer_id, total_amount, status, payment_method,
				pickup_date, pickup_time, pickup_location,
				delivery_street, delivery_city, delivery_state, delivery_zip_code,
				delivery_date, delivery_time, notes, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, queryInsertOrder,
			consumerID, req.FarmerID, totalAmount, StatusPending, paymentMethod,
			pickupDate, pickupTime, pickupLocation,
			dStreet, dCity, dState, dZip, dDate, dTime,
			notes, now, now,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		const queryInsertItem = `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`
		for _, it := range staged {
			_, err := tx.ExecContext(ctx, queryInsertItem,
				orderID, it.ProductID, it.Quantity, it.Price)
			if err != nil {
				return fmt.Errorf("failed to insert order item for product %d: %w", it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.GetByID(ctx, orderID)
}

// GetOrder loads an order with its associations and enforces that the caller
// is the order's consumer, its farmer, or an admin.
func (c *Conf) GetOrder(ctx context.Context, actor auth.Claims, orderID int64) (*Order, error) {
	actorID, err := actor.UserID()
	if err != nil {
		return nil, authorizationError("Not authorized to view this order")
	}

	order, err := c.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ConsumerID != actorID && order.FarmerID != actorID && actor.Role != auth.RoleAdmin {
		return nil, authorizationError("Not authorized to view this order")
	}
	return order, nil
}

// UpdateStatus sets a new status on an order. Only the order's farmer or an
// admin may transition it.
func (c *Conf) UpdateStatus(ctx context.Context, actor auth.Claims, orderID int64, status string) (*Order, error) {
	valid := false
	for _, s := range ValidStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, validationError("Invalid status. Must be one of: pending, confirmed, processing, shipped, delivered, cancelled")
	}

	actorID, err := actor.UserID()
	if err != nil {
		return nil, authorizationError("Not authorized to update this order")
	}

	var farmerID int64
	const queryFarmer = `SELECT farmer_id FROM orders WHERE id = $1`
	err = c.db.QueryRowContext(ctx, queryFarmer, orderID).Scan(&farmerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("Order not found")
		}
		return nil, fmt.Errorf("failed to query order %d: %w", orderID, err)
	}
	if farmerID != actorID && actor.Role != auth.RoleAdmin {
		return nil, authorizationError("Not authorized to update this order")
	}

	const queryUpdate = `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	_, err = c.db.ExecContext(ctx, queryUpdate, status, time.Now().UTC(), orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}

	return c.GetByID(ctx, orderID)
}

// ListByConsumer returns the consumer's orders, newest first.
func (c *Conf) ListByConsumer(ctx context.Context, consumerID int64) ([]Order, error) {
	return c.list(ctx, `WHERE o.consumer_id = $1`, consumerID)
}

// ListByFarmer returns the farmer's orders, newest first.
func (c *Conf) ListByFarmer(ctx context.Context, farmerID int64) ([]Order, error) {
	return c.list(ctx, `WHERE o.farmer_id = $1`, farmerID)
}

// ListAll returns every order, newest first.
func (c *Conf) ListAll(ctx context.Context) ([]Order, error) {
	return c.list(ctx, ``)
}

const queryOrderColumns = `
	SELECT o.id, o.consumer_id, o.farmer_id, o.total_amount, o.status, o.payment_method,
	       o.pickup_date, o.pickup_time, o.pickup_location,
	       o.delivery_street, o.delivery_city, o.delivery_state, o.delivery_zip_code,
	       o.delivery_date, o.delivery_time, o.notes, o.created_at, o.updated_at,
	       cu.id, cu.name, cu.email, cu.phone,
	       fu.id, fu.name, fu.email, fu.phone
	FROM orders o
	JOIN users cu ON cu.id = o.consumer_id
	JOIN users fu ON fu.id = o.farmer_id
`

// GetByID loads an order with consumer, farmer and item associations. It
// performs no authorization check; callers that act on behalf of a user go
// through GetOrder instead.
func (c *Conf) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	row := c.db.QueryRowContext(ctx, queryOrderColumns+` WHERE o.id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("Order not found")
		}
		return nil, fmt.Errorf("failed to query order %d: %w", orderID, err)
	}

	items, err := c.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (c *Conf) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	query := queryOrderColumns + " " + where + ` ORDER BY o.created_at DESC`
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := c.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (c *Conf) itemsForOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	const queryItems = `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.name, p.unit, p.images
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := c.db.QueryContext(ctx, queryItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var (
			item      OrderItem
			product   ProductSummary
			imagesRaw []byte
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&product.ID, &product.Name, &product.Unit, &imagesRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		product.Images = []string{}
		if len(imagesRaw) > 0 {
			if err := json.Unmarshal(imagesRaw, &product.Images); err != nil {
				return nil, fmt.Errorf("failed to decode product images: %w", err)
			}
		}
		item.Product = &product
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		order         Order
		consumer      UserSummary
		farmer        UserSummary
		consumerPhone sql.NullString
		farmerPhone   sql.NullString
	)
	err := row.Scan(
		&order.ID, &order.ConsumerID, &order.FarmerID, &order.TotalAmount,
		&order.Status, &order.PaymentMethod,
		&order.PickupDate, &order.PickupTime, &order.PickupLocation,
		&order.DeliveryStreet, &order.DeliveryCity, &order.DeliveryState, &order.DeliveryZipCode,
		&order.DeliveryDate, &order.DeliveryTime,
		&order.Notes, &order.CreatedAt, &order.UpdatedAt,
		&consumer.ID, &consumer.Name, &consumer.Email, &consumerPhone,
		&farmer.ID, &farmer.Name, &farmer.Email, &farmerPhone,
	)
	if err != nil {
		return nil, err
	}
	if consumerPhone.Valid {
		consumer.Phone = &consumerPhone.String
	}
	if farmerPhone.Valid {
		farmer.Phone = &farmerPhone.String
	}
	order.Consumer = &consumer
	order.Farmer = &farmer
	return &order, nil
}

// withTx runs fn inside a transaction. Rollback is skipped when the
// transaction already finished, so an error after commit cannot trigger a
// second finalization.
func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
