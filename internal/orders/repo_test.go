package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressCols = []string{"id", "user_id", "label", "full_name", "phone", "street", "city", "state",
	"postal_code", "country", "is_default", "created_at", "updated_at"}

func pendingOrder() (Order, []OrderItem) {
	addr := "addr-1"
	o := Order{
		ID: "o1", UserID: "u1", OrderNumber: "ORD-20240307-000001",
		Status: StatusPending, PaymentStatus: PaymentPending,
		Subtotal: dec("250"), Tax: dec("45"), ShippingCost: dec("50"), Total: dec("345"),
		ShippingAddressID: &addr, PaymentMethod: PaymentMethodCOD,
	}
	items := []OrderItem{
		{ID: "i1", ProductID: "p1", Quantity: 2, PriceAtPurchase: dec("100"), Subtotal: dec("200")},
		{ID: "i2", ProductID: "p2", Quantity: 1, PriceAtPurchase: dec("50"), Subtotal: dec("50")},
	}
	return o, items
}

func expectAddress(mock pgxmock.PgxPoolIface) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM addresses").WithArgs("addr-1", "u1").
		WillReturnRows(pgxmock.NewRows(addressCols).AddRow("addr-1", "u1", "Home", "Asha Rao", "+91 9876 543210",
			"12 MG Road", "Pune", "MH", "411001", "India", true, now, now))
}

func expectOrderInsert(mock pgxmock.PgxPoolIface, created time.Time) {
	args := []any{"o1", "u1", "ORD-20240307-000001", "pending", "pending"}
	for i := 0; i < 8; i++ {
		args = append(args, pgxmock.AnyArg())
	}
	mock.ExpectQuery("INSERT INTO orders").WithArgs(args...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
}

func itemArgs(id, productID string, qty int) []any {
	return []any{id, "o1", productID, pgxmock.AnyArg(), qty, pgxmock.AnyArg(), pgxmock.AnyArg()}
}

func TestRepoCreateCommitsOrderAndItems(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectAddress(mock)
	expectOrderInsert(mock, created)
	mock.ExpectExec("INSERT INTO order_items").WithArgs(itemArgs("i1", "p1", 2)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(itemArgs("i2", "p2", 1)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	o, items := pendingOrder()
	got, err := (&Repo{DB: mock}).Create(context.Background(), o, items)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "Pune", got.ShippingAddress.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateItemFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectAddress(mock)
	expectOrderInsert(mock, created)
	mock.ExpectExec("INSERT INTO order_items").WithArgs(itemArgs("i1", "p1", 2)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(itemArgs("i2", "p2", 1)...).
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	o, items := pendingOrder()
	_, err = (&Repo{DB: mock}).Create(context.Background(), o, items)
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateUnknownAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM addresses").WithArgs("addr-1", "u1").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	o, items := pendingOrder()
	_, err = (&Repo{DB: mock}).Create(context.Background(), o, items)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateWithoutAddressRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	o, items := pendingOrder()
	o.ShippingAddressID = nil
	_, err = (&Repo{DB: mock}).Create(context.Background(), o, items)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoShippingAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectAddress(mock)
	mock.ExpectQuery("FROM addresses").WithArgs("addr-2", "u1").WillReturnError(pgx.ErrNoRows)

	r := &Repo{DB: mock}
	a, err := r.ShippingAddress(context.Background(), "u1", "addr-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", a.FullName)

	_, err = r.ShippingAddress(context.Background(), "u1", "addr-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateStatusLostRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE orders").WithArgs("o1", "pending", "confirmed").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = (&Repo{DB: mock}).UpdateStatus(context.Background(), "o1", StatusPending, StatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateStatusUnknownOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE orders").WithArgs("ghost", "pending", "confirmed").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = (&Repo{DB: mock}).UpdateStatus(context.Background(), "ghost", StatusPending, StatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepoGetByNumberMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE o.order_number").WithArgs("ORD-X").WillReturnError(pgx.ErrNoRows)

	o, err := (&Repo{DB: mock}).GetByNumber(context.Background(), "ORD-X")
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestRepoGetByNumberCorruptItemSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	orderCols := []string{"id", "user_id", "order_number", "status", "payment_status", "subtotal", "tax",
		"shipping_cost", "total", "shipping_address_id", "shipping_address_snapshot", "payment_method",
		"notes", "created_at", "updated_at"}
	mock.ExpectQuery("WHERE o.order_number").WithArgs("ORD-20240307-000001").
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow("o1", "u1", "ORD-20240307-000001", "pending", "pending",
			dec("50"), dec("9"), dec("50"), dec("109"), nil, []byte(`{"city":"Pune"}`), "cod", "", now, now))

	itemCols := []string{"id", "order_id", "product_id", "product_snapshot", "quantity", "price_at_purchase",
		"subtotal", "p_id", "name", "slug", "description", "sku", "price", "compare_at_price", "stock_quantity",
		"category_id", "images", "specifications", "is_active", "is_featured", "p_created_at", "p_updated_at"}
	mock.ExpectQuery("FROM order_items oi").WithArgs([]string{"o1"}).
		WillReturnRows(pgxmock.NewRows(itemCols).AddRow("i1", "o1", "p2", []byte(`{"name":`), 1, dec("50"),
			dec("50"), "p2", "Mug", "mug", "", "M-1", dec("50"), nil, 4, nil, []byte(`[]`), []byte(`{}`),
			true, false, now, now))

	_, err = (&Repo{DB: mock}).GetByNumber(context.Background(), "ORD-20240307-000001")
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}
