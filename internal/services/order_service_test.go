// internal/services/order_service_test.go
package services

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	inventory *InventoryService
	carts     *CartService
	orders    *OrderService
	publisher *recordingPublisher

	user     models.User
	address  models.Address
	category models.Category
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.inventory = NewInventoryService(s.db)
	s.carts = NewCartService(s.db)
	s.publisher = &recordingPublisher{}
	s.orders = NewOrderService(s.db, s.inventory, s.carts, s.publisher)

	s.user = createTestUser(s.T(), s.db, "shopper")
	s.address = createTestAddress(s.T(), s.db, s.user.ID)
	s.category = createTestCategory(s.T(), s.db, "toys")
}

func (s *OrderServiceTestSuite) productStock(id uuid.UUID) int {
	var product models.Product
	s.Require().NoError(s.db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func (s *OrderServiceTestSuite) cartSize(userID uuid.UUID) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func (s *OrderServiceTestSuite) orderCount() int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func (s *OrderServiceTestSuite) TestCheckoutTwoLines() {
	productA := createTestProduct(s.T(), s.db, s.category.ID, "Product A", "10.00", 10)
	productB := createTestProduct(s.T(), s.db, s.category.ID, "Product B", "5.50", 4)
	addToCart(s.T(), s.db, s.user.ID, productA.ID, 2)
	addToCart(s.T(), s.db, s.user.ID, productB.ID, 1)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	s.Equal(models.OrderStatusPending, order.Status)
	s.True(order.TotalAmount.Equal(decimal.RequireFromString("25.50")),
		"total was %s", order.TotalAmount)
	s.Len(order.Items, 2)
	s.Equal("12 Main St", order.Address["detail"])

	s.Equal(8, s.productStock(productA.ID))
	s.Equal(3, s.productStock(productB.ID))
	s.EqualValues(0, s.cartSize(s.user.ID))

	s.Require().Len(s.publisher.events, 1)
	s.Equal("created", s.publisher.events[0].Type)
	s.Equal("25.50", s.publisher.events[0].Total)
}

func (s *OrderServiceTestSuite) TestCheckoutEmptyCart() {
	_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.ErrorIs(err, ErrEmptyCart)
	s.EqualValues(0, s.orderCount())
}

func (s *OrderServiceTestSuite) TestCheckoutInsufficientStock() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Scarce", "3.00", 3)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 5)

	_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().Error(err)

	var stockErr *InsufficientStockError
	s.Require().True(errors.As(err, &stockErr))
	s.Equal("Scarce", stockErr.ProductName)

	// Nothing changed.
	s.EqualValues(0, s.orderCount())
	s.Equal(3, s.productStock(product.ID))
	s.EqualValues(1, s.cartSize(s.user.ID))
}

func (s *OrderServiceTestSuite) TestCheckoutInactiveProduct() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Retired", "3.00", 10)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)
	s.Require().NoError(s.db.Model(&product).Update("active", false).Error)

	_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.True(IsInsufficientStock(err))
	s.EqualValues(0, s.orderCount())
}

func (s *OrderServiceTestSuite) TestCheckoutForeignAddress() {
	other := createTestUser(s.T(), s.db, "other")
	foreign := createTestAddress(s.T(), s.db, other.ID)

	product := createTestProduct(s.T(), s.db, s.category.ID, "Thing", "1.00", 5)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)

	_, err := s.orders.CreateOrder(s.user.ID, foreign.ID)
	s.ErrorIs(err, ErrAddressNotFound)
	s.EqualValues(0, s.orderCount())
	s.Equal(5, s.productStock(product.ID))
}

func (s *OrderServiceTestSuite) TestCheckoutRollsBackOnFailure() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Widget", "7.25", 9)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 2)

	// Inject a fault after the order insert, stock decrement and cart
	// clear have all run inside the transaction.
	s.orders.beforeCommit = func(tx *gorm.DB) error {
		return errors.New("induced storage failure")
	}

	_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().Error(err)

	// The database must look exactly as it did before the attempt.
	s.EqualValues(0, s.orderCount())
	var itemCount int64
	s.Require().NoError(s.db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	s.EqualValues(0, itemCount)
	s.Equal(9, s.productStock(product.ID))
	s.EqualValues(1, s.cartSize(s.user.ID))
	s.Empty(s.publisher.events)
}

func (s *OrderServiceTestSuite) TestNoOversell() {
	// Stock 6, five buyers each wanting 2: exactly three orders fit.
	product := createTestProduct(s.T(), s.db, s.category.ID, "Hot Item", "19.99", 6)

	succeeded := 0
	failed := 0
	for i := 0; i < 5; i++ {
		buyer := createTestUser(s.T(), s.db, "buyer"+string(rune('a'+i)))
		buyerAddr := createTestAddress(s.T(), s.db, buyer.ID)
		addToCart(s.T(), s.db, buyer.ID, product.ID, 2)

		_, err := s.orders.CreateOrder(buyer.ID, buyerAddr.ID)
		if err != nil {
			s.True(IsInsufficientStock(err), "unexpected error: %v", err)
			failed++
		} else {
			succeeded++
		}
	}

	s.Equal(3, succeeded)
	s.Equal(2, failed)
	s.GreaterOrEqual(s.productStock(product.ID), 0)
	s.Equal(0, s.productStock(product.ID))
}

func (s *OrderServiceTestSuite) TestCheckoutRejectsNegativeLine() {
	// A negative quantity slipped into the cart must not reach the ledger,
	// where it would add stock and produce a negative total.
	product := createTestProduct(s.T(), s.db, s.category.ID, "Gadget", "10.00", 5)
	addToCart(s.T(), s.db, s.user.ID, product.ID, -3)

	_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.ErrorIs(err, ErrQuantityInvalid)

	s.EqualValues(0, s.orderCount())
	s.Equal(5, s.productStock(product.ID))
	s.Empty(s.publisher.events)
}

func (s *OrderServiceTestSuite) TestTotalImmuneToLaterPriceChange() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Gizmo", "10.00", 10)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 3)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	// Reprice after the fact; the order must keep its snapshot.
	s.Require().NoError(s.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)

	reloaded, err := s.orders.GetOrder(s.user.ID, order.ID)
	s.Require().NoError(err)
	s.True(reloaded.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		"total was %s", reloaded.TotalAmount)
	s.Require().Len(reloaded.Items, 1)
	s.True(reloaded.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func (s *OrderServiceTestSuite) TestPayOrder() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Book", "12.00", 5)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	paid, err := s.orders.PayOrder(s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusPaid, paid.Status)

	// Payment does not touch inventory; stock was reserved at placement.
	s.Equal(4, s.productStock(product.ID))
}

func (s *OrderServiceTestSuite) TestPayOrderTwice() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Book", "12.00", 5)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	_, err = s.orders.PayOrder(s.user.ID, order.ID)
	s.Require().NoError(err)

	_, err = s.orders.PayOrder(s.user.ID, order.ID)
	s.ErrorIs(err, ErrInvalidTransition)

	reloaded, err := s.orders.GetOrder(s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusPaid, reloaded.Status)
}

func (s *OrderServiceTestSuite) TestPayForeignOrder() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Book", "12.00", 5)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	stranger := createTestUser(s.T(), s.db, "stranger")
	_, err = s.orders.PayOrder(stranger.ID, order.ID)
	s.ErrorIs(err, ErrOrderNotFound)
}

func (s *OrderServiceTestSuite) TestCancelRestoresStock() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Lamp", "20.00", 8)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 3)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)
	s.Equal(5, s.productStock(product.ID))

	cancelled, err := s.orders.CancelOrder(s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCancelled, cancelled.Status)
	s.Equal(8, s.productStock(product.ID))

	// Terminal: cannot pay a cancelled order.
	_, err = s.orders.PayOrder(s.user.ID, order.ID)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *OrderServiceTestSuite) TestAdminStatusTransitions() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Desk", "50.00", 2)
	addToCart(s.T(), s.db, s.user.ID, product.ID, 1)

	order, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
	s.Require().NoError(err)

	// Skipping a stage is rejected.
	_, err = s.orders.UpdateStatus(order.ID, models.OrderStatusShipped)
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.orders.UpdateStatus(order.ID, models.OrderStatusPaid)
	s.Require().NoError(err)

	shipped, err := s.orders.UpdateStatus(order.ID, models.OrderStatusShipped)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusShipped, shipped.Status)

	completed, err := s.orders.UpdateStatus(order.ID, models.OrderStatusCompleted)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCompleted, completed.Status)

	// Terminal state: everything is rejected from here.
	_, err = s.orders.UpdateStatus(order.ID, models.OrderStatusCancelled)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *OrderServiceTestSuite) TestListOrders() {
	product := createTestProduct(s.T(), s.db, s.category.ID, "Pen", "2.00", 50)

	for i := 0; i < 3; i++ {
		addToCart(s.T(), s.db, s.user.ID, product.ID, 1)
		_, err := s.orders.CreateOrder(s.user.ID, s.address.ID)
		s.Require().NoError(err)
	}

	orders, total, err := s.orders.ListOrders(s.user.ID, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Len(orders, 3)
	s.Len(orders[0].Items, 1)
}

func (s *OrderServiceTestSuite) TestOrderNumberShape() {
	pattern := regexp.MustCompile(`^SO\d{14}[0-9A-F]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		orderNo, err := generateOrderNo()
		s.Require().NoError(err)
		s.Regexp(pattern, orderNo)
		seen[orderNo] = true
	}
	// 24 random bits make repeats within one run overwhelmingly unlikely.
	s.Len(seen, 50)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
