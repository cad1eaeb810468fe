package ecommerce

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/commercedata/ecomgen/internal/datagen"
	"github.com/commercedata/ecomgen/internal/logging"
)

const (
	// recentWindowDays is the window that captures most signup and order
	// activity.
	recentWindowDays = 180

	// userHistoryDays bounds the oldest possible signup.
	userHistoryDays = 730

	// orderHistoryDays bounds the oldest possible order.
	orderHistoryDays = 365

	// eventWindowDays bounds sampled (non-purchase) event timestamps.
	eventWindowDays = 90

	// maxEmailAttempts bounds the retry loop before falling back to an
	// index-qualified email.
	maxEmailAttempts = 5

	// shippingFee is added to orders with more than shippingFreeItems items.
	shippingFee       = 9.99
	shippingFreeItems = 3

	sessionPoolSize = 1000
)

var orderStatuses = []string{StatusCompleted, StatusShipped, StatusCancelled}
var orderStatusWeights = []int{85, 10, 5}

// Line-item counts per order and their weights. Most orders are small.
var orderItemCounts = []int{1, 2, 3, 4}
var orderItemCountWeights = []int{50, 30, 15, 5}

// Sampled event types and their weights. Purchase is deliberately absent:
// purchase events are emitted one-to-one from orders, never sampled, so
// every purchase event corresponds to exactly one order.
var sampledEventTypes = []string{EventPageView, EventAddToCart, EventCheckout, EventSessionStart}
var sampledEventWeights = []int{40, 25, 10, 25}

// Shopping hours by day type.
var weekendHours = []int{12, 13, 14, 15, 16, 17, 18, 19, 20}
var weekdayHours = []int{9, 10, 11, 12, 13, 14, 15, 16, 17, 18}

// Hourly weights for sampled event timestamps, midnight through 23:00.
// Evenings dominate.
var eventHourWeights = []float64{
	0.02, 0.02, 0.02, 0.02, 0.02, 0.02, 0.02, 0.02,
	0.04, 0.04, 0.04, 0.04,
	0.05, 0.05, 0.05, 0.05,
	0.06, 0.06, 0.06, 0.06,
	0.04, 0.04, 0.04, 0.04,
}

// Generator produces the five-table e-commerce dataset. It owns a seeded
// random source and a reference time fixed at construction, so two
// generators built with the same seed and reference time emit identical
// data.
type Generator struct {
	faker   *datagen.Faker
	weights *Weights
	now     time.Time
}

// New creates a generator seeded with seed, anchored at the current time.
func New(seed uint64) *Generator {
	return NewAt(seed, time.Now().UTC())
}

// NewAt creates a generator anchored at an explicit reference time. All
// temporal windows (signup recency, order history, event timestamps) are
// computed relative to now.
func NewAt(seed uint64, now time.Time) *Generator {
	return &Generator{
		faker:   datagen.NewFakerWithSeed(seed),
		weights: DefaultWeights(),
		now:     now.UTC(),
	}
}

// SetWeights replaces the built-in weight tables. The weights must already
// be validated.
func (g *Generator) SetWeights(w *Weights) {
	g.weights = w
}

// GenerateUsers produces n users. About 60% sign up within the recent
// window, the rest between two years and 180 days back. Emails are unique
// within the batch.
func (g *Generator) GenerateUsers(n int) ([]User, error) {
	if n < 0 {
		return nil, fmt.Errorf("user count must be non-negative, got %d", n)
	}
	logging.Debug().Int("count", n).Msg("Generating users")

	users := make([]User, 0, n)
	seen := make(map[string]struct{}, n)
	recentCount := int(float64(n) * 0.6)

	for i := 0; i < n; i++ {
		var start, end time.Time
		if i < recentCount {
			start, end = g.now.AddDate(0, 0, -recentWindowDays), g.now
		} else {
			start, end = g.now.AddDate(0, 0, -userHistoryDays), g.now.AddDate(0, 0, -recentWindowDays)
		}
		signup := dateOnly(g.faker.DateRange(start, end))

		email := g.faker.Email()
		for attempt := 0; attempt < maxEmailAttempts; attempt++ {
			if _, taken := seen[email]; !taken {
				break
			}
			email = g.faker.Email()
		}
		if _, taken := seen[email]; taken {
			// Index-qualified fallback, unique by construction.
			email = fmt.Sprintf("user%d.%s", i, email)
		}
		seen[email] = struct{}{}

		country := g.weights.Countries[datagen.WeightedIndex(g.faker, weightsOf(g.weights.Countries))]
		channel := g.weights.Channels[datagen.WeightedIndex(g.faker, weightsOf(g.weights.Channels))]

		users = append(users, User{
			ID:                 g.faker.UUID(),
			Email:              email,
			FirstName:          g.faker.FirstName(),
			LastName:           g.faker.LastName(),
			SignupDate:         signup,
			Country:            country.Name,
			City:               g.faker.City(),
			AcquisitionChannel: channel.Name,
			CreatedAt:          g.now,
			UpdatedAt:          g.now,
		})
	}

	return users, nil
}

// GenerateProducts produces n products drawn from the category taxonomy.
// Cost is a 40-70% fraction of price, so cost < price holds for every
// record.
func (g *Generator) GenerateProducts(n int) ([]Product, error) {
	if n < 0 {
		return nil, fmt.Errorf("product count must be non-negative, got %d", n)
	}
	logging.Debug().Int("count", n).Msg("Generating products")

	products := make([]Product, 0, n)
	popularity := popularitiesOf(g.weights.Categories)

	for i := 0; i < n; i++ {
		cat := g.weights.Categories[datagen.WeightedIndex(g.faker, popularity)]

		price := round2(g.faker.Float64(cat.PriceMin, cat.PriceMax))
		cost := round2(price * g.faker.Float64(0.4, 0.7))
		if cost >= price {
			// Only reachable with sub-cent prices from override tables.
			cost = round2(price * 0.5)
		}

		name := fmt.Sprintf("%s %s %d",
			datagen.Choose(g.faker, cat.BaseNames),
			capitalize(g.faker.Word()),
			g.faker.Int(1, 20),
		)

		created := g.faker.DateRange(
			g.now.AddDate(-3, 0, 0),
			g.now.AddDate(0, 0, -recentWindowDays),
		)

		products = append(products, Product{
			ID:          g.faker.UUID(),
			Name:        name,
			Category:    cat.Name,
			Subcategory: datagen.Choose(g.faker, cat.Subcategories),
			Price:       price,
			Cost:        cost,
			Description: g.faker.Sentence(12),
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}

	return products, nil
}

// GenerateOrders produces n orders referencing the given users. Recently
// signed-up users are several times more likely to order than old ones, and
// no order predates its user's signup. TotalAmount stays at zero until
// GenerateOrderItems finalizes it.
func (g *Generator) GenerateOrders(users []User, n int) ([]Order, error) {
	if n < 0 {
		return nil, fmt.Errorf("order count must be non-negative, got %d", n)
	}
	if len(users) == 0 {
		return []Order{}, nil
	}
	logging.Debug().Int("count", n).Msg("Generating orders")

	userWeights := make([]float64, len(users))
	for i, u := range users {
		days := int(g.now.Sub(u.SignupDate).Hours() / 24)
		switch {
		case days < 30:
			userWeights[i] = 5
		case days < 90:
			userWeights[i] = 3
		case days < 180:
			userWeights[i] = 2
		default:
			userWeights[i] = 1
		}
	}

	orders := make([]Order, 0, n)
	recentCount := int(float64(n) * 0.7)

	for i := 0; i < n; i++ {
		user := users[datagen.WeightedIndex(g.faker, userWeights)]

		var start, end time.Time
		if i < recentCount {
			start, end = g.now.AddDate(0, 0, -recentWindowDays), g.now
		} else {
			start, end = g.now.AddDate(0, 0, -orderHistoryDays), g.now.AddDate(0, 0, -recentWindowDays)
		}
		if user.SignupDate.After(start) {
			start = user.SignupDate
		}
		if !start.Before(end) {
			// Signup is newer than the window; fall back to the span
			// between signup and now.
			start, end = user.SignupDate, g.now
		}

		orderDate := g.faker.DateRange(start, end)
		hours := weekdayHours
		if wd := orderDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			hours = weekendHours
		}
		orderDate = atClock(orderDate,
			datagen.Choose(g.faker, hours), g.faker.Int(0, 59), g.faker.Int(0, 59))
		if orderDate.After(g.now) {
			orderDate = g.now
		}

		orders = append(orders, Order{
			ID:              g.faker.UUID(),
			UserID:          user.ID,
			OrderDate:       orderDate,
			Status:          datagen.ChooseWeighted(g.faker, orderStatuses, orderStatusWeights),
			TotalAmount:     0,
			ShippingCountry: user.Country,
			ShippingCity:    user.City,
			CreatedAt:       g.now,
			UpdatedAt:       g.now,
		})
	}

	return orders, nil
}

// GenerateOrderItems produces line items for the given orders and returns
// them together with a finalized copy of the orders whose totals are the
// sum of quantity times price-at-time over their items, plus the shipping
// fee for large orders. The input slice is never mutated. With no products
// available there are no items and every total stays at zero.
func (g *Generator) GenerateOrderItems(orders []Order, products []Product) ([]OrderItem, []Order) {
	logging.Debug().Int("orders", len(orders)).Msg("Generating order items")

	finalized := make([]Order, len(orders))
	copy(finalized, orders)

	items := make([]OrderItem, 0, len(orders)*2)
	if len(products) == 0 {
		return items, finalized
	}

	for i := range finalized {
		nItems := datagen.ChooseWeighted(g.faker, orderItemCounts, orderItemCountWeights)
		if nItems > len(products) {
			nItems = len(products)
		}

		// Distinct products per order: partial Fisher-Yates over indices.
		idx := make([]int, len(products))
		for j := range idx {
			idx[j] = j
		}
		for j := 0; j < nItems; j++ {
			k := g.faker.Int(j, len(idx)-1)
			idx[j], idx[k] = idx[k], idx[j]
		}

		var total float64
		for j := 0; j < nItems; j++ {
			product := products[idx[j]]
			quantity := g.faker.Int(1, 3)

			price := product.Price
			if g.faker.Float64(0, 1) < 0.1 {
				price = round2(price * g.faker.Float64(0.7, 0.95))
			}

			items = append(items, OrderItem{
				OrderID:     finalized[i].ID,
				ProductID:   product.ID,
				Quantity:    quantity,
				PriceAtTime: price,
			})
			total += float64(quantity) * price
		}

		if nItems > shippingFreeItems {
			total += shippingFee
		}
		finalized[i].TotalAmount = round2(total)
	}

	return items, finalized
}

// GenerateEvents produces n behavioral events. Every order yields exactly
// one purchase event carrying the order's user id and timestamp; the
// remaining n-len(orders) events are sampled from the non-purchase types.
// The result is sorted ascending by timestamp.
func (g *Generator) GenerateEvents(users []User, products []Product, orders []Order, n int) ([]Event, error) {
	if n < 0 {
		return nil, fmt.Errorf("event count must be non-negative, got %d", n)
	}
	if len(users) == 0 {
		return []Event{}, nil
	}
	logging.Debug().Int("count", n).Int("orders", len(orders)).Msg("Generating events")

	sessions := make([]string, sessionPoolSize)
	for i := range sessions {
		sessions[i] = strings.ToLower(g.faker.StringN(8))
	}

	events := make([]Event, 0, max(n, len(orders)))

	// One purchase event per order, copied rather than sampled. Purchase
	// events are order-level, so no product id.
	for _, o := range orders {
		events = append(events, Event{
			ID:        g.faker.UUID(),
			UserID:    o.UserID,
			Type:      EventPurchase,
			Timestamp: o.OrderDate,
			SessionID: datagen.Choose(g.faker, sessions),
			CreatedAt: g.now,
		})
	}

	for i := len(orders); i < n; i++ {
		user := datagen.Choose(g.faker, users)
		eventType := datagen.ChooseWeighted(g.faker, sampledEventTypes, sampledEventWeights)

		var productID string
		if len(products) > 0 {
			switch eventType {
			case EventPageView:
				// Most page views land on a product page.
				if g.faker.Float64(0, 1) < 0.7 {
					productID = datagen.Choose(g.faker, products).ID
				}
			case EventAddToCart:
				productID = datagen.Choose(g.faker, products).ID
			}
		}

		ts := g.faker.DateRange(g.now.AddDate(0, 0, -eventWindowDays), g.now)
		ts = atClock(ts,
			datagen.WeightedIndex(g.faker, eventHourWeights),
			g.faker.Int(0, 59), g.faker.Int(0, 59))
		if ts.After(g.now) {
			ts = g.now
		}

		events = append(events, Event{
			ID:        g.faker.UUID(),
			UserID:    user.ID,
			Type:      eventType,
			ProductID: productID,
			Timestamp: ts,
			SessionID: datagen.Choose(g.faker, sessions),
			CreatedAt: g.now,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events, nil
}

// GenerateAll runs the full pipeline and returns the finished dataset.
// With zero users the dependent tables are all empty; there is no partial
// output on invalid counts.
func (g *Generator) GenerateAll(c Counts) (*Dataset, error) {
	for _, count := range []struct {
		name string
		n    int
	}{
		{"users", c.Users},
		{"products", c.Products},
		{"orders", c.Orders},
		{"events", c.Events},
	} {
		if count.n < 0 {
			return nil, fmt.Errorf("%s count must be non-negative, got %d", count.name, count.n)
		}
	}

	users, err := g.GenerateUsers(c.Users)
	if err != nil {
		return nil, err
	}
	products, err := g.GenerateProducts(c.Products)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Users:      users,
		Products:   products,
		Orders:     []Order{},
		OrderItems: []OrderItem{},
		Events:     []Event{},
	}
	if len(users) == 0 {
		return ds, nil
	}

	orders, err := g.GenerateOrders(users, c.Orders)
	if err != nil {
		return nil, err
	}
	ds.OrderItems, ds.Orders = g.GenerateOrderItems(orders, products)

	ds.Events, err = g.GenerateEvents(users, products, ds.Orders, c.Events)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Int("users", len(ds.Users)).
		Int("products", len(ds.Products)).
		Int("orders", len(ds.Orders)).
		Int("order_items", len(ds.OrderItems)).
		Int("events", len(ds.Events)).
		Msg("Data generation complete")

	return ds, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atClock(t time.Time, hour, minute, second int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, second, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
