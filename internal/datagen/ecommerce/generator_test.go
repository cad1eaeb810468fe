package ecommerce

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// Fixed reference time so every temporal assertion is reproducible.
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testDataset(t *testing.T, seed uint64, c Counts) *Dataset {
	t.Helper()
	g := NewAt(seed, testNow)
	ds, err := g.GenerateAll(c)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	return ds
}

func TestGeneratorDeterminism(t *testing.T) {
	c := Counts{Users: 50, Products: 20, Orders: 100, Events: 300}

	ds1 := testDataset(t, 42, c)
	ds2 := testDataset(t, 42, c)

	if !reflect.DeepEqual(ds1, ds2) {
		t.Error("Same seed and reference time produced different datasets")
	}
}

func TestGeneratorDifferentSeeds(t *testing.T) {
	c := Counts{Users: 20, Products: 10, Orders: 30, Events: 50}

	ds1 := testDataset(t, 1, c)
	ds2 := testDataset(t, 2, c)

	if reflect.DeepEqual(ds1.Users, ds2.Users) {
		t.Error("Different seeds produced identical users")
	}
}

func TestGenerateUsers(t *testing.T) {
	g := NewAt(7, testNow)
	users, err := g.GenerateUsers(200)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}
	if len(users) != 200 {
		t.Fatalf("Expected 200 users, got %d", len(users))
	}

	w := DefaultWeights()
	countries := make(map[string]bool)
	for _, c := range w.Countries {
		countries[c.Name] = true
	}
	channels := make(map[string]bool)
	for _, c := range w.Channels {
		channels[c.Name] = true
	}

	seen := make(map[string]bool)
	oldest := testNow.AddDate(0, 0, -userHistoryDays)
	for _, u := range users {
		if u.ID == "" {
			t.Fatal("User has empty ID")
		}
		if u.Email == "" || u.FirstName == "" || u.LastName == "" || u.City == "" {
			t.Errorf("User %s has empty fields", u.ID)
		}
		if seen[u.Email] {
			t.Errorf("Duplicate email: %s", u.Email)
		}
		seen[u.Email] = true
		if !countries[u.Country] {
			t.Errorf("Unknown country: %s", u.Country)
		}
		if !channels[u.AcquisitionChannel] {
			t.Errorf("Unknown acquisition channel: %s", u.AcquisitionChannel)
		}
		if u.SignupDate.After(testNow) {
			t.Errorf("Signup date %v is in the future", u.SignupDate)
		}
		if u.SignupDate.Before(oldest.AddDate(0, 0, -1)) {
			t.Errorf("Signup date %v is before the history window", u.SignupDate)
		}
	}
}

func TestGenerateUsersRecentSkew(t *testing.T) {
	g := NewAt(11, testNow)
	users, err := g.GenerateUsers(1000)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}

	cutoff := testNow.AddDate(0, 0, -recentWindowDays)
	recent := 0
	for _, u := range users {
		if !u.SignupDate.Before(cutoff) {
			recent++
		}
	}

	// 60% of users should sign up within the recent window; allow slack for
	// date rounding at the boundary.
	if recent < 550 || recent > 650 {
		t.Errorf("Expected ~600 recent signups out of 1000, got %d", recent)
	}
}

func TestGenerateProducts(t *testing.T) {
	g := NewAt(13, testNow)
	products, err := g.GenerateProducts(300)
	if err != nil {
		t.Fatalf("GenerateProducts failed: %v", err)
	}
	if len(products) != 300 {
		t.Fatalf("Expected 300 products, got %d", len(products))
	}

	ranges := make(map[string][2]float64)
	subcats := make(map[string]map[string]bool)
	for _, c := range DefaultWeights().Categories {
		ranges[c.Name] = [2]float64{c.PriceMin, c.PriceMax}
		subs := make(map[string]bool)
		for _, s := range c.Subcategories {
			subs[s] = true
		}
		subcats[c.Name] = subs
	}

	for _, p := range products {
		r, ok := ranges[p.Category]
		if !ok {
			t.Fatalf("Unknown category: %s", p.Category)
		}
		if p.Price < r[0] || p.Price > r[1] {
			t.Errorf("Price %.2f outside category %s range [%.2f, %.2f]",
				p.Price, p.Category, r[0], r[1])
		}
		if p.Cost <= 0 || p.Cost >= p.Price {
			t.Errorf("Cost %.2f must be in (0, price=%.2f)", p.Cost, p.Price)
		}
		if !subcats[p.Category][p.Subcategory] {
			t.Errorf("Subcategory %s not valid for category %s", p.Subcategory, p.Category)
		}
		if p.Name == "" || p.Description == "" {
			t.Errorf("Product %s has empty name or description", p.ID)
		}
	}
}

func TestGenerateOrders(t *testing.T) {
	g := NewAt(17, testNow)
	users, err := g.GenerateUsers(50)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}
	orders, err := g.GenerateOrders(users, 200)
	if err != nil {
		t.Fatalf("GenerateOrders failed: %v", err)
	}
	if len(orders) != 200 {
		t.Fatalf("Expected 200 orders, got %d", len(orders))
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, o := range orders {
		u, ok := byID[o.UserID]
		if !ok {
			t.Fatalf("Order %s references unknown user %s", o.ID, o.UserID)
		}
		if o.OrderDate.Before(u.SignupDate) {
			t.Errorf("Order %s predates its user's signup: %v < %v",
				o.ID, o.OrderDate, u.SignupDate)
		}
		if o.OrderDate.After(testNow) {
			t.Errorf("Order %s has future date %v", o.ID, o.OrderDate)
		}
		if o.Status != StatusCompleted && o.Status != StatusShipped && o.Status != StatusCancelled {
			t.Errorf("Order %s has unknown status %s", o.ID, o.Status)
		}
		if o.TotalAmount != 0 {
			t.Errorf("Order %s total should be zero before item generation, got %.2f",
				o.ID, o.TotalAmount)
		}
		if o.ShippingCountry != u.Country || o.ShippingCity != u.City {
			t.Errorf("Order %s shipping address does not match its user", o.ID)
		}
	}
}

func TestGenerateOrdersShoppingHours(t *testing.T) {
	g := NewAt(19, testNow)
	users, _ := g.GenerateUsers(30)
	orders, err := g.GenerateOrders(users, 300)
	if err != nil {
		t.Fatalf("GenerateOrders failed: %v", err)
	}

	for _, o := range orders {
		// The clamp to the reference time can land outside shopping hours.
		if o.OrderDate.Equal(testNow) {
			continue
		}
		h := o.OrderDate.Hour()
		wd := o.OrderDate.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			if h < 12 || h > 20 {
				t.Errorf("Weekend order at hour %d outside [12, 20]", h)
			}
		} else {
			if h < 9 || h > 18 {
				t.Errorf("Weekday order at hour %d outside [9, 18]", h)
			}
		}
	}
}

func TestGenerateOrdersRecencySkew(t *testing.T) {
	g := NewAt(23, testNow)
	users, err := g.GenerateUsers(1000)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}
	orders, err := g.GenerateOrders(users, 5000)
	if err != nil {
		t.Fatalf("GenerateOrders failed: %v", err)
	}

	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.UserID]++
	}

	cutoff := testNow.AddDate(0, 0, -recentWindowDays)
	var recentOrders, recentUsers, oldOrders, oldUsers int
	for _, u := range users {
		if !u.SignupDate.Before(cutoff) {
			recentUsers++
			recentOrders += counts[u.ID]
		} else {
			oldUsers++
			oldOrders += counts[u.ID]
		}
	}
	if recentUsers == 0 || oldUsers == 0 {
		t.Fatal("Expected both recent and old users in a 1000-user sample")
	}

	recentMean := float64(recentOrders) / float64(recentUsers)
	oldMean := float64(oldOrders) / float64(oldUsers)
	if recentMean <= oldMean {
		t.Errorf("Recent users should order more on average: recent=%.2f old=%.2f",
			recentMean, oldMean)
	}
}

func TestGenerateOrderItems(t *testing.T) {
	g := NewAt(29, testNow)
	users, _ := g.GenerateUsers(30)
	products, _ := g.GenerateProducts(40)
	orders, _ := g.GenerateOrders(users, 150)

	items, finalized := g.GenerateOrderItems(orders, products)
	if len(finalized) != len(orders) {
		t.Fatalf("Expected %d finalized orders, got %d", len(orders), len(finalized))
	}
	if len(items) == 0 {
		t.Fatal("Expected order items")
	}

	// Input orders must not be mutated.
	for _, o := range orders {
		if o.TotalAmount != 0 {
			t.Fatal("GenerateOrderItems mutated its input orders")
		}
	}

	productIDs := make(map[string]bool, len(products))
	for _, p := range products {
		productIDs[p.ID] = true
	}

	type lineSum struct {
		total float64
		count int
		seen  map[string]bool
	}
	perOrder := make(map[string]*lineSum)
	for _, it := range items {
		if !productIDs[it.ProductID] {
			t.Fatalf("Item references unknown product %s", it.ProductID)
		}
		if it.Quantity < 1 || it.Quantity > 3 {
			t.Errorf("Item quantity %d outside [1, 3]", it.Quantity)
		}
		if it.PriceAtTime <= 0 {
			t.Errorf("Item price %.2f must be positive", it.PriceAtTime)
		}
		ls := perOrder[it.OrderID]
		if ls == nil {
			ls = &lineSum{seen: make(map[string]bool)}
			perOrder[it.OrderID] = ls
		}
		if ls.seen[it.ProductID] {
			t.Errorf("Order %s has duplicate product %s", it.OrderID, it.ProductID)
		}
		ls.seen[it.ProductID] = true
		ls.total += float64(it.Quantity) * it.PriceAtTime
		ls.count++
	}

	for _, o := range finalized {
		ls := perOrder[o.ID]
		if ls == nil {
			t.Fatalf("Order %s has no items", o.ID)
		}
		if ls.count < 1 || ls.count > 4 {
			t.Errorf("Order %s has %d items, expected 1-4", o.ID, ls.count)
		}
		want := ls.total
		if ls.count > shippingFreeItems {
			want += shippingFee
		}
		if math.Abs(o.TotalAmount-want) > 0.01 {
			t.Errorf("Order %s total %.2f does not match item sum %.2f",
				o.ID, o.TotalAmount, want)
		}
	}
}

func TestGenerateOrderItemsNoProducts(t *testing.T) {
	g := NewAt(31, testNow)
	users, _ := g.GenerateUsers(10)
	orders, _ := g.GenerateOrders(users, 20)

	items, finalized := g.GenerateOrderItems(orders, nil)
	if len(items) != 0 {
		t.Errorf("Expected no items without products, got %d", len(items))
	}
	if len(finalized) != 20 {
		t.Fatalf("Expected 20 finalized orders, got %d", len(finalized))
	}
	for _, o := range finalized {
		if o.TotalAmount != 0 {
			t.Errorf("Order %s total should stay zero without products, got %.2f",
				o.ID, o.TotalAmount)
		}
	}
}

func TestGenerateEvents(t *testing.T) {
	g := NewAt(37, testNow)
	users, _ := g.GenerateUsers(25)
	products, _ := g.GenerateProducts(15)
	orders, _ := g.GenerateOrders(users, 40)
	_, finalized := g.GenerateOrderItems(orders, products)

	events, err := g.GenerateEvents(users, products, finalized, 500)
	if err != nil {
		t.Fatalf("GenerateEvents failed: %v", err)
	}
	if len(events) != 500 {
		t.Fatalf("Expected 500 events, got %d", len(events))
	}

	userIDs := make(map[string]bool, len(users))
	for _, u := range users {
		userIDs[u.ID] = true
	}
	productIDs := make(map[string]bool, len(products))
	for _, p := range products {
		productIDs[p.ID] = true
	}
	validTypes := map[string]bool{
		EventPageView:     true,
		EventAddToCart:    true,
		EventCheckout:     true,
		EventPurchase:     true,
		EventSessionStart: true,
	}

	purchases := 0
	for i, e := range events {
		if !userIDs[e.UserID] {
			t.Fatalf("Event %s references unknown user %s", e.ID, e.UserID)
		}
		if !validTypes[e.Type] {
			t.Errorf("Unknown event type %s", e.Type)
		}
		if e.ProductID != "" && !productIDs[e.ProductID] {
			t.Errorf("Event %s references unknown product %s", e.ID, e.ProductID)
		}
		if e.Type == EventPurchase {
			purchases++
			if e.ProductID != "" {
				t.Errorf("Purchase event %s should not carry a product id", e.ID)
			}
		}
		if e.SessionID == "" {
			t.Errorf("Event %s has empty session id", e.ID)
		}
		if e.Timestamp.After(testNow) {
			t.Errorf("Event %s has future timestamp %v", e.ID, e.Timestamp)
		}
		if i > 0 && events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Fatal("Events are not sorted by timestamp")
		}
	}

	if purchases != len(finalized) {
		t.Errorf("Expected exactly %d purchase events, got %d", len(finalized), purchases)
	}
}

func TestPurchaseEventsMirrorOrders(t *testing.T) {
	ds := testDataset(t, 42, Counts{Users: 10, Products: 5, Orders: 20, Events: 100})

	type key struct {
		userID string
		ts     time.Time
	}
	orderKeys := make(map[key]int)
	for _, o := range ds.Orders {
		orderKeys[key{o.UserID, o.OrderDate}]++
	}

	purchases := 0
	for _, e := range ds.Events {
		if e.Type != EventPurchase {
			continue
		}
		purchases++
		k := key{e.UserID, e.Timestamp}
		if orderKeys[k] == 0 {
			t.Errorf("Purchase event %s has no matching order (user=%s ts=%v)",
				e.ID, e.UserID, e.Timestamp)
			continue
		}
		orderKeys[k]--
	}

	if purchases != len(ds.Orders) {
		t.Errorf("Expected %d purchase events for %d orders, got %d",
			len(ds.Orders), len(ds.Orders), purchases)
	}
}

func TestGenerateAllSmallScenario(t *testing.T) {
	ds := testDataset(t, 42, Counts{Users: 10, Products: 5, Orders: 20, Events: 100})

	if len(ds.Users) != 10 {
		t.Errorf("Expected 10 users, got %d", len(ds.Users))
	}
	if len(ds.Products) != 5 {
		t.Errorf("Expected 5 products, got %d", len(ds.Products))
	}
	if len(ds.Orders) != 20 {
		t.Errorf("Expected 20 orders, got %d", len(ds.Orders))
	}
	if len(ds.OrderItems) == 0 {
		t.Error("Expected order items")
	}
	if len(ds.Events) != 100 {
		t.Errorf("Expected 100 events, got %d", len(ds.Events))
	}
}

func TestGenerateAllZeroUsers(t *testing.T) {
	ds := testDataset(t, 3, Counts{Users: 0, Products: 10, Orders: 50, Events: 50})

	if len(ds.Users) != 0 {
		t.Errorf("Expected no users, got %d", len(ds.Users))
	}
	if len(ds.Products) != 10 {
		t.Errorf("Products should still be generated, got %d", len(ds.Products))
	}
	if len(ds.Orders) != 0 || len(ds.OrderItems) != 0 || len(ds.Events) != 0 {
		t.Error("Dependent tables should be empty without users")
	}
}

func TestGenerateAllZeroProducts(t *testing.T) {
	ds := testDataset(t, 5, Counts{Users: 10, Products: 0, Orders: 20, Events: 50})

	if len(ds.OrderItems) != 0 {
		t.Errorf("Expected no order items without products, got %d", len(ds.OrderItems))
	}
	for _, o := range ds.Orders {
		if o.TotalAmount != 0 {
			t.Errorf("Order %s total should be zero without products, got %.2f",
				o.ID, o.TotalAmount)
		}
	}
	for _, e := range ds.Events {
		if e.ProductID != "" {
			t.Errorf("Event %s should not reference a product", e.ID)
		}
	}
}

func TestGenerateAllZeroCounts(t *testing.T) {
	ds := testDataset(t, 1, Counts{})

	if len(ds.Users) != 0 || len(ds.Products) != 0 || len(ds.Orders) != 0 ||
		len(ds.OrderItems) != 0 || len(ds.Events) != 0 {
		t.Error("Zero counts should produce an empty dataset")
	}
}

func TestGenerateAllNegativeCounts(t *testing.T) {
	g := NewAt(1, testNow)

	for _, c := range []Counts{
		{Users: -1},
		{Users: 1, Products: -1},
		{Users: 1, Orders: -5},
		{Users: 1, Events: -5},
	} {
		if _, err := g.GenerateAll(c); err == nil {
			t.Errorf("Expected error for counts %+v", c)
		}
	}
}

func TestGenerateAllReferentialIntegrity(t *testing.T) {
	ds := testDataset(t, 99, Counts{Users: 100, Products: 50, Orders: 400, Events: 1000})

	userIDs := make(map[string]bool)
	for _, u := range ds.Users {
		userIDs[u.ID] = true
	}
	productIDs := make(map[string]bool)
	for _, p := range ds.Products {
		productIDs[p.ID] = true
	}
	orderIDs := make(map[string]bool)
	for _, o := range ds.Orders {
		orderIDs[o.ID] = true
		if !userIDs[o.UserID] {
			t.Fatalf("Order %s references unknown user", o.ID)
		}
	}
	for _, it := range ds.OrderItems {
		if !orderIDs[it.OrderID] {
			t.Fatalf("Item references unknown order %s", it.OrderID)
		}
		if !productIDs[it.ProductID] {
			t.Fatalf("Item references unknown product %s", it.ProductID)
		}
	}
	for _, e := range ds.Events {
		if !userIDs[e.UserID] {
			t.Fatalf("Event %s references unknown user", e.ID)
		}
		if e.ProductID != "" && !productIDs[e.ProductID] {
			t.Fatalf("Event %s references unknown product", e.ID)
		}
	}
}

func TestSetWeights(t *testing.T) {
	g := NewAt(7, testNow)
	w := &Weights{
		Countries: []WeightedValue{{Name: "Narnia", Weight: 1.0}},
		Channels:  []WeightedValue{{Name: "carrier_pigeon", Weight: 1.0}},
		Categories: []Category{
			{
				Name:          "Wands",
				Subcategories: []string{"Oak", "Holly"},
				PriceMin:      10,
				PriceMax:      100,
				Popularity:    1.0,
				BaseNames:     []string{"Wand"},
			},
		},
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("Test weights invalid: %v", err)
	}
	g.SetWeights(w)

	users, err := g.GenerateUsers(20)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}
	for _, u := range users {
		if u.Country != "Narnia" {
			t.Errorf("Expected overridden country, got %s", u.Country)
		}
		if u.AcquisitionChannel != "carrier_pigeon" {
			t.Errorf("Expected overridden channel, got %s", u.AcquisitionChannel)
		}
	}

	products, err := g.GenerateProducts(20)
	if err != nil {
		t.Fatalf("GenerateProducts failed: %v", err)
	}
	for _, p := range products {
		if p.Category != "Wands" {
			t.Errorf("Expected overridden category, got %s", p.Category)
		}
	}
}

func BenchmarkGenerateAll(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := NewAt(42, testNow)
		if _, err := g.GenerateAll(Counts{Users: 100, Products: 50, Orders: 200, Events: 500}); err != nil {
			b.Fatal(err)
		}
	}
}
