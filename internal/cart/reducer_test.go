package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testProduct(id, price string, stock int) Product {
	return Product{
		ID:             id,
		Name:           "Frame " + id,
		Price:          decimal.RequireFromString(price),
		TrackInventory: true,
		StockQuantity:  stock,
	}
}

func priced(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestLineID(t *testing.T) {
	t.Parallel()

	if got := LineID("12", nil); got != "12-default" {
		t.Fatalf("expected default variant key, got %q", got)
	}
	if got := LineID("12", &Variant{ID: "3"}); got != "12-3" {
		t.Fatalf("expected variant key, got %q", got)
	}
	if got := LineID("12", &Variant{}); got != "12-default" {
		t.Fatalf("variant without id should use default key, got %q", got)
	}
}

func TestReduceAddMergesSameLine(t *testing.T) {
	t.Parallel()

	p := testProduct("1", "10.00", 100)
	state := State{}
	quantities := []int{1, 3, 2, 5}
	for _, q := range quantities {
		state = Reduce(state, AddCommand{Product: p, Quantity: q})
	}

	if len(state.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(state.Items))
	}
	if state.Items[0].Quantity != 11 {
		t.Fatalf("expected quantity 11, got %d", state.Items[0].Quantity)
	}
	if state.ItemCount != 11 {
		t.Fatalf("expected item count 11, got %d", state.ItemCount)
	}
	if !state.Total.Equal(decimal.RequireFromString("110")) {
		t.Fatalf("expected total 110, got %s", state.Total)
	}
}

func TestReduceAddSeparatesVariants(t *testing.T) {
	t.Parallel()

	p := testProduct("1", "10.00", 100)
	gold := &Variant{ID: "g", Color: "Gold", Price: priced("12.50")}
	black := &Variant{ID: "b", Color: "Black"}

	state := Reduce(State{}, AddCommand{Product: p, Variant: gold, Quantity: 2})
	state = Reduce(state, AddCommand{Product: p, Variant: black, Quantity: 1})
	state = Reduce(state, AddCommand{Product: p, Quantity: 1})

	if len(state.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(state.Items))
	}
	// 2 x 12.50 (variant override) + 10 + 10
	if !state.Total.Equal(decimal.RequireFromString("45")) {
		t.Fatalf("expected total 45, got %s", state.Total)
	}
	if state.Items[0].ID != "1-g" || state.Items[2].ID != "1-default" {
		t.Fatalf("unexpected line order %+v", state.Items)
	}
}

func TestReduceIgnoresInvalidAdd(t *testing.T) {
	t.Parallel()

	state := Reduce(State{}, AddCommand{Product: testProduct("1", "5", 1), Quantity: 1})
	next := Reduce(state, AddCommand{Product: testProduct("1", "5", 1), Quantity: 0})
	if next.Items[0].Quantity != 1 {
		t.Fatalf("zero quantity add must be ignored")
	}
	next = Reduce(state, AddCommand{Product: Product{}, Quantity: 1})
	if len(next.Items) != 1 {
		t.Fatalf("add without product id must be ignored")
	}
}

func TestReduceUpdateZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	base := Reduce(State{}, AddCommand{Product: testProduct("1", "3.30", 9), Quantity: 2})
	base = Reduce(base, AddCommand{Product: testProduct("2", "1.10", 9), Quantity: 4})

	removed := Reduce(base, RemoveCommand{LineID: "1-default"})
	zeroed := Reduce(base, UpdateQuantityCommand{LineID: "1-default", Quantity: 0})
	negative := Reduce(base, UpdateQuantityCommand{LineID: "1-default", Quantity: -3})

	for name, got := range map[string]State{"zero": zeroed, "negative": negative} {
		if len(got.Items) != len(removed.Items) || got.Items[0].ID != removed.Items[0].ID {
			t.Fatalf("%s: expected same lines as remove, got %+v", name, got.Items)
		}
		if !got.Total.Equal(removed.Total) || got.ItemCount != removed.ItemCount {
			t.Fatalf("%s: derived fields differ: %s/%d vs %s/%d", name, got.Total, got.ItemCount, removed.Total, removed.ItemCount)
		}
	}
	if !removed.Total.Equal(decimal.RequireFromString("4.4")) {
		t.Fatalf("expected total 4.4, got %s", removed.Total)
	}
}

func TestReduceUpdateSetsQuantity(t *testing.T) {
	t.Parallel()

	state := Reduce(State{}, AddCommand{Product: testProduct("1", "2.50", 9), Quantity: 1})
	state = Reduce(state, UpdateQuantityCommand{LineID: "1-default", Quantity: 4})
	if state.Items[0].Quantity != 4 || state.ItemCount != 4 {
		t.Fatalf("expected quantity 4, got %+v", state)
	}
	if !state.Total.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected total 10, got %s", state.Total)
	}

	unchanged := Reduce(state, UpdateQuantityCommand{LineID: "missing", Quantity: 2})
	if unchanged.ItemCount != 4 {
		t.Fatalf("unknown line update must not change state")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	before := Reduce(State{}, AddCommand{Product: testProduct("1", "1", 9), Quantity: 1})
	_ = Reduce(before, AddCommand{Product: testProduct("1", "1", 9), Quantity: 5})
	_ = Reduce(before, UpdateQuantityCommand{LineID: "1-default", Quantity: 7})

	if before.Items[0].Quantity != 1 || before.ItemCount != 1 {
		t.Fatalf("input state was mutated: %+v", before)
	}
}

func TestReduceClearAndToggle(t *testing.T) {
	t.Parallel()

	state := Reduce(State{}, ToggleOpenCommand{})
	if !state.IsOpen {
		t.Fatalf("toggle should open the cart")
	}
	state = Reduce(state, AddCommand{Product: testProduct("1", "1", 9), Quantity: 2})
	if !state.IsOpen {
		t.Fatalf("add must keep the open flag")
	}

	state = Reduce(state, ClearCommand{})
	if len(state.Items) != 0 || state.ItemCount != 0 || !state.Total.IsZero() {
		t.Fatalf("clear should empty the cart, got %+v", state)
	}
	if state.IsOpen {
		t.Fatalf("clear should close the cart")
	}
	if state.Items == nil {
		t.Fatalf("items should be an empty slice, not nil")
	}
}

func TestReduceLoadNormalizesLines(t *testing.T) {
	t.Parallel()

	p := testProduct("1", "2", 9)
	state := Reduce(State{IsOpen: true}, LoadCommand{Items: []LineItem{
		{ID: "1-default", RemoteID: "10", Product: p, Quantity: 2},
		{ID: "1-default", RemoteID: "11", Product: p, Quantity: 1},
		{Product: testProduct("2", "5", 9), Quantity: 1},
		{ID: "3-default", Product: testProduct("3", "9", 9), Quantity: 0},
	}})

	if len(state.Items) != 2 {
		t.Fatalf("expected 2 lines after normalization, got %+v", state.Items)
	}
	if state.Items[0].Quantity != 3 || state.Items[0].RemoteID != "10" {
		t.Fatalf("duplicate ids should fold into the first line, got %+v", state.Items[0])
	}
	if state.Items[1].ID != "2-default" {
		t.Fatalf("missing id should be derived, got %q", state.Items[1].ID)
	}
	if !state.Total.Equal(decimal.RequireFromString("11")) || state.ItemCount != 4 {
		t.Fatalf("unexpected derived fields %s/%d", state.Total, state.ItemCount)
	}
	if !state.IsOpen {
		t.Fatalf("load must keep the open flag")
	}
}

func TestReduceRecomputesTotalsFromLines(t *testing.T) {
	t.Parallel()

	// Stale derived fields on the input are never trusted.
	input := State{Total: decimal.RequireFromString("999"), ItemCount: 42}
	state := Reduce(input, LoadCommand{Items: []LineItem{
		{ID: "1-v", Product: testProduct("1", "4", 9), Variant: &Variant{ID: "v", Price: priced("6")}, Quantity: 2},
	}})
	if !state.Total.Equal(decimal.RequireFromString("12")) || state.ItemCount != 2 {
		t.Fatalf("expected 12/2, got %s/%d", state.Total, state.ItemCount)
	}
}

func TestStockLimit(t *testing.T) {
	t.Parallel()

	stock := 2
	tests := []struct {
		name    string
		product Product
		variant *Variant
		limit   int
		tracked bool
	}{
		{name: "untracked", product: Product{StockQuantity: 1}, tracked: false},
		{name: "product stock", product: Product{TrackInventory: true, StockQuantity: 5}, limit: 5, tracked: true},
		{name: "variant stock", product: Product{TrackInventory: true, StockQuantity: 5}, variant: &Variant{ID: "v", StockQuantity: &stock}, limit: 2, tracked: true},
		{name: "variant without stock", product: Product{TrackInventory: true, StockQuantity: 5}, variant: &Variant{ID: "v"}, limit: 5, tracked: true},
	}

	for _, tt := range tests {
		limit, tracked := StockLimit(tt.product, tt.variant)
		if limit != tt.limit || tracked != tt.tracked {
			t.Fatalf("%s: expected %d/%v, got %d/%v", tt.name, tt.limit, tt.tracked, limit, tracked)
		}
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	t.Parallel()

	stock := 3
	state := Reduce(State{}, AddCommand{
		Product:  Product{ID: "1", Price: decimal.NewFromInt(1), Images: []string{"a.jpg"}},
		Variant:  &Variant{ID: "v", StockQuantity: &stock, Price: priced("2")},
		Quantity: 1,
	})

	clone := state.Clone()
	clone.Items[0].Quantity = 99
	clone.Items[0].Product.Images[0] = "changed.jpg"
	*clone.Items[0].Variant.StockQuantity = 0

	if state.Items[0].Quantity != 1 || state.Items[0].Product.Images[0] != "a.jpg" || *state.Items[0].Variant.StockQuantity != 3 {
		t.Fatalf("clone shares memory with the original: %+v", state.Items[0])
	}
}
