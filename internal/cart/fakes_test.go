package cart

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/almahra/storefront/pkg/cartapi"
)

// fakeRemote behaves like the backend cart: adds coalesce by product and variant.
type fakeRemote struct {
	mu      sync.Mutex
	lines   []cartapi.CartLine
	catalog map[cartapi.ID]cartapi.Product
	nextID  int
	calls   []string

	addErr    error
	updateErr error
	removeErr error
	clearErr  error
	getErr    error
	onGet     func()
}

func newFakeRemote(products ...cartapi.Product) *fakeRemote {
	catalog := make(map[cartapi.ID]cartapi.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return &fakeRemote{catalog: catalog, nextID: 100}
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRemote) GetCart(ctx context.Context) (*cartapi.Cart, error) {
	f.record("get")
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	lines := make([]cartapi.CartLine, len(f.lines))
	copy(lines, f.lines)
	return &cartapi.Cart{Items: lines}, nil
}

func (f *fakeRemote) AddItem(ctx context.Context, req cartapi.AddItemRequest) error {
	f.record("add")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	for i, line := range f.lines {
		if line.Product != nil && line.Product.ID == req.ProductID && sameVariant(line.Variant, req.VariantID) {
			f.lines[i].Quantity += req.Quantity
			return nil
		}
	}
	product := f.catalog[req.ProductID]
	line := cartapi.CartLine{ID: f.newID(), Quantity: req.Quantity, Product: &product}
	if req.VariantID != nil {
		line.Variant = &cartapi.Variant{ID: *req.VariantID}
	}
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeRemote) UpdateItem(ctx context.Context, itemID string, req cartapi.UpdateItemRequest) error {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, line := range f.lines {
		if line.ID.String() == itemID {
			f.lines[i].Quantity = req.Quantity
		}
	}
	return nil
}

func (f *fakeRemote) RemoveItem(ctx context.Context, itemID string) error {
	f.record("remove")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	kept := f.lines[:0]
	for _, line := range f.lines {
		if line.ID.String() != itemID {
			kept = append(kept, line)
		}
	}
	f.lines = kept
	return nil
}

func (f *fakeRemote) Clear(ctx context.Context) error {
	f.record("clear")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.lines = nil
	return nil
}

func (f *fakeRemote) Count(ctx context.Context) (int, error) {
	f.record("count")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return 0, f.getErr
	}
	return len(f.lines), nil
}

func (f *fakeRemote) setQuantity(productID cartapi.ID, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, line := range f.lines {
		if line.Product != nil && line.Product.ID == productID {
			f.lines[i].Quantity = quantity
		}
	}
}

func (f *fakeRemote) seed(line cartapi.CartLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

func (f *fakeRemote) newID() cartapi.ID {
	f.nextID++
	return cartapi.ID(strconv.Itoa(f.nextID))
}

func sameVariant(v *cartapi.Variant, id *cartapi.ID) bool {
	if v == nil || v.ID == "" {
		return id == nil
	}
	return id != nil && *id == v.ID
}

type memoryPersistence struct {
	mu      sync.Mutex
	state   *State
	saves   int
	loadErr error
	saveErr error
}

func (m *memoryPersistence) Load(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.state == nil {
		return nil, nil
	}
	copied := m.state.Clone()
	return &copied, nil
}

func (m *memoryPersistence) Save(ctx context.Context, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := state.Clone()
	m.state = &copied
	return nil
}

func (m *memoryPersistence) saved() (*State, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.saves
}

type fakeAuth struct {
	mu            sync.Mutex
	authenticated bool
}

func (f *fakeAuth) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeAuth) set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authenticated = v
}

type fakeOrders struct {
	validation  *cartapi.Validation
	validateErr error
	order       *cartapi.Order
	createErr   error
	validated   int
	requests    []cartapi.CreateOrderRequest
}

func (f *fakeOrders) Validate(ctx context.Context) (*cartapi.Validation, error) {
	f.validated++
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if f.validation == nil {
		return &cartapi.Validation{Valid: true}, nil
	}
	return f.validation, nil
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req cartapi.CreateOrderRequest) (*cartapi.Order, error) {
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.order, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]string
	counts   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[string]string{}, counts: map[string]int{}}
}

func (r *recordingMetrics) ObserveMutation(op, mode, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[op+"/"+mode] = outcome
}

func (r *recordingMetrics) SetItemCount(mode string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[mode] = count
}

func (r *recordingMetrics) outcome(op string, mode Mode) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[op+"/"+string(mode)]
}

func remoteProduct(id string, price string, stock int) cartapi.Product {
	return cartapi.Product{
		ID:             cartapi.ID(id),
		Name:           "Frame " + id,
		Price:          decimal.RequireFromString(price),
		TrackInventory: true,
		StockQuantity:  stock,
	}
}
