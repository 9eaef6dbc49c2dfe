package cart

import (
	"github.com/shopspring/decimal"
)

// Command is a tagged cart transition consumed by Reduce.
type Command interface {
	command()
}

// AddCommand merges Quantity into the (Product, Variant) line or appends it.
type AddCommand struct {
	Product  Product
	Variant  *Variant
	Quantity int
}

// RemoveCommand deletes the line with LineID.
type RemoveCommand struct {
	LineID string
}

// UpdateQuantityCommand sets the line quantity; zero or less removes the line.
type UpdateQuantityCommand struct {
	LineID   string
	Quantity int
}

// ClearCommand empties the cart and closes it.
type ClearCommand struct{}

// LoadCommand replaces all lines, keeping the open flag.
type LoadCommand struct {
	Items []LineItem
}

// ToggleOpenCommand flips the visibility flag.
type ToggleOpenCommand struct{}

func (AddCommand) command()            {}
func (RemoveCommand) command()         {}
func (UpdateQuantityCommand) command() {}
func (ClearCommand) command()          {}
func (LoadCommand) command()           {}
func (ToggleOpenCommand) command()     {}

// Reduce applies cmd to state and returns the next state. It never mutates the
// input, and it is the only place Total and ItemCount are computed.
func Reduce(state State, cmd Command) State {
	items := state.Items
	isOpen := state.IsOpen

	switch c := cmd.(type) {
	case AddCommand:
		if c.Quantity < 1 || c.Product.ID == "" {
			return state
		}
		items = addLine(items, c)
	case RemoveCommand:
		items = removeLine(items, c.LineID)
	case UpdateQuantityCommand:
		if c.Quantity <= 0 {
			items = removeLine(items, c.LineID)
		} else {
			items = setQuantity(items, c.LineID, c.Quantity)
		}
	case ClearCommand:
		items = nil
		isOpen = false
	case LoadCommand:
		items = normalizeLines(c.Items)
	case ToggleOpenCommand:
		isOpen = !isOpen
	default:
		return state
	}

	return derive(items, isOpen)
}

func derive(items []LineItem, isOpen bool) State {
	if items == nil {
		items = []LineItem{}
	}
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	return State{
		Items:     items,
		Total:     total,
		ItemCount: count,
		IsOpen:    isOpen,
	}
}

func addLine(items []LineItem, c AddCommand) []LineItem {
	id := LineID(c.Product.ID, c.Variant)
	next := make([]LineItem, 0, len(items)+1)
	merged := false
	for _, item := range items {
		if item.ID == id {
			item = item.clone()
			item.Quantity += c.Quantity
			merged = true
		}
		next = append(next, item)
	}
	if !merged {
		line := LineItem{
			ID:       id,
			Product:  c.Product,
			Variant:  c.Variant,
			Quantity: c.Quantity,
		}
		next = append(next, line.clone())
	}
	return next
}

func removeLine(items []LineItem, lineID string) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != lineID {
			next = append(next, item)
		}
	}
	return next
}

func setQuantity(items []LineItem, lineID string, quantity int) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == lineID {
			item = item.clone()
			item.Quantity = quantity
		}
		next = append(next, item)
	}
	return next
}

// normalizeLines drops non-positive quantities and folds duplicate ids into the
// first occurrence so ids stay unique.
func normalizeLines(in []LineItem) []LineItem {
	next := make([]LineItem, 0, len(in))
	index := make(map[string]int, len(in))
	for _, item := range in {
		if item.Quantity < 1 {
			continue
		}
		if item.ID == "" {
			item.ID = LineID(item.Product.ID, item.Variant)
		}
		if pos, ok := index[item.ID]; ok {
			next[pos].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(next)
		next = append(next, item.clone())
	}
	return next
}
