package domain

// CartLine is one product entry in a cart. Line IDs are unique within a cart
// snapshot: the local store generates timestamp-based IDs, the backend assigns
// its own for the authenticated cart.
type CartLine struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is the ordered set of lines a shopper intends to purchase plus its
// derived total. TotalAmount is never set directly; it is recomputed from the
// lines after every mutation.
type Cart struct {
	Items       []CartLine `json:"items"`
	TotalAmount int64      `json:"totalAmount"`
}

// EmptyCart returns a cart with no lines and a zero total.
func EmptyCart() *Cart {
	return &Cart{Items: []CartLine{}, TotalAmount: 0}
}

// Recalculate recomputes TotalAmount from the lines (in cents).
func (c *Cart) Recalculate() {
	var total int64
	for _, line := range c.Items {
		total += line.Product.UnitPrice * int64(line.Quantity)
	}
	c.TotalAmount = total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Items {
		count += line.Quantity
	}
	return count
}

// FindLine returns the index of the line with the given ID, or -1.
func (c *Cart) FindLine(lineID string) int {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			return i
		}
	}
	return -1
}

// FindLineByProduct returns the index of the line referencing the given
// product ID, or -1.
func (c *Cart) FindLineByProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Callers holding a snapshot must not be able to
// mutate the original through the returned value.
func (c *Cart) Clone() *Cart {
	cpy := &Cart{
		Items:       make([]CartLine, len(c.Items)),
		TotalAmount: c.TotalAmount,
	}
	copy(cpy.Items, c.Items)
	return cpy
}
