package orders

import (
	"time"

	"github.com/example/storeadmin/pkg/models"
)

// State is the process-local order cache. Orders keep fetch/insertion order.
type State struct {
	Orders       []models.Order
	Focused      *models.Order
	Loading      bool
	LastError    *ErrorKind
	ErrorMessage string
}

// Command is one state transition. The set is closed: see Reduce.
type Command interface {
	isCommand()
}

// SetOrders replaces the cached orders wholesale and clears the error.
type SetOrders struct {
	Orders []models.Order
}

// Create prepends a freshly created order and focuses it. A copy of the same
// order already loaded by a resync is replaced.
type Create struct {
	Order models.Order
}

type UpdateStatus struct {
	ID     string
	Status models.Status
	At     time.Time
}

type SetTracking struct {
	ID             string
	TrackingNumber string
	At             time.Time
}

// ToggleStatus moves an order from From to To, but only if it is still in
// From. A concurrent refetch may already have replaced it.
type ToggleStatus struct {
	ID   string
	From models.Status
	To   models.Status
	At   time.Time
}

type Delete struct {
	ID string
}

// Focus selects an order for detailed inspection. An empty ID clears it.
type Focus struct {
	ID string
}

type SetLoading struct {
	Loading bool
}

// SetError records an error. A nil Kind clears it.
type SetError struct {
	Kind    *ErrorKind
	Message string
}

func (SetOrders) isCommand()    {}
func (Create) isCommand()       {}
func (UpdateStatus) isCommand() {}
func (SetTracking) isCommand()  {}
func (ToggleStatus) isCommand() {}
func (Delete) isCommand()       {}
func (Focus) isCommand()        {}
func (SetLoading) isCommand()   {}
func (SetError) isCommand()     {}

// Reduce applies cmd to s and returns the new state. s is not modified;
// unchanged orders are shared between the two.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case SetOrders:
		s.Orders = cloneOrders(c.Orders)
		s.Focused = refocus(s.Orders, s.Focused)
		s.LastError = nil
		s.ErrorMessage = ""
	case Create:
		next := make([]models.Order, 0, len(s.Orders)+1)
		next = append(next, c.Order.Clone())
		for _, o := range s.Orders {
			if o.ID != c.Order.ID {
				next = append(next, o)
			}
		}
		s.Orders = next
		focused := c.Order.Clone()
		s.Focused = &focused
	case UpdateStatus:
		s.Orders = mutate(s.Orders, c.ID, func(o *models.Order) {
			o.Status = c.Status
			o.UpdatedAt = c.At
		})
		s.Focused = refocus(s.Orders, s.Focused)
	case SetTracking:
		s.Orders = mutate(s.Orders, c.ID, func(o *models.Order) {
			o.TrackingNumber = c.TrackingNumber
			o.UpdatedAt = c.At
		})
		s.Focused = refocus(s.Orders, s.Focused)
	case ToggleStatus:
		s.Orders = mutate(s.Orders, c.ID, func(o *models.Order) {
			if o.Status == c.From {
				o.Status = c.To
				o.UpdatedAt = c.At
			}
		})
		s.Focused = refocus(s.Orders, s.Focused)
	case Delete:
		next := make([]models.Order, 0, len(s.Orders))
		for _, o := range s.Orders {
			if o.ID != c.ID {
				next = append(next, o)
			}
		}
		s.Orders = next
		if s.Focused != nil && s.Focused.ID == c.ID {
			s.Focused = nil
		}
	case Focus:
		s.Focused = nil
		if i := indexOf(s.Orders, c.ID); i >= 0 {
			focused := s.Orders[i].Clone()
			s.Focused = &focused
		}
	case SetLoading:
		s.Loading = c.Loading
	case SetError:
		s.LastError = c.Kind
		s.ErrorMessage = c.Message
	}
	return s
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Orders = cloneOrders(s.Orders)
	if s.Focused != nil {
		f := s.Focused.Clone()
		c.Focused = &f
	}
	if s.LastError != nil {
		k := *s.LastError
		c.LastError = &k
	}
	return c
}

func mutate(orders []models.Order, id string, fn func(*models.Order)) []models.Order {
	i := indexOf(orders, id)
	if i < 0 {
		return orders
	}
	next := make([]models.Order, len(orders))
	copy(next, orders)
	o := next[i].Clone()
	fn(&o)
	next[i] = o
	return next
}

// refocus re-reads the focused order from orders so it tracks updates. A
// focused order that disappeared is kept as last seen.
func refocus(orders []models.Order, focused *models.Order) *models.Order {
	if focused == nil {
		return nil
	}
	if i := indexOf(orders, focused.ID); i >= 0 {
		f := orders[i].Clone()
		return &f
	}
	return focused
}

func indexOf(orders []models.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrders(in []models.Order) []models.Order {
	out := make([]models.Order, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
