package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storeadmin/pkg/models"
)

func TestReduceSetOrdersClearsError(t *testing.T) {
	kind := KindStoreUnavailable
	s := State{LastError: &kind, ErrorMessage: "down"}

	s = Reduce(s, SetOrders{Orders: fixture()})

	assert.Len(t, s.Orders, 5)
	assert.Nil(t, s.LastError)
	assert.Empty(t, s.ErrorMessage)
}

func TestReduceCreatePrependsAndFocuses(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})
	fresh := order("2000", models.StatusConfirmed, 0)

	s = Reduce(s, Create{Order: fresh})

	require.Len(t, s.Orders, 6)
	assert.Equal(t, "2000", s.Orders[0].ID)
	require.NotNil(t, s.Focused)
	assert.Equal(t, "2000", s.Focused.ID)
}

func TestReduceCreateReplacesExistingCopy(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})
	stale := order("2000", models.StatusConfirmed, 0)
	s = Reduce(s, SetOrders{Orders: append([]models.Order{stale}, fixture()...)})
	fresh := stale
	fresh.Items = []models.LineItem{{ProductName: "Kurta", Quantity: 1}}

	s = Reduce(s, Create{Order: fresh})

	assert.Equal(t, []string{"2000", "1001", "1002", "1003", "1004", "1005"}, ids(s.Orders))
	assert.Len(t, s.Orders[0].Items, 1)
}

func TestReduceUpdateStatusTouchesOneOrder(t *testing.T) {
	before := Reduce(State{}, SetOrders{Orders: fixture()})
	at := base.Add(time.Hour)

	after := Reduce(before, UpdateStatus{ID: "1001", Status: models.StatusShipped, At: at})

	for i := range after.Orders {
		if after.Orders[i].ID == "1001" {
			assert.Equal(t, models.StatusShipped, after.Orders[i].Status)
			assert.Equal(t, at, after.Orders[i].UpdatedAt)
			continue
		}
		assert.Equal(t, before.Orders[i], after.Orders[i])
	}
	// Previous state is not modified.
	assert.Equal(t, models.StatusPending, before.Orders[0].Status)
}

func TestReduceUnknownIDIsNoop(t *testing.T) {
	before := Reduce(State{}, SetOrders{Orders: fixture()})

	after := Reduce(before, UpdateStatus{ID: "missing", Status: models.StatusShipped, At: base})
	after = Reduce(after, SetTracking{ID: "missing", TrackingNumber: "T", At: base})

	assert.Equal(t, before.Orders, after.Orders)
}

func TestReduceFocusFollowsUpdates(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})
	s = Reduce(s, Focus{ID: "1002"})
	require.NotNil(t, s.Focused)

	s = Reduce(s, SetTracking{ID: "1002", TrackingNumber: "TRK-7", At: base})

	assert.Equal(t, "TRK-7", s.Focused.TrackingNumber)

	s = Reduce(s, Focus{ID: "missing"})
	assert.Nil(t, s.Focused)
}

func TestReduceToggleIsCompareAndSet(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})

	// 1001 is pending, not confirmed: nothing happens.
	s = Reduce(s, ToggleStatus{ID: "1001", From: models.StatusConfirmed, To: models.StatusPending, At: base})
	assert.Equal(t, models.StatusPending, s.Orders[0].Status)

	s = Reduce(s, ToggleStatus{ID: "1001", From: models.StatusPending, To: models.StatusConfirmed, At: base})
	assert.Equal(t, models.StatusConfirmed, s.Orders[0].Status)
}

func TestReduceDelete(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})
	s = Reduce(s, Focus{ID: "1003"})

	s = Reduce(s, Delete{ID: "1003"})

	assert.Equal(t, []string{"1001", "1002", "1004", "1005"}, ids(s.Orders))
	assert.Nil(t, s.Focused)
}

func TestReduceLoadingAndError(t *testing.T) {
	kind := KindNotFound

	s := Reduce(State{}, SetLoading{Loading: true})
	s = Reduce(s, SetError{Kind: &kind, Message: "order not found"})

	assert.True(t, s.Loading)
	require.NotNil(t, s.LastError)
	assert.Equal(t, KindNotFound, *s.LastError)
}

func TestStateCloneIsDeep(t *testing.T) {
	s := Reduce(State{}, SetOrders{Orders: fixture()})
	s = Reduce(s, Focus{ID: "1001"})

	c := s.Clone()
	c.Orders[0].Status = models.StatusCancelled
	c.Focused.Notes = "changed"

	assert.Equal(t, models.StatusPending, s.Orders[0].Status)
	assert.Empty(t, s.Focused.Notes)
}
