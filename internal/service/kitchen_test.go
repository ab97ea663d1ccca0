package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roomserve/internal/domain"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, qos byte, retained bool, payload []byte, timeout time.Duration) error {
	args := m.Called(topic, qos, retained, payload, timeout)
	return args.Error(0)
}

func TestMQTTKitchenNotifier_TopicPerTenant(t *testing.T) {
	pub := new(MockPublisher)
	n := NewMQTTKitchenNotifier(pub, "roomserve/kitchen", 1, zap.NewNop())

	o := &domain.Order{ID: "o1", TenantID: domain.TenantPtr("T1"), RoomID: "8201", Items: phoItems()}
	var sent []byte
	pub.On("Publish", "roomserve/kitchen/T1", byte(1), false, mock.Anything, 5*time.Second).
		Run(func(args mock.Arguments) { sent = args.Get(3).([]byte) }).
		Return(nil).Once()

	require.NoError(t, n.NotifyKitchen(context.Background(), NewKitchenTicket(o, time.Now())))
	pub.AssertExpectations(t)

	var ticket KitchenTicket
	require.NoError(t, json.Unmarshal(sent, &ticket))
	assert.Equal(t, "o1", ticket.OrderID)
	assert.Equal(t, "8201", ticket.RoomID)
	require.Len(t, ticket.Items, 1)

	assert.Equal(t, "roomserve/kitchen/direct", n.Topic(KitchenTicket{OrderID: "o2"}))
}

func TestMQTTKitchenNotifier_DeadlineBoundsTimeout(t *testing.T) {
	pub := new(MockPublisher)
	n := NewMQTTKitchenNotifier(pub, "k", 0, zap.NewNop())
	pub.On("Publish", "k/direct", byte(0), false, mock.Anything, mock.MatchedBy(func(d time.Duration) bool {
		return d > 0 && d <= time.Second
	})).Return(errors.New("not connected")).Once()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := n.NotifyKitchen(ctx, KitchenTicket{OrderID: "o1"})
	assert.EqualError(t, err, "not connected")
	pub.AssertExpectations(t)
}
