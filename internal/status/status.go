// Package status is the single source of truth mapping order status changes
// to delivery status changes and vice versa.
package status

import "fronteira/internal/model"

// Source identifies which side of the order/delivery pair initiated a
// transition. Exactly one side changes per call.
type Source int

const (
	OrderDriven Source = iota
	DeliveryDriven
)

// Result describes the full effect of one transition: the status each side
// ends up with and the timestamps to stamp. An empty paired status means the
// other side is left untouched.
type Result struct {
	OrderStatus    string
	DeliveryStatus string
	StampPickedAt  bool
	StampDelivered bool
}

// orderToDelivery maps an order-driven status change to the delivery status
// it forces. Transitions absent from the table affect only the order.
var orderToDelivery = map[string]Result{
	model.OrderStatusShipped:   {DeliveryStatus: model.DeliveryStatusInTransit},
	model.OrderStatusDelivered: {DeliveryStatus: model.DeliveryStatusDelivered, StampDelivered: true},
	model.OrderStatusCancelled: {DeliveryStatus: model.DeliveryStatusFailed},
}

// deliveryToOrder maps a delivery-driven status change to the order status it
// forces.
var deliveryToOrder = map[string]Result{
	model.DeliveryStatusInTransit: {OrderStatus: model.OrderStatusShipped, StampPickedAt: true},
	model.DeliveryStatusDelivered: {OrderStatus: model.OrderStatusDelivered, StampDelivered: true},
	model.DeliveryStatusFailed:    {OrderStatus: model.OrderStatusCancelled},
}

// Sync derives the paired-entity effect of setting newStatus from the given
// direction. The initiating side's own status is always included in the
// result so callers can persist both in one place.
func Sync(source Source, newStatus string) Result {
	switch source {
	case OrderDriven:
		result := orderToDelivery[newStatus]
		result.OrderStatus = newStatus
		return result
	case DeliveryDriven:
		result := deliveryToOrder[newStatus]
		result.DeliveryStatus = newStatus
		return result
	}
	return Result{}
}

// orderRank orders the forward progression of order statuses. Cancellation is
// handled separately since it is reachable from any non-terminal status.
var orderRank = map[string]int{
	model.OrderStatusPending:   0,
	model.OrderStatusPaid:      1,
	model.OrderStatusPreparing: 2,
	model.OrderStatusShipped:   3,
	model.OrderStatusDelivered: 4,
}

var deliveryRank = map[string]int{
	model.DeliveryStatusPending:   0,
	model.DeliveryStatusAssigned:  1,
	model.DeliveryStatusInTransit: 2,
	model.DeliveryStatusDelivered: 3,
}

// OrderTerminal reports whether an order status freezes the order.
func OrderTerminal(s string) bool {
	return s == model.OrderStatusDelivered || s == model.OrderStatusCancelled
}

// DeliveryTerminal reports whether a delivery status freezes the delivery.
func DeliveryTerminal(s string) bool {
	return s == model.DeliveryStatusDelivered || s == model.DeliveryStatusFailed
}

// CanTransitionOrder reports whether an order may move from one status to
// another: strictly forward, except cancellation from any non-terminal state.
func CanTransitionOrder(from, to string) bool {
	if !model.ValidOrderStatus(from) || !model.ValidOrderStatus(to) || from == to {
		return false
	}
	if OrderTerminal(from) {
		return false
	}
	if to == model.OrderStatusCancelled {
		return true
	}
	return orderRank[to] > orderRank[from]
}

// CanTransitionDelivery reports whether a delivery may move from one status
// to another: strictly forward, except failure from any non-terminal state.
func CanTransitionDelivery(from, to string) bool {
	if !model.ValidDeliveryStatus(from) || !model.ValidDeliveryStatus(to) || from == to {
		return false
	}
	if DeliveryTerminal(from) {
		return false
	}
	if to == model.DeliveryStatusFailed {
		return true
	}
	return deliveryRank[to] > deliveryRank[from]
}
