package domain

import "testing"

func TestAllowedTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderPending, OrderPaid},
		{OrderPending, OrderCancelled},
		{OrderPaid, OrderProcessing},
		{OrderPaid, OrderRefunded},
		{OrderProcessing, OrderShipped},
		{OrderShipped, OrderDelivered},
		{OrderDelivered, OrderRefunded},
	}
	for _, tr := range allowed {
		if !AllowedTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to string }{
		{OrderDelivered, OrderPending},
		{OrderShipped, OrderPending},
		{OrderCancelled, OrderPaid},
		{OrderRefunded, OrderPending},
		{OrderPending, OrderShipped},
		{OrderShipped, OrderCancelled},
	}
	for _, tr := range forbidden {
		if AllowedTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be rejected", tr.from, tr.to)
		}
	}
}

func TestCanBeCancelled(t *testing.T) {
	o := Order{Status: OrderPending, ShippingStatus: ShippingPending}
	if !o.CanBeCancelled() {
		t.Fatal("pending order should be cancellable")
	}
	o.Status = OrderPaid
	if !o.CanBeCancelled() {
		t.Fatal("paid order with pending shipping should be cancellable")
	}
	o.ShippingStatus = ShippingPreparing
	if o.CanBeCancelled() {
		t.Fatal("order in fulfillment should not be cancellable")
	}
	o = Order{Status: OrderShipped, ShippingStatus: ShippingShipped}
	if o.CanBeCancelled() {
		t.Fatal("shipped order should not be cancellable")
	}
}

func TestPaymentCanBeRefunded(t *testing.T) {
	p := Payment{Status: PaymentCompleted, Amount: dec("50"), RefundAmount: dec("0")}
	if !p.CanBeRefunded() {
		t.Fatal("completed payment should be refundable")
	}
	p.RefundAmount = dec("50")
	if p.CanBeRefunded() {
		t.Fatal("fully refunded payment should not be refundable again")
	}
	p = Payment{Status: PaymentPending, Amount: dec("50")}
	if p.CanBeRefunded() {
		t.Fatal("pending payment should not be refundable")
	}
}
