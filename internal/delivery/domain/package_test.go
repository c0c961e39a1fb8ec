package domain

import (
	"errors"
	"testing"
	"time"

	"chaski/internal/model"
)

func TestCanTransition_ForwardOnly(t *testing.T) {
	forward := []struct{ from, to string }{
		{model.PackageStatusNew, model.PackageStatusOpenForBids},
		{model.PackageStatusOpenForBids, model.PackageStatusBidSelected},
		{model.PackageStatusBidSelected, model.PackageStatusPendingPickup},
		{model.PackageStatusPendingPickup, model.PackageStatusInTransit},
		{model.PackageStatusInTransit, model.PackageStatusDelivered},
	}
	for _, tr := range forward {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s allowed", tr.from, tr.to)
		}
		// обратный переход всегда запрещен
		if CanTransition(tr.to, tr.from) {
			t.Errorf("expected %s -> %s rejected", tr.to, tr.from)
		}
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	if CanTransition(model.PackageStatusNew, model.PackageStatusBidSelected) {
		t.Error("new -> bid_selected must be rejected")
	}
	if CanTransition(model.PackageStatusOpenForBids, model.PackageStatusInTransit) {
		t.Error("open_for_bids -> in_transit must be rejected")
	}
	if CanTransition(model.PackageStatusBidSelected, model.PackageStatusDelivered) {
		t.Error("bid_selected -> delivered must be rejected")
	}
}

func TestCanTransition_NeverReachesCancelledStates(t *testing.T) {
	// canceled/failed проставляются только через отмену, где вместе со
	// статусом пишутся is_active, cancelled_at и cancellation_reason
	nonTerminal := []string{
		model.PackageStatusNew,
		model.PackageStatusOpenForBids,
		model.PackageStatusBidSelected,
		model.PackageStatusPendingPickup,
		model.PackageStatusInTransit,
	}
	for _, s := range nonTerminal {
		if CanTransition(s, model.PackageStatusCanceled) {
			t.Errorf("expected %s -> canceled rejected", s)
		}
		if CanTransition(s, model.PackageStatusFailed) {
			t.Errorf("expected %s -> failed rejected", s)
		}
	}
}

func TestCanTransition_TerminalStatesAbsorb(t *testing.T) {
	terminal := []string{
		model.PackageStatusDelivered,
		model.PackageStatusCanceled,
		model.PackageStatusFailed,
	}
	all := []string{
		model.PackageStatusNew,
		model.PackageStatusOpenForBids,
		model.PackageStatusBidSelected,
		model.PackageStatusPendingPickup,
		model.PackageStatusInTransit,
		model.PackageStatusDelivered,
		model.PackageStatusCanceled,
		model.PackageStatusFailed,
	}
	for _, from := range terminal {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("expected no transition out of terminal %s (tried %s)", from, to)
			}
		}
	}
}

func TestPackage_CancellableBySender(t *testing.T) {
	p := &Package{Status: model.PackageStatusOpenForBids, IsActive: true}
	if !p.CancellableBySender() {
		t.Error("open_for_bids active package must be cancellable by sender")
	}

	p.Status = model.PackageStatusInTransit
	if p.CancellableBySender() {
		t.Error("in_transit package must not be cancellable by sender")
	}

	p.Status = model.PackageStatusNew
	p.IsActive = false
	if p.CancellableBySender() {
		t.Error("deactivated package must not be cancellable by sender")
	}
}

func TestBid_Validate(t *testing.T) {
	now := time.Now()
	hours := 12
	early := now.Add(30 * time.Minute)
	late := now.Add(2 * time.Hour)

	cases := []struct {
		name string
		bid  Bid
		ok   bool
	}{
		{"valid minimal", Bid{ProposedPrice: 25}, true},
		{"valid full", Bid{ProposedPrice: 20, EstimatedDeliveryHours: &hours, EstimatedPickupTime: &late, Message: "leaving tonight"}, true},
		{"zero price", Bid{ProposedPrice: 0}, false},
		{"negative price", Bid{ProposedPrice: -5}, false},
		{"zero hours", Bid{ProposedPrice: 10, EstimatedDeliveryHours: new(int)}, false},
		{"pickup too soon", Bid{ProposedPrice: 10, EstimatedPickupTime: &early}, false},
		{"message too long", Bid{ProposedPrice: 10, Message: string(make([]byte, MaxBidMessageLen+1))}, false},
	}

	for _, c := range cases {
		err := c.bid.Validate(now)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok {
			if err == nil {
				t.Errorf("%s: expected error, got nil", c.name)
			} else if !errors.Is(err, ErrInvalidBid) {
				t.Errorf("%s: expected ErrInvalidBid, got %v", c.name, err)
			}
		}
	}
}
