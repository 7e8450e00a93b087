package simulation

import "time"

// EventCategory names the kind of state change an event describes
type EventCategory string

const (
	EventSimulationInitialized  EventCategory = "simulation_initialized"
	EventOrderCreated           EventCategory = "order_created"
	EventOrderAccepted          EventCategory = "order_accepted"
	EventMaterialsAllocated     EventCategory = "materials_allocated"
	EventProductionStarted      EventCategory = "production_started"
	EventProductionCompleted    EventCategory = "production_completed"
	EventProductionDelayed      EventCategory = "production_delayed_storage"
	EventOrderFulfilled         EventCategory = "order_fulfilled"
	EventPurchaseOrderPlaced    EventCategory = "purchase_order_placed"
	EventPurchaseOrderCancelled EventCategory = "purchase_order_cancelled"
	EventPurchaseSkippedFunds   EventCategory = "purchase_skipped_funds"
	EventPurchaseSkippedSupply  EventCategory = "purchase_skipped_no_supply"
	EventMaterialArrived        EventCategory = "material_arrived"
	EventArrivalDelayed         EventCategory = "arrival_delayed_storage"
	EventOperationalCost        EventCategory = "operational_cost"
	EventDaySummary             EventCategory = "day_summary"
)

// Event is one entry of the append-only event log
type Event struct {
	ID        string            `json:"id"`
	Day       int               `json:"day"`
	Category  EventCategory     `json:"category"`
	Message   string            `json:"message"`
	Payload   map[string]string `json:"payload,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// EventSink receives events after the operation that produced them has committed
type EventSink interface {
	Publish(events []Event) error
}
