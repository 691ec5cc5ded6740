package dto

import "encoding/json"

const (
	EventProductCreated           = "product_created"
	EventProductUpdated           = "product_updated"
	EventProductDeleted           = "product_deleted"
	EventProductVisibilityChanged = "product_visibility_changed"

	EventUserRegistered  = "user_registered"
	EventUserUpdate      = "user_update"
	EventUserRoleUpdated = "user_role_updated"
)

type KafkaMessage struct {
	EventID   string      `json:"event_id,omitempty"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

// IncomingKafkaMessage defers decoding of Data until the event type is known.
type IncomingKafkaMessage struct {
	EventID   string          `json:"event_id,omitempty"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type ProductEvent struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"user_id"`
	Status      string  `json:"product_status"`
	Title       string  `json:"title,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Quantity    uint64  `json:"quantity,omitempty"`
	ProductType string  `json:"product_type,omitempty"`
}

type VisibilityChangedEvent struct {
	ProductID string `json:"product_id"`
	OwnerID   string `json:"user_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type UserEvent struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
