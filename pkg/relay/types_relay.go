// Package relay contains the public domain models, interfaces, and dependency
// definitions for the heartbeat relay service. It defines the contract for
// interacting with the service.
package relay

// Message type values carried in the "type" field of a TEXT frame.
//
// Inbound (client -> server): register, register_push, heartbeat,
// update_partner. Outbound (server -> client): registered, partner_online,
// partner_offline, heartbeat, delivered. Unrecognized inbound types are
// silently ignored so new message types can be added without breaking old
// clients.
const (
	TypeRegister       = "register"
	TypeRegisterPush   = "register_push"
	TypeHeartbeat      = "heartbeat"
	TypeUpdatePartner  = "update_partner"
	TypeRegistered     = "registered"
	TypePartnerOnline  = "partner_online"
	TypePartnerOffline = "partner_offline"
	TypeDelivered      = "delivered"
)

// Message is the JSON control message exchanged inside TEXT frames.
// Only the fields relevant to a given type are populated.
type Message struct {
	Type      string `json:"type"`
	UserID    string `json:"userId,omitempty"`
	PartnerID string `json:"partnerId,omitempty"`
	To        string `json:"to,omitempty"`
	From      string `json:"from,omitempty"`
	Token     string `json:"token,omitempty"`
	ViaPush   bool   `json:"viaPush,omitempty"`
}
