package event

import (
	"fmt"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/google/uuid"
)

// Kind identifies the entity an event is about.
type Kind string

const (
	KindBook   Kind = "book"
	KindClient Kind = "client"
	KindOrder  Kind = "order"
	KindShop   Kind = "shop"
)

// Kinds lists every known event kind.
var Kinds = []Kind{KindBook, KindClient, KindOrder, KindShop}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("unknown event kind %q", s)
}

// Action is what happened to the entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is a change notification broadcast to live subscribers. Entity holds
// the projection matching Kind.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
	Entity     any       `json:"entity"`
}

// RoutingKey returns "<kind>.<action>", used as broker routing key and subject suffix.
func (e Event) RoutingKey() string {
	return string(e.Kind) + "." + string(e.Action)
}

// BookProjection is the book view carried by book events.
type BookProjection struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Stock      int64  `json:"stock"`
	PriceCents int64  `json:"priceCents"`
}

// OrderProjection is the order view carried by order events.
type OrderProjection struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	ClientID   string `json:"clientId"`
	TotalItems int64  `json:"totalItems"`
	TotalCents int64  `json:"totalCents"`
	IsDeleted  bool   `json:"isDeleted"`
}

// ClientProjection is the client view carried by client events.
type ClientProjection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShopProjection is the shop view carried by shop events.
type ShopProjection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newEvent(kind Kind, action Action, entity any) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Action:     action,
		OccurredAt: time.Now().UTC(),
		Entity:     entity,
	}
}

// BookChanged builds a book event.
func BookChanged(action Action, b book.Book) Event {
	return newEvent(KindBook, action, BookProjection{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Stock:      b.Stock,
		PriceCents: b.PriceCents,
	})
}

// OrderChanged builds an order event.
func OrderChanged(action Action, o order.Order) Event {
	return newEvent(KindOrder, action, OrderProjection{
		ID:         o.ID,
		UserID:     o.UserID,
		ClientID:   o.ClientID,
		TotalItems: o.TotalItems,
		TotalCents: o.TotalCents,
		IsDeleted:  o.IsDeleted,
	})
}

// ClientChanged builds a client event.
func ClientChanged(action Action, c ClientProjection) Event {
	return newEvent(KindClient, action, c)
}

// ShopChanged builds a shop event.
func ShopChanged(action Action, s ShopProjection) Event {
	return newEvent(KindShop, action, s)
}
