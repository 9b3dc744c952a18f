package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iinventory"
	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderstore"
	"github.com/corray333/backend-labs/bookstore/internal/metrics"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultReleaseTimeout = 10 * time.Second
	defaultStepTimeout    = 30 * time.Second
)

type publisher interface {
	Publish(e event.Event) int
}

// OrderService runs the create-order workflow and the order queries.
type OrderService struct {
	ledger         iinventory.ILedger
	store          iorderstore.IOrderStore
	publisher      publisher
	releaseTimeout time.Duration
	stepTimeout    time.Duration
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		releaseTimeout: defaultReleaseTimeout,
		stepTimeout:    defaultStepTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ledger == nil || s.store == nil || s.publisher == nil {
		panic("ordersvc: ledger, store and publisher are required")
	}

	return s
}

// WithLedger sets the inventory ledger for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLedger(ledger iinventory.ILedger) option {
	return func(s *OrderService) {
		s.ledger = ledger
	}
}

// WithOrderStore sets the order store for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderStore(store iorderstore.IOrderStore) option {
	return func(s *OrderService) {
		s.store = store
	}
}

// WithPublisher sets the notification fan-out for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p publisher) option {
	return func(s *OrderService) {
		s.publisher = p
	}
}

// WithReleaseTimeout bounds how long compensation may take after the caller is gone.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReleaseTimeout(d time.Duration) option {
	return func(s *OrderService) {
		if d > 0 {
			s.releaseTimeout = d
		}
	}
}

// WithStepTimeout bounds a single reserve or persist call. The call itself
// does not observe the caller's cancellation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStepTimeout(d time.Duration) option {
	return func(s *OrderService) {
		if d > 0 {
			s.stepTimeout = d
		}
	}
}

// workflowRun tracks the state of one CreateOrder execution.
type workflowRun struct {
	state State
	log   *slog.Logger
}

func (r *workflowRun) to(next State) {
	r.log.Debug("Order workflow transition", "from", r.state, "to", next)
	r.state = next
}

// CreateOrder validates the request, reserves stock for every line, stores the
// order and announces it. Any failure after the first reservation releases
// everything reserved so far before returning.
func (s *OrderService) CreateOrder(ctx context.Context, req order.CreateOrderModel) (order.Order, error) {
	started := time.Now()
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order.user_id", req.UserID),
		attribute.String("order.client_id", req.ClientID),
		attribute.Int("order.lines", len(req.Lines)),
	)

	run := &workflowRun{
		state: StateValidating,
		log:   slog.With("user_id", req.UserID, "client_id", req.ClientID),
	}

	created, err := s.createOrder(ctx, run, req)

	metrics.WorkflowOutcomes.WithLabelValues(string(run.state)).Inc()
	metrics.WorkflowDuration.Observe(time.Since(started).Seconds())
	span.SetAttributes(attribute.String("order.workflow_state", string(run.state)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		run.log.Info("Order not created", "state", run.state, "error", err)

		return order.Order{}, err
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID))
	span.SetStatus(codes.Ok, "order created")
	run.log.Info("Order created",
		"order_id", created.ID,
		"total_items", created.TotalItems,
		"total_cents", created.TotalCents,
	)

	return created, nil
}

func (s *OrderService) createOrder(
	ctx context.Context,
	run *workflowRun,
	req order.CreateOrderModel,
) (order.Order, error) {
	if reason := validate(req); reason != "" {
		run.to(StateRejectedInvalid)

		return order.Order{}, &RejectedInvalidError{Reason: reason}
	}

	run.to(StateReserving)
	reservations := make([]book.Reservation, 0, len(req.Lines))
	for i, line := range req.Lines {
		if err := ctx.Err(); err != nil {
			return order.Order{}, s.fail(ctx, run, reservations, err)
		}

		res, err := s.reserve(ctx, line)
		if err != nil {
			if errors.Is(err, book.ErrInsufficientStock) || errors.Is(err, book.ErrBookNotFound) {
				run.to(StateRejectedStock)
				rejected := &RejectedStockError{BookID: line.BookID, Line: i, Cause: err}

				return order.Order{}, errors.Join(rejected, s.releaseAll(ctx, run, reservations))
			}

			return order.Order{}, s.fail(ctx, run, reservations, fmt.Errorf("failed to reserve book %d: %w", line.BookID, err))
		}
		reservations = append(reservations, res)
	}

	run.to(StatePersisting)
	if err := ctx.Err(); err != nil {
		return order.Order{}, s.fail(ctx, run, reservations, err)
	}

	created, err := s.persist(ctx, buildOrder(req, reservations))
	if err != nil {
		if !errors.Is(err, order.ErrPersistence) {
			err = fmt.Errorf("%w: %w", order.ErrPersistence, err)
		}

		return order.Order{}, s.fail(ctx, run, reservations, err)
	}

	// The order is stored from here on; a late cancellation does not undo it.
	run.to(StateNotifying)
	s.notify(run, event.OrderChanged(event.ActionCreated, created))

	run.to(StateCompleted)

	return created, nil
}

// reserve and persist run detached from the caller's cancellation, so the
// workflow always learns whether the ledger or the store applied the change.
// Cancellation is observed between steps only.
func (s *OrderService) reserve(ctx context.Context, line orderline.LineRequest) (book.Reservation, error) {
	stepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.stepTimeout)
	defer cancel()

	return s.ledger.Reserve(stepCtx, line.BookID, line.Quantity)
}

func (s *OrderService) persist(ctx context.Context, o order.Order) (order.Order, error) {
	stepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.stepTimeout)
	defer cancel()

	return s.store.Create(stepCtx, o)
}

// validate returns a non-empty reason when the request must be rejected.
func validate(req order.CreateOrderModel) string {
	switch {
	case req.UserID <= 0:
		return "userId must be positive"
	case req.ClientID == "":
		return "clientId is required"
	case len(req.Lines) == 0:
		return "order must contain at least one line"
	}

	for i, line := range req.Lines {
		if line.BookID <= 0 {
			return fmt.Sprintf("line %d: bookId must be positive", i)
		}
		if line.Quantity <= 0 {
			return fmt.Sprintf("line %d: quantity must be positive", i)
		}
	}

	return ""
}

func buildOrder(req order.CreateOrderModel, reservations []book.Reservation) order.Order {
	lines := make([]orderline.OrderLine, len(reservations))
	cur := currency.Default
	for i, res := range reservations {
		lines[i] = orderline.OrderLine{
			BookID:         res.BookID,
			Quantity:       res.Quantity,
			UnitPriceCents: res.UnitPriceCents,
		}
		if res.Currency != "" {
			cur = res.Currency
		}
	}

	o := order.Order{
		UserID:     req.UserID,
		ClientID:   req.ClientID,
		OrderLines: lines,
		Currency:   cur,
	}
	o.Recalculate()

	return o
}

// fail moves the run to Failed after releasing every reservation.
func (s *OrderService) fail(
	ctx context.Context,
	run *workflowRun,
	reservations []book.Reservation,
	cause error,
) error {
	run.to(StateFailed)

	return errors.Join(&FailedError{Cause: cause}, s.releaseAll(ctx, run, reservations))
}

// releaseAll undoes reservations in reverse order. It runs detached from the
// caller's cancellation so that no reservation is left behind.
func (s *OrderService) releaseAll(ctx context.Context, run *workflowRun, reservations []book.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseTimeout)
	defer cancel()

	var errs []error
	for i := len(reservations) - 1; i >= 0; i-- {
		res := reservations[i]
		if err := s.ledger.Release(relCtx, res.BookID, res.Quantity); err != nil {
			run.log.Error("Failed to release reservation",
				"book_id", res.BookID,
				"quantity", res.Quantity,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("failed to release book %d: %w", res.BookID, err))
		}
	}

	return errors.Join(errs...)
}

// notify never fails the caller.
func (s *OrderService) notify(run *workflowRun, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			run.log.Error("Notification delivery failed", "event_id", e.ID, "panic", r)
		}
	}()

	delivered := s.publisher.Publish(e)
	run.log.Debug("Notification published", "event_id", e.ID, "kind", e.Kind, "delivered", delivered)
}

// GetOrder returns an order by id, including soft-deleted ones.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	if id <= 0 {
		return order.Order{}, &RejectedInvalidError{Reason: "id must be positive"}
	}

	return s.store.FindByID(ctx, id)
}

// ListClientOrders returns a page of a client's live orders, newest first.
func (s *OrderService) ListClientOrders(ctx context.Context, query order.QueryOrdersModel) (order.Page, error) {
	if query.ClientID == "" {
		return order.Page{}, &RejectedInvalidError{Reason: "clientId is required"}
	}

	return s.store.ListByClient(ctx, query.Normalize())
}

// DeleteOrder soft-deletes an order. Deleting twice is not an error; only
// the first call announces the change.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.DeleteOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", id))

	if id <= 0 {
		return &RejectedInvalidError{Reason: "id must be positive"}
	}

	changed, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}
	if !changed {
		return nil
	}

	deleted, err := s.store.FindByID(ctx, id)
	if err != nil {
		slog.Warn("Order deleted but could not be reloaded for notification", "order_id", id, "error", err)

		return nil
	}

	run := &workflowRun{state: StateNotifying, log: slog.With("order_id", id)}
	s.notify(run, event.OrderChanged(event.ActionDeleted, deleted))

	return nil
}
