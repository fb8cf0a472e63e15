package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type eventAPI interface {
	CreateEvent(ctx context.Context, ownerID uint64, e *model.Event) error
	ListOwnEvents(ctx context.Context, ownerID uint64) ([]model.Event, error)
	ListPublishedEvents(ctx context.Context) ([]model.Event, error)
	GetPublishedEvent(ctx context.Context, route string) (service.EventDetails, error)
	SetPublished(ctx context.Context, ownerID, eventID uint64, published bool) error
	CreateTicketType(ctx context.Context, ownerID uint64, t *model.TicketType) error
	ListTicketTypes(ctx context.Context, ownerID, eventID uint64) ([]model.TicketType, error)
	CreateAddOn(ctx context.Context, ownerID uint64, a *model.AddOn) error
	CreateCoupon(ctx context.Context, ownerID uint64, c *model.Coupon) error
	ListCoupons(ctx context.Context, ownerID, eventID uint64) ([]model.Coupon, error)
	CreatePage(ctx context.Context, ownerID uint64, p *model.EventPage) error
	CreateScheduleItem(ctx context.Context, ownerID uint64, it *model.ScheduleItem) error
	CreateCustomField(ctx context.Context, ownerID uint64, f *model.CustomField) error
}

// EventHandler serves public event pages and organizer administration.
type EventHandler struct {
	Events eventAPI
}

func NewEventHandler(events eventAPI) *EventHandler { return &EventHandler{Events: events} }

// ----- public -----

func (h *EventHandler) ListPublished(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Events.ListPublishedEvents(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) GetPublished(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Events.GetPublishedEvent(ctx, c.Param("route"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ----- organizer -----

type createEventReq struct {
	Title       string `json:"title"`
	Route       string `json:"route"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // optional
	TimeZone    string `json:"time_zone"`
}

func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	e := model.Event{Title: req.Title, Route: req.Route, Description: req.Description, TimeZone: req.TimeZone}
	if req.StartDate != "" {
		d, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			return badRequest(c, "start_date must be YYYY-MM-DD")
		}
		e.StartDate = d
	}
	if req.EndDate != "" {
		d, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			return badRequest(c, "end_date must be YYYY-MM-DD")
		}
		e.EndDate = &d
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Events.CreateEvent(ctx, currentUser(c), &e); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *EventHandler) ListOwn(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Events.ListOwnEvents(ctx, currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) Publish(c echo.Context) error { return h.setPublished(c, true) }
func (h *EventHandler) Unpublish(c echo.Context) error { return h.setPublished(c, false) }

func (h *EventHandler) setPublished(c echo.Context, published bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Events.SetPublished(ctx, currentUser(c), id, published); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_published": published})
}

// createChild binds a child record of the event in the path, stamps the
// event id through setEvent and stores it with create.
func createChild[T any](c echo.Context, setEvent func(*T, uint64), create func(context.Context, uint64, *T) error) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var v T
	if err := c.Bind(&v); err != nil {
		return badRequest(c, "invalid body")
	}
	setEvent(&v, eventID)
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := create(ctx, currentUser(c), &v); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *EventHandler) CreateTicketType(c echo.Context) error {
	return createChild(c, func(t *model.TicketType, id uint64) { t.EventID = id }, h.Events.CreateTicketType)
}

func (h *EventHandler) ListTicketTypes(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Events.ListTicketTypes(ctx, currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) CreateAddOn(c echo.Context) error {
	return createChild(c, func(a *model.AddOn, id uint64) { a.EventID = id }, h.Events.CreateAddOn)
}

func (h *EventHandler) CreateCoupon(c echo.Context) error {
	return createChild(c, func(cp *model.Coupon, id uint64) { cp.EventID = id }, h.Events.CreateCoupon)
}

func (h *EventHandler) ListCoupons(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Events.ListCoupons(ctx, currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) CreatePage(c echo.Context) error {
	return createChild(c, func(p *model.EventPage, id uint64) { p.EventID = id }, h.Events.CreatePage)
}

type scheduleItemReq struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Track       string  `json:"track"`
	Type        string  `json:"type"`
	Talk        *string `json:"talk"`
	Description string  `json:"description"`
}

func (h *EventHandler) CreateScheduleItem(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req scheduleItemReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	it := model.ScheduleItem{
		EventID: eventID, Date: date, StartTime: req.StartTime, EndTime: req.EndTime,
		Track: req.Track, Type: req.Type, Talk: req.Talk, Description: req.Description,
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Events.CreateScheduleItem(ctx, currentUser(c), &it); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *EventHandler) CreateCustomField(c echo.Context) error {
	return createChild(c, func(f *model.CustomField, id uint64) { f.EventID = id }, h.Events.CreateCustomField)
}
