package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type reportAPI interface {
	AddOnsOverview(ctx context.Context, ownerID uint64, f repository.AddOnsOverviewFilter) (service.AddOnsOverviewReport, error)
}

// ReportHandler serves organizer reports.
type ReportHandler struct {
	Reports reportAPI
}

func NewReportHandler(reports reportAPI) *ReportHandler { return &ReportHandler{Reports: reports} }

// AddOnsOverview takes the filters event (required), add_on_type and
// add_on_value from the query string.
func (h *ReportHandler) AddOnsOverview(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.QueryParam("event"), 10, 64)
	if err != nil || eventID == 0 {
		return badRequest(c, "event is required")
	}
	f := repository.AddOnsOverviewFilter{EventID: eventID, ValueMatch: c.QueryParam("add_on_value")}
	if v := c.QueryParam("add_on_type"); v != "" {
		if f.AddOnID, err = strconv.ParseUint(v, 10, 64); err != nil {
			return badRequest(c, "invalid add_on_type")
		}
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Reports.AddOnsOverview(ctx, currentUser(c), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
