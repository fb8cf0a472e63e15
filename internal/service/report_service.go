package service

import (
	"context"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// ReportColumn describes one column of a tabular report.
type ReportColumn struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
}

// AddOnsOverviewReport is the event add-ons overview: who picked which
// add-on (and option) on their ticket.
type AddOnsOverviewReport struct {
	Columns []ReportColumn                 `json:"columns"`
	Data    []repository.AddOnsOverviewRow `json:"data"`
}

var addOnsOverviewColumns = []ReportColumn{
	{Fieldname: "attendee_name", Label: "Attendee Name", Fieldtype: "Data"},
	{Fieldname: "attendee_email", Label: "Attendee Email", Fieldtype: "Data"},
	{Fieldname: "add_on_title", Label: "Add-On", Fieldtype: "Data"},
	{Fieldname: "value", Label: "Value", Fieldtype: "Data"},
	{Fieldname: "ticket", Label: "Ticket", Fieldtype: "Link", Options: "Event Ticket"},
}

type ReportService struct {
	events  EventStore
	reports ReportStore
}

func NewReportService(events EventStore, reports ReportStore) *ReportService {
	return &ReportService{events: events, reports: reports}
}

// AddOnsOverview runs the report for an event the organizer owns.
func (s *ReportService) AddOnsOverview(ctx context.Context, ownerID uint64, f repository.AddOnsOverviewFilter) (AddOnsOverviewReport, error) {
	if f.EventID == 0 {
		return AddOnsOverviewReport{}, throw("Event is required")
	}
	if _, err := ownedEvent(ctx, s.events, f.EventID, ownerID); err != nil {
		return AddOnsOverviewReport{}, err
	}
	rows, err := nonNil(s.reports.AddOnsOverview(ctx, f))
	if err != nil {
		return AddOnsOverviewReport{}, err
	}
	return AddOnsOverviewReport{Columns: addOnsOverviewColumns, Data: rows}, nil
}
