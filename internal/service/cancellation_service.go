package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// CancellationService handles ticket cancellation requests.  Attendees
// file them against their own bookings; the event organizer reviews and
// submits them.
type CancellationService struct {
	tx       Transactor
	requests CancellationStore
	bookings BookingStore
	tickets  TicketStore
	events   EventStore
	log      *zap.Logger
}

func NewCancellationService(tx Transactor, requests CancellationStore, bookings BookingStore, tickets TicketStore, events EventStore, log *zap.Logger) *CancellationService {
	return &CancellationService{tx: tx, requests: requests, bookings: bookings, tickets: tickets, events: events, log: log}
}

// CreateCancellationInput is an attendee's cancellation request.
type CreateCancellationInput struct {
	UserID            uint64
	BookingID         uint64
	CancelFullBooking bool
	TicketIDs         []uint64
}

// Create files a request in review for a submitted booking of the user.
func (s *CancellationService) Create(ctx context.Context, in CreateCancellationInput) (model.CancellationRequest, error) {
	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return model.CancellationRequest{}, err
	}
	if b.UserID != in.UserID {
		return model.CancellationRequest{}, repository.ErrForbidden
	}
	if b.DocStatus != model.DocStatusSubmitted {
		return model.CancellationRequest{}, throw("Only confirmed bookings can be cancelled")
	}

	req := model.CancellationRequest{
		BookingID:         b.ID,
		CancelFullBooking: in.CancelFullBooking,
		Status:            model.CancellationInReview,
		DocStatus:         model.DocStatusDraft,
	}
	if !in.CancelFullBooking {
		if len(in.TicketIDs) == 0 {
			return model.CancellationRequest{}, throw("Select at least one ticket to cancel")
		}
		tickets, err := s.tickets.ListByBooking(ctx, b.ID)
		if err != nil {
			return model.CancellationRequest{}, err
		}
		own := make(map[uint64]model.DocStatus, len(tickets))
		for _, t := range tickets {
			own[t.ID] = t.DocStatus
		}
		req.TicketIDs = uniqueIDs(len(in.TicketIDs), func(yield func(uint64)) {
			for _, id := range in.TicketIDs {
				yield(id)
			}
		})
		for _, id := range req.TicketIDs {
			st, ok := own[id]
			if !ok {
				return model.CancellationRequest{}, throw("Ticket %d does not belong to booking %d", id, b.ID)
			}
			if st != model.DocStatusSubmitted {
				return model.CancellationRequest{}, throw("Ticket %d is already cancelled", id)
			}
		}
	}

	if err := s.requests.Create(ctx, &req); err != nil {
		return model.CancellationRequest{}, err
	}
	s.log.Info("cancellation requested", zap.Uint64("request_id", req.ID), zap.Uint64("booking_id", b.ID),
		zap.Bool("full_booking", req.CancelFullBooking), zap.Int("tickets", len(req.TicketIDs)))
	return req, nil
}

// authorize loads a request and checks that organizerID owns the event
// of its booking.
func (s *CancellationService) authorize(ctx context.Context, organizerID, id uint64) (model.CancellationRequest, model.Booking, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return model.CancellationRequest{}, model.Booking{}, err
	}
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return model.CancellationRequest{}, model.Booking{}, err
	}
	if _, err := ownedEvent(ctx, s.events, b.EventID, organizerID); err != nil {
		return model.CancellationRequest{}, model.Booking{}, err
	}
	return req, b, nil
}

// SetStatus records the organizer's review decision on a draft request.
func (s *CancellationService) SetStatus(ctx context.Context, organizerID, id uint64, status string) error {
	if !model.ValidCancellationStatus(status) {
		return throw("Invalid status %q", status)
	}
	req, _, err := s.authorize(ctx, organizerID, id)
	if err != nil {
		return err
	}
	if req.DocStatus != model.DocStatusDraft {
		return throw("Submitted requests cannot be changed")
	}
	return s.requests.SetStatus(ctx, id, status)
}

// Submit performs an accepted request: the whole booking with all of its
// tickets, or only the listed tickets, are cancelled.
func (s *CancellationService) Submit(ctx context.Context, organizerID, id uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		req, b, err := s.authorize(ctx, organizerID, id)
		if err != nil {
			return err
		}
		if req.DocStatus != model.DocStatusDraft {
			return throw("Request is already submitted")
		}
		if req.Status != model.CancellationAccepted {
			return throw("You must accept the request in order to submit it!")
		}

		ids := req.TicketIDs
		if req.CancelFullBooking {
			err := s.bookings.SetDocStatus(ctx, b.ID, model.DocStatusSubmitted, model.DocStatusCancelled)
			if errors.Is(err, repository.ErrConflict) {
				return throw("Booking %d is not confirmed", b.ID)
			}
			if err != nil {
				return err
			}
			tickets, err := s.tickets.ListByBooking(ctx, b.ID)
			if err != nil {
				return err
			}
			ids = ids[:0:0]
			for _, t := range tickets {
				ids = append(ids, t.ID)
			}
		}
		n, err := s.tickets.CancelByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if err := s.requests.MarkSubmitted(ctx, req.ID); err != nil {
			return err
		}
		s.log.Info("cancellation submitted", zap.Uint64("request_id", req.ID),
			zap.Uint64("booking_id", b.ID), zap.Int64("tickets_cancelled", n))
		return nil
	})
}
