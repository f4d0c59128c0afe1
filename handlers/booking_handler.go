package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type CreateBookingRequest struct {
	StudentID   string    `json:"student_id" validate:"omitempty,uuid"`
	TutorID     string    `json:"tutor_id" validate:"required,uuid"`
	ServiceID   string    `json:"service_id" validate:"required,uuid"`
	SubjectID   string    `json:"subject_id" validate:"required,uuid"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
	TotalAmount string    `json:"total_amount" validate:"required,numeric"`
}

// CreateBooking books a session. The student defaults to the caller.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	studentID := currentUserID(c)
	if req.StudentID != "" {
		studentID = uuid.MustParse(req.StudentID)
	}
	if studentID == uuid.Nil {
		return badRequest(c, "student_id is required")
	}
	amount, err := parseAmount("total_amount", req.TotalAmount)
	if err != nil {
		return respondError(c, err)
	}

	booking, err := h.bookings.CreateBooking(c.UserContext(), services.CreateBookingInput{
		StudentID:   studentID,
		TutorID:     uuid.MustParse(req.TutorID),
		ServiceID:   uuid.MustParse(req.ServiceID),
		SubjectID:   uuid.MustParse(req.SubjectID),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		TotalAmount: amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	booking, err := h.bookings.GetBooking(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

// ListBookings filters by student_id, tutor_id, status and the from/to window.
func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	var (
		f   services.BookingFilter
		err error
	)
	if f.StudentID, err = uuidQuery(c, "student_id"); err != nil {
		return respondError(c, err)
	}
	if f.TutorID, err = uuidQuery(c, "tutor_id"); err != nil {
		return respondError(c, err)
	}
	if raw := c.Query("status"); raw != "" {
		if f.Status, err = models.ParseBookingStatus(raw); err != nil {
			return respondError(c, err)
		}
	}
	if f.From, err = timeQuery(c, "from"); err != nil {
		return respondError(c, err)
	}
	if f.To, err = timeQuery(c, "to"); err != nil {
		return respondError(c, err)
	}

	bookings, err := h.bookings.ListBookings(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings, "count": len(bookings)})
}

func (h *BookingHandler) GetUpcoming(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	bookings, err := h.bookings.GetUpcoming(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings, "count": len(bookings)})
}

func (h *BookingHandler) Transition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	var req ActionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	booking, err := h.bookings.Transition(c.UserContext(), id, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

type RescheduleRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

func (h *BookingHandler) Reschedule(c *fiber.Ctx) error {
	id, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	var req RescheduleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	booking, err := h.bookings.RescheduleBooking(c.UserContext(), id, req.StartAt, req.EndAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) DeleteBooking(c *fiber.Ctx) error {
	id, err := uuidParam(c, "bookingId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.bookings.DeleteBooking(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
