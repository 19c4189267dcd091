package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// IsActive reports whether the status occupies its slot. Cancelled and
// completed appointments do not.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// IsValid reports whether the status is one of the known labels.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

const DateLayout = "2006-01-02"

type Appointment struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	ClientID  Ref               `db:"client_id" json:"clientId"`
	ShopID    Ref               `db:"shop_id" json:"shopId"`
	Date      time.Time         `db:"date" json:"date"`
	TimeSlot  string            `db:"time_slot" json:"timeSlot"`
	Service   string            `db:"service" json:"service"`
	Status    AppointmentStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}

// DateKey returns the calendar-date form used for slot comparisons.
// Time-of-day on Date is irrelevant.
func (a *Appointment) DateKey() string {
	return a.Date.Format(DateLayout)
}

// EnrichedAppointment is an appointment decorated with the display names
// the mobile client renders. Enrichment failures leave placeholders, they
// never fail the listing.
type EnrichedAppointment struct {
	Appointment
	ShopName   string `json:"shopName"`
	BarberName string `json:"barberName,omitempty"`
}

// CachedAppointmentSet is the client-side snapshot of an actor's
// appointments. Invalid once FetchedAt is older than the freshness
// window; the TTL store evicts it around the same time.
type CachedAppointmentSet struct {
	Appointments []EnrichedAppointment `json:"appointments"`
	FetchedAt    time.Time             `json:"fetchedAt"`
}

type CreateAppointmentRequest struct {
	ClientID Ref    `json:"clientId" binding:"required"`
	ShopID   Ref    `json:"shopId" binding:"required"`
	Date     string `json:"date" binding:"required,bookdate"`
	TimeSlot string `json:"timeSlot" binding:"required"`
	Service  string `json:"service" binding:"required"`
	Status   string `json:"status"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

// AvailableSlotsResponse is the shape of the availability endpoint.
type AvailableSlotsResponse struct {
	AvailableSlots []string    `json:"availableSlots"`
	Slots          []SlotState `json:"slots"`
}

// SlotState reports one catalog slot and whether it is occupied.
type SlotState struct {
	TimeSlot string `json:"timeSlot"`
	IsBooked bool   `json:"isBooked"`
}
