package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/models"
	"github.com/yeremiapane/restaurant-reserve/utils"
)

// allowedTransitions is the reservation state machine. pending and confirmed
// hold the table; cancelled and completed are terminal.
var allowedTransitions = map[string][]string{
	models.ReservationStatusPending:   {models.ReservationStatusConfirmed, models.ReservationStatusCancelled},
	models.ReservationStatusConfirmed: {models.ReservationStatusCompleted, models.ReservationStatusCancelled},
	models.ReservationStatusCancelled: {},
	models.ReservationStatusCompleted: {},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateReservationInput is the validated request body for a new booking.
// Unknown fields are rejected at the binding layer; missing ones here.
type CreateReservationInput struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	ContactNumber   string `json:"contact_number" binding:"required"`
	PartySize       uint   `json:"party_size" binding:"required"`
	Date            string `json:"date" binding:"required"` // YYYY-MM-DD
	Time            string `json:"time" binding:"required"` // HH:MM
	SpecialRequests string `json:"special_requests"`
	TableID         uint   `json:"table_id" binding:"required"`
	RestaurantID    uint   `json:"restaurant_id" binding:"required"`
	UserID          *uint  `json:"-"` // set from auth context, never from the body
}

func (in *CreateReservationInput) validate() (time.Time, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return time.Time{}, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		return time.Time{}, fmt.Errorf("%w: contact number is required", ErrInvalidInput)
	}
	if in.PartySize < 1 {
		return time.Time{}, fmt.Errorf("%w: party size must be at least 1", ErrInvalidInput)
	}
	if in.TableID == 0 {
		return time.Time{}, fmt.Errorf("%w: table reference is required", ErrInvalidInput)
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return time.Time{}, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}
	return date, nil
}

// ReservationService runs the reservation workflow. Every multi-write path
// executes inside a single database transaction, and writes to the
// reservation row carry the status and table the decision was made on in
// their WHERE clause. An interleaved caller that committed first leaves
// zero rows matched and the whole transaction rolls back.
type ReservationService struct {
	db     *gorm.DB
	tables *TableCoordinator
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db, tables: NewTableCoordinator()}
}

// writeStatus commits a status change only if the row still matches the
// snapshot we made the transition decision on. A concurrent writer that
// committed in between leaves zero rows matched and the caller's
// transaction rolls back, so a reservation can never be written past a
// terminal state another caller already committed.
func (s *ReservationService) writeStatus(tx *gorm.DB, reservation *models.Reservation, newStatus string) error {
	result := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ? AND table_id = ?", reservation.ID, reservation.Status, reservation.TableID).
		Update("status", newStatus)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %d was modified concurrently", ErrConflict, reservation.ID)
	}
	reservation.Status = newStatus
	return nil
}

// writeTableMove is the same guarded write for the table reference. It
// keeps a concurrent transfer from releasing a table the reservation no
// longer holds.
func (s *ReservationService) writeTableMove(tx *gorm.DB, reservation *models.Reservation, newTableID uint) error {
	result := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ? AND table_id = ?", reservation.ID, reservation.Status, reservation.TableID).
		Update("table_id", newTableID)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %d was modified concurrently", ErrConflict, reservation.ID)
	}
	reservation.TableID = newTableID
	return nil
}

// Create books an available table. The table flip and the reservation insert
// commit together; if the insert fails the flip rolls back with it, so a
// reserved table without a matching reservation can never be observed.
func (s *ReservationService) Create(input CreateReservationInput) (*models.Reservation, error) {
	date, err := input.validate()
	if err != nil {
		return nil, err
	}

	var reservation models.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Restaurant{}).Where("id = ?", input.RestaurantID).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: restaurant %d", ErrNotFound, input.RestaurantID)
		}

		table, err := s.tables.TryReserve(tx, input.TableID)
		if err != nil {
			return err
		}
		if table.RestaurantID != input.RestaurantID {
			return fmt.Errorf("%w: table %d in restaurant %d", ErrNotFound, input.TableID, input.RestaurantID)
		}
		if input.PartySize > table.Capacity {
			return fmt.Errorf("%w: party of %d exceeds table capacity %d",
				ErrInvalidInput, input.PartySize, table.Capacity)
		}

		reservation = models.Reservation{
			Code:            uuid.NewString(),
			CustomerName:    input.CustomerName,
			ContactNumber:   input.ContactNumber,
			PartySize:       input.PartySize,
			Date:            date,
			Time:            input.Time,
			SpecialRequests: input.SpecialRequests,
			Status:          models.ReservationStatusPending,
			TableID:         table.ID,
			RestaurantID:    input.RestaurantID,
			UserID:          input.UserID,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		reservation.Table = *table
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %s created for table %d (%s %s)",
		reservation.Code, reservation.TableID, input.Date, input.Time)
	return &reservation, nil
}

// UpdateStatus moves a reservation through the state machine. Entering a
// terminal state releases the table in the same transaction; a release that
// finds the table missing is logged and ignored, since the reservation
// record, not the cleanup, is the consistency requirement.
func (s *ReservationService) UpdateStatus(reservationID uint, newStatus string) (*models.Reservation, error) {
	if _, known := allowedTransitions[newStatus]; !known {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	var reservation models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if !transitionAllowed(reservation.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, newStatus)
		}

		if err := s.writeStatus(tx, &reservation, newStatus); err != nil {
			return err
		}

		if reservation.IsTerminal() {
			if err := s.tables.Release(tx, reservation.TableID); err != nil {
				if !errors.Is(err, ErrNotFound) {
					return err
				}
				utils.ErrorLogger.Printf("Reservation %d: table %d missing on release, continuing",
					reservation.ID, reservation.TableID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %d moved to %s", reservation.ID, newStatus)
	return &reservation, nil
}

// TransferTable moves an active reservation to another table, reserving the
// new one and releasing the old one atomically. On conflict nothing changes.
func (s *ReservationService) TransferTable(reservationID, newTableID uint) (*models.Reservation, error) {
	if newTableID == 0 {
		return nil, fmt.Errorf("%w: table reference is required", ErrInvalidInput)
	}

	var reservation models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if reservation.IsTerminal() {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, reservation.Status)
		}
		if reservation.TableID == newTableID {
			return nil // nothing to move
		}

		if err := s.tables.Transfer(tx, reservation.TableID, newTableID); err != nil {
			return err
		}

		oldTableID := reservation.TableID
		if err := s.writeTableMove(tx, &reservation, newTableID); err != nil {
			return err
		}
		if err := tx.Preload("Table").First(&reservation, reservation.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		utils.InfoLogger.Printf("Reservation %d transferred from table %d to %d",
			reservation.ID, oldTableID, newTableID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Delete removes a reservation and frees its table. Both happen in one
// transaction; a table already gone is ignored the same way terminal
// transitions ignore it.
func (s *ReservationService) Delete(reservationID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if reservation.IsActive() {
			if err := s.tables.Release(tx, reservation.TableID); err != nil {
				if !errors.Is(err, ErrNotFound) {
					return err
				}
				utils.ErrorLogger.Printf("Reservation %d: table %d missing on delete, continuing",
					reservation.ID, reservation.TableID)
			}
		}

		result := tx.Where("id = ? AND status = ? AND table_id = ?",
			reservation.ID, reservation.Status, reservation.TableID).
			Delete(&models.Reservation{})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: reservation %d was modified concurrently", ErrConflict, reservation.ID)
		}
		utils.InfoLogger.Printf("Reservation %d deleted, table %d released",
			reservation.ID, reservation.TableID)
		return nil
	})
	return err
}

// GetByID loads one reservation with its table.
func (s *ReservationService) GetByID(reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Preload("Table").First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &reservation, nil
}

// ListByDate returns the reservations for one calendar day, earliest first.
func (s *ReservationService) ListByDate(date string) ([]models.Reservation, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	var reservations []models.Reservation
	if err := s.db.Preload("Table").
		Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).
		Order("date asc, time asc").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reservations, nil
}

// ListActive returns all reservations currently holding a table.
func (s *ReservationService) ListActive() ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.Preload("Table").
		Where("status IN ?", []string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
		Order("date asc, time asc").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reservations, nil
}

// ListByRestaurant returns all reservations of one restaurant, earliest first.
func (s *ReservationService) ListByRestaurant(restaurantID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.Preload("Table").
		Where("restaurant_id = ?", restaurantID).
		Order("date asc, time asc").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reservations, nil
}
