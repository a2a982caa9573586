package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-reserve/models"
)

// TableCoordinator gates every availability change on a table so that at most
// one active reservation can hold it. All methods operate on the transaction
// handle supplied by the caller; committing the paired reservation write is
// the caller's job.
type TableCoordinator struct{}

func NewTableCoordinator() *TableCoordinator {
	return &TableCoordinator{}
}

// TryReserve flips an available table to reserved. The status flip is a
// guarded single-statement update checked via RowsAffected, so of any set of
// concurrent reservers exactly one sees the row change.
func (tc *TableCoordinator) TryReserve(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	if err := tx.Where("id = ? AND is_active = ?", tableID, true).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: table %d", ErrNotFound, tableID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	res := tx.Model(&models.Table{}).
		Where("id = ? AND status = ? AND is_active = ?", tableID, models.TableStatusAvailable, true).
		Update("status", models.TableStatusReserved)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: table %d is not available", ErrConflict, tableID)
	}

	table.Status = models.TableStatusReserved
	return &table, nil
}

// Release returns a reserved or occupied table to available. Releasing a
// table that is already available is a no-op, not an error: compensating
// releases during rollback must not fail on a table another path already
// freed.
func (tc *TableCoordinator) Release(tx *gorm.DB, tableID uint) error {
	res := tx.Model(&models.Table{}).
		Where("id = ? AND status IN ?", tableID,
			[]string{models.TableStatusReserved, models.TableStatusOccupied}).
		Update("status", models.TableStatusAvailable)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Table{}).Where("id = ?", tableID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: table %d", ErrNotFound, tableID)
	}
	return nil // already available
}

// Transfer reserves toTableID and, only if that succeeds, releases
// fromTableID. On failure both tables are left untouched.
func (tc *TableCoordinator) Transfer(tx *gorm.DB, fromTableID, toTableID uint) error {
	if _, err := tc.TryReserve(tx, toTableID); err != nil {
		return err
	}
	return tc.Release(tx, fromTableID)
}
