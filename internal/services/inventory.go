package services

import (
	"errors"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"gorm.io/gorm"
)

// InventoryService maintains the tool stock/assignment ledger. Each mutation
// updates the quantities and appends one movement row in a single
// transaction, keeping available + assigned == total at all times.
type InventoryService struct{ DB *gorm.DB }

func NewInventoryService(db *gorm.DB) *InventoryService { return &InventoryService{DB: db} }

// MovementInput describes one stock mutation on a tool.
type MovementInput struct {
	ToolID    uint
	Quantity  int
	Reference string // bon de sortie, chantier, etc.
	Note      string
}

// ReceiveStock adds quantity to total and available.
func (s *InventoryService) ReceiveStock(in MovementInput) (*models.Tool, error) {
	return s.apply(in, models.MovementIn, func(t *models.Tool, qty int) error {
		t.QuantityTotal += qty
		t.QuantityAvailable += qty
		return nil
	})
}

// IssueStock removes quantity permanently (sale, loss, scrap).
func (s *InventoryService) IssueStock(in MovementInput) (*models.Tool, error) {
	return s.apply(in, models.MovementOut, func(t *models.Tool, qty int) error {
		if qty > t.QuantityAvailable {
			return errs.Validation("insufficient_stock", map[string]string{"quantity": "exceeds_available"})
		}
		t.QuantityTotal -= qty
		t.QuantityAvailable -= qty
		return nil
	})
}

// Assign moves quantity from available to assigned.
func (s *InventoryService) Assign(in MovementInput) (*models.Tool, error) {
	return s.apply(in, models.MovementAssign, func(t *models.Tool, qty int) error {
		if qty > t.QuantityAvailable {
			return errs.Validation("insufficient_stock", map[string]string{"quantity": "exceeds_available"})
		}
		t.QuantityAvailable -= qty
		t.QuantityAssigned += qty
		return nil
	})
}

// Return moves quantity from assigned back to available.
func (s *InventoryService) Return(in MovementInput) (*models.Tool, error) {
	return s.apply(in, models.MovementReturn, func(t *models.Tool, qty int) error {
		if qty > t.QuantityAssigned {
			return errs.Validation("invalid_return", map[string]string{"quantity": "exceeds_assigned"})
		}
		t.QuantityAssigned -= qty
		t.QuantityAvailable += qty
		return nil
	})
}

func (s *InventoryService) apply(in MovementInput, movementType string, mutate func(*models.Tool, int) error) (*models.Tool, error) {
	if in.Quantity <= 0 {
		return nil, errs.Validation("invalid_quantity", map[string]string{"quantity": "must_be_positive"})
	}
	var tool models.Tool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tool, in.ToolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("tool")
			}
			return err
		}
		if err := mutate(&tool, in.Quantity); err != nil {
			return err
		}
		if err := tx.Model(&tool).Updates(map[string]any{
			"quantity_total":     tool.QuantityTotal,
			"quantity_available": tool.QuantityAvailable,
			"quantity_assigned":  tool.QuantityAssigned,
		}).Error; err != nil {
			return err
		}
		movement := models.ToolMovement{
			ToolID:    tool.ID,
			Type:      movementType,
			Quantity:  in.Quantity,
			Reference: in.Reference,
			Note:      in.Note,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// Movements returns the movement history of a tool, oldest first.
func (s *InventoryService) Movements(toolID uint) ([]models.ToolMovement, error) {
	var rows []models.ToolMovement
	err := s.DB.Where("tool_id = ?", toolID).Order("id").Find(&rows).Error
	return rows, err
}
