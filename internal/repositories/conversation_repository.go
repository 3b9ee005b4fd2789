package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webforge/internal/models"
)

type ConversationRepository interface {
	Append(turn *models.ConversationTurn) error
	GetByID(id uint) (*models.ConversationTurn, error)
	ListByProject(projectID uint) ([]models.ConversationTurn, error)
	// AttachSnapshot links a captured snapshot to an already-persisted
	// assistant turn. A turn's snapshot is set at most once.
	AttachSnapshot(turnID, snapshotID uint) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Append(turn *models.ConversationTurn) error {
	if turn == nil {
		return fmt.Errorf("turn is required")
	}
	if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
		return fmt.Errorf("unknown turn role %q", turn.Role)
	}
	if turn.SnapshotID != nil && turn.Role != models.RoleAssistant {
		return fmt.Errorf("only assistant turns may carry a snapshot")
	}
	return r.db.Create(turn).Error
}

func (r *conversationRepository) GetByID(id uint) (*models.ConversationTurn, error) {
	var turn models.ConversationTurn
	res := r.db.Take(&turn, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &turn, nil
}

func (r *conversationRepository) ListByProject(projectID uint) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	res := r.db.Where("project_id = ?", projectID).Order("id asc").Find(&turns)
	if res.Error != nil {
		return nil, res.Error
	}
	return turns, nil
}

func (r *conversationRepository) AttachSnapshot(turnID, snapshotID uint) error {
	if turnID == 0 || snapshotID == 0 {
		return fmt.Errorf("turnID and snapshotID are required")
	}
	res := r.db.Model(&models.ConversationTurn{}).
		Where("id = ? AND role = ? AND snapshot_id IS NULL", turnID, models.RoleAssistant).
		Update("snapshot_id", snapshotID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("turn %d cannot take a snapshot", turnID)
	}
	return nil
}
