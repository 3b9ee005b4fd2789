package mocks

import (
	"webforge/internal/models"
)

type ConversationRepositoryMock struct {
	AppendFunc         func(turn *models.ConversationTurn) error
	GetByIDFunc        func(id uint) (*models.ConversationTurn, error)
	ListByProjectFunc  func(projectID uint) ([]models.ConversationTurn, error)
	AttachSnapshotFunc func(turnID, snapshotID uint) error

	// Turns collects appended turns when AppendFunc is nil.
	Turns  []*models.ConversationTurn
	nextID uint
}

func (m *ConversationRepositoryMock) Append(turn *models.ConversationTurn) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(turn)
	}
	m.nextID++
	turn.ID = m.nextID
	m.Turns = append(m.Turns, turn)
	return nil
}

func (m *ConversationRepositoryMock) GetByID(id uint) (*models.ConversationTurn, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	for _, turn := range m.Turns {
		if turn.ID == id {
			return turn, nil
		}
	}
	return nil, nil
}

func (m *ConversationRepositoryMock) ListByProject(projectID uint) ([]models.ConversationTurn, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(projectID)
	}
	var turns []models.ConversationTurn
	for _, turn := range m.Turns {
		if turn.ProjectID == projectID {
			turns = append(turns, *turn)
		}
	}
	return turns, nil
}

func (m *ConversationRepositoryMock) AttachSnapshot(turnID, snapshotID uint) error {
	if m.AttachSnapshotFunc != nil {
		return m.AttachSnapshotFunc(turnID, snapshotID)
	}
	for _, turn := range m.Turns {
		if turn.ID == turnID {
			id := snapshotID
			turn.SnapshotID = &id
			return nil
		}
	}
	return nil
}
