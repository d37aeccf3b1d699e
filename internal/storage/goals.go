package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mferrier/booktracker/internal/entities"
)

// GoalStore holds one reading goal per calendar year.
type GoalStore struct {
	client Client
}

func NewGoalStore(client Client) *GoalStore {
	return &GoalStore{client: client}
}

func (s *GoalStore) Goals() (map[int]entities.ReadingGoal, error) {
	data, err := s.client.Load(KeyGoals)
	if err != nil {
		return nil, err
	}
	goals := map[int]entities.ReadingGoal{}
	if len(data) == 0 {
		return goals, nil
	}
	if err := json.Unmarshal(data, &goals); err != nil {
		return nil, fmt.Errorf("decode reading goals: %w", err)
	}
	return goals, nil
}

// SetYearlyGoal creates or overwrites the goal for a year.
func (s *GoalStore) SetYearlyGoal(year, target int) error {
	if target <= 0 {
		return fmt.Errorf("goal target must be positive")
	}
	goals, err := s.Goals()
	if err != nil {
		return err
	}
	goals[year] = entities.ReadingGoal{
		Target:    target,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encode reading goals: %w", err)
	}
	return s.client.Save(KeyGoals, data)
}

// GetYearlyGoal returns nil when no goal is set for the year.
func (s *GoalStore) GetYearlyGoal(year int) (*entities.ReadingGoal, error) {
	goals, err := s.Goals()
	if err != nil {
		return nil, err
	}
	if goal, ok := goals[year]; ok {
		return &goal, nil
	}
	return nil, nil
}
