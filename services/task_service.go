// services/task_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"token-claim-service/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskView is a registry task joined with one user's completion state.
type TaskView struct {
	models.Task
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskOutcome is the store-confirmed result of completing a task.
// Credited is the amount added to the user's total, 0 when the pair was paid before a reset.
type TaskOutcome struct {
	Task       models.Task           `json:"task"`
	Completion models.TaskCompletion `json:"completion"`
	Credited   int64                 `json:"credited"`
	User       models.UserAccount    `json:"user"`
}

type TaskService struct {
	DB       *gorm.DB
	Registry *TaskRegistry
	Clock    clockwork.Clock
}

func NewTaskService(db *gorm.DB, registry *TaskRegistry, clock clockwork.Clock) *TaskService {
	return &TaskService{DB: db, Registry: registry, Clock: clock}
}

// ListForUser returns every registry task with the user's completion state, in registry order.
func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]TaskView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	var completions []models.TaskCompletion
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&completions).Error; err != nil {
		return nil, storeErr("list task completions", err)
	}
	done := make(map[string]time.Time, len(completions))
	for _, c := range completions {
		done[c.TaskID] = c.CompletedAt
	}

	tasks := s.Registry.All()
	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = TaskView{Task: t}
		if at, ok := done[t.ID]; ok {
			views[i].Completed = true
			views[i].CompletedAt = &at
		}
	}
	return views, nil
}

// AttemptCompleteTask records the completion and credits the reward in one transaction.
// A second completion of the same task fails with ErrAlreadyCompleted and credits nothing.
func (s *TaskService) AttemptCompleteTask(ctx context.Context, userID, taskID string) (*TaskOutcome, error) {
	task, err := s.Registry.Get(taskID)
	if err != nil {
		return nil, err
	}
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now().UTC()
	completion := models.TaskCompletion{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		TaskID:      task.ID,
		CompletedAt: now,
	}
	var credited int64

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
		if res.Error != nil {
			return storeErr("insert task completion", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyCompleted, task.ID)
		}

		grant := models.TaskRewardGrant{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			TaskID:    task.ID,
			Amount:    task.Reward,
			GrantedAt: now,
		}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
		if res.Error != nil {
			return storeErr("insert task reward grant", res.Error)
		}
		if res.RowsAffected == 0 {
			// paid out before a reset
			return nil
		}

		res = tx.Model(&models.UserAccount{}).
			Where("id = ?", user.ID).
			Update("total_claimed", gorm.Expr("total_claimed + ?", task.Reward))
		if res.Error != nil {
			return storeErr("credit task reward", res.Error)
		}
		if res.RowsAffected != 1 {
			return storeErr("credit task reward", fmt.Errorf("user %s not updated", user.ID))
		}
		credited = task.Reward
		return nil
	})
	if err != nil {
		return nil, err
	}

	confirmed, err := LoadVerifiedUser(ctx, s.DB, user.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ [TASK] user=%s completed %s, credited=%d, total=%d", user.ID, task.ID, credited, confirmed.TotalClaimed)

	return &TaskOutcome{
		Task:       task,
		Completion: completion,
		Credited:   credited,
		User:       *confirmed,
	}, nil
}

// ResetTasks deletes every completion of the user. Totals and reward grants are untouched.
func (s *TaskService) ResetTasks(ctx context.Context, userID string) (int64, error) {
	user, err := LoadVerifiedUser(ctx, s.DB, userID)
	if err != nil {
		return 0, err
	}
	res := s.DB.WithContext(ctx).Where("user_id = ?", user.ID).Delete(&models.TaskCompletion{})
	if res.Error != nil {
		return 0, storeErr("reset task completions", res.Error)
	}
	log.Printf("🔄 [TASK] user=%s reset %d task(s)", user.ID, res.RowsAffected)
	return res.RowsAffected, nil
}

