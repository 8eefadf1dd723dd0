// services/task_registry.go
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"token-claim-service/models"

	"github.com/gosimple/slug"
)

// DefaultTasks is the task list served when no override file is configured.
var DefaultTasks = []models.Task{
	{
		ID:          "task-1",
		Title:       "Visit TraderPulse website",
		Description: "Check out the official TraderPulse Token website for updates.",
		Reward:      10,
	},
	{
		ID:          "task-2",
		Title:       "Share on Twitter",
		Description: "Share TraderPulse Token on your Twitter account.",
		Reward:      20,
	},
	{
		ID:          "task-3",
		Title:       "Join Telegram Group",
		Description: "Join the TraderPulse Token community on Telegram.",
		Reward:      15,
	},
	{
		ID:          "task-4",
		Title:       "Refer a Friend",
		Description: "Invite a friend to join TraderPulse Token.",
		Reward:      25,
	},
}

// TaskRegistry is a read-only ordered task list shared by every user.
type TaskRegistry struct {
	tasks []models.Task
	byID  map[string]int
}

func NewTaskRegistry(tasks []models.Task) (*TaskRegistry, error) {
	r := &TaskRegistry{
		tasks: make([]models.Task, 0, len(tasks)),
		byID:  make(map[string]int, len(tasks)),
	}
	for i, t := range tasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			return nil, fmt.Errorf("task #%d: title is required", i+1)
		}
		if t.ID == "" {
			t.ID = slug.Make(t.Title)
		}
		if t.Reward <= 0 {
			return nil, fmt.Errorf("task %q: reward must be positive, got %d", t.ID, t.Reward)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("task %q: duplicate id", t.ID)
		}
		r.byID[t.ID] = len(r.tasks)
		r.tasks = append(r.tasks, t)
	}
	return r, nil
}

// LoadTaskRegistry reads a JSON array of tasks from path, or returns the
// default registry when path is empty.
func LoadTaskRegistry(path string) (*TaskRegistry, error) {
	if path == "" {
		return NewTaskRegistry(DefaultTasks)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks file: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("tasks file %s is empty", path)
	}
	return NewTaskRegistry(tasks)
}

// All returns a copy of the tasks in registry order.
func (r *TaskRegistry) All() []models.Task {
	out := make([]models.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

func (r *TaskRegistry) Get(id string) (models.Task, error) {
	i, ok := r.byID[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return r.tasks[i], nil
}

// TotalReward is the sum of every task reward.
func (r *TaskRegistry) TotalReward() int64 {
	var sum int64
	for _, t := range r.tasks {
		sum += t.Reward
	}
	return sum
}
