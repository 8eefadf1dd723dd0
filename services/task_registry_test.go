package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"token-claim-service/models"
)

func TestDefaultRegistry(t *testing.T) {
	registry, err := LoadTaskRegistry("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	want := map[string]int64{"task-1": 10, "task-2": 20, "task-3": 15, "task-4": 25}
	tasks := registry.All()
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for _, task := range tasks {
		if want[task.ID] != task.Reward {
			t.Fatalf("task %s: expected reward %d, got %d", task.ID, want[task.ID], task.Reward)
		}
	}

	// All returns a copy
	tasks[0].Reward = 1000
	if got, _ := registry.Get("task-1"); got.Reward != 10 {
		t.Fatalf("registry mutated through All(), reward=%d", got.Reward)
	}

	if _, err := registry.Get("nope"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestNewTaskRegistry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tasks []models.Task
	}{
		{name: "missing title", tasks: []models.Task{{ID: "a", Reward: 5}}},
		{name: "zero reward", tasks: []models.Task{{ID: "a", Title: "A", Reward: 0}}},
		{name: "duplicate id", tasks: []models.Task{{ID: "a", Title: "A", Reward: 1}, {ID: "a", Title: "B", Reward: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTaskRegistry(tt.tasks); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadTaskRegistry_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	body := `[{"title":"Follow on Discord","description":"Join us","reward":5},{"id":"custom","title":"Custom","reward":7}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	registry, err := LoadTaskRegistry(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := registry.Get("follow-on-discord"); err != nil {
		t.Fatalf("expected slug id from title: %v", err)
	}
	if registry.TotalReward() != 12 {
		t.Fatalf("expected total 12, got %d", registry.TotalReward())
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	_ = os.WriteFile(empty, []byte(`[]`), 0o600)
	if _, err := LoadTaskRegistry(empty); err == nil {
		t.Fatal("expected error for empty task file")
	}
}
