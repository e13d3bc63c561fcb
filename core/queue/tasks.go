package queue

import (
	"encoding/json"

	"items-planning/core/reconcile"

	"github.com/hibiken/asynq"
)

// TaskItemChanged is the asynq task type carrying a reconcile.ItemChanged event.
const TaskItemChanged = "items_planning.item_changed"

// NewItemChangedTask encodes ev as a task.
func NewItemChangedTask(ev reconcile.ItemChanged, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskItemChanged, data, opts...), nil
}

// ParseItemChangedPayload decodes the event carried by task.
func ParseItemChangedPayload(task *asynq.Task) (reconcile.ItemChanged, error) {
	var ev reconcile.ItemChanged
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return reconcile.ItemChanged{}, err
	}
	return ev, nil
}
