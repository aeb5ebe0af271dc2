package worker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Task is the message handed from the upload path to a worker. It carries
// everything a worker needs so it never has to consult the API process.
type Task struct {
	TaskID   string `json:"task_id"`
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

func (t Task) validate() error {
	if strings.TrimSpace(t.TaskID) == "" {
		return fmt.Errorf("task missing task_id")
	}
	if strings.TrimSpace(t.JobID) == "" {
		return fmt.Errorf("task missing job_id")
	}
	return nil
}

func encodeTask(t Task) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(t)
}

func decodeTask(data []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if err := t.validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}
