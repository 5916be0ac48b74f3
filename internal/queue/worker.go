package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandlePublishPostTask hands the post to the dispatcher. The dispatcher owns
// failure handling and records it on the post row, so the task itself always
// completes; retrying through asynq would double-publish.
func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	result := j.ps.Dispatch(ctx, payload.PostID)
	if !result.Success {
		slog.Info("publish dispatch failed", "post_id", payload.PostID, "error", result.Error)
	}

	return nil
}
