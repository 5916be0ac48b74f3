package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/anuragdev21/socialbridge/internal/transfer"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublishService struct {
	dispatched []int64
	result     *transfer.PublishResult
}

func (s *stubPublishService) Dispatch(ctx context.Context, postID int64) *transfer.PublishResult {
	s.dispatched = append(s.dispatched, postID)
	return s.result
}

func publishTask(t *testing.T, postID int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypePublishPost, payload)
}

func TestHandlePublishPostTask(t *testing.T) {
	ps := &stubPublishService{result: &transfer.PublishResult{Success: true, PlatformPostID: "fb_1"}}
	q := NewQueue(ps)

	err := q.HandlePublishPostTask(context.Background(), publishTask(t, 7))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ps.dispatched)
}

func TestHandlePublishPostTaskSwallowsDispatchFailure(t *testing.T) {
	// A failed dispatch is recorded on the post row; returning an error here
	// would make asynq retry and double-publish.
	ps := &stubPublishService{result: &transfer.PublishResult{Success: false, Error: "token expired"}}
	q := NewQueue(ps)

	err := q.HandlePublishPostTask(context.Background(), publishTask(t, 7))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ps.dispatched)
}

func TestHandlePublishPostTaskBadPayload(t *testing.T) {
	ps := &stubPublishService{}
	q := NewQueue(ps)

	err := q.HandlePublishPostTask(context.Background(), asynq.NewTask(TaskTypePublishPost, []byte("not json")))
	require.Error(t, err)
	assert.Empty(t, ps.dispatched)
}
