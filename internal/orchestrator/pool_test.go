package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/teknify/internal/models"
)

type cannedReply struct {
	resp  *models.RawResponse
	err   error
	delay time.Duration
}

// cannedUploader answers per path and tracks how many uploads run at once
type cannedUploader struct {
	replies   map[string]cannedReply
	active    atomic.Int32
	maxActive atomic.Int32
}

func (c *cannedUploader) Upload(ctx context.Context, path string) (*models.RawResponse, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		current := c.maxActive.Load()
		if n <= current || c.maxActive.CompareAndSwap(current, n) {
			break
		}
	}

	reply, ok := c.replies[path]
	if !ok {
		return &models.RawResponse{StatusCode: 200, Body: fmt.Sprintf(`{"result":{"url":"http://x/%s"}}`, path)}, nil
	}
	time.Sleep(reply.delay)
	if reply.resp == nil && reply.err == nil {
		panic("no reply for " + path)
	}
	return reply.resp, reply.err
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []string
	completed []string
}

func (r *recordingObserver) Started(req models.UploadRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, req.Path)
}

func (r *recordingObserver) Completed(outcome models.TaskOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, outcome.Path)
}

func fileNames(n int) []string {
	files := make([]string, n)
	for i := range files {
		files[i] = fmt.Sprintf("file-%02d.png", i)
	}
	return files
}

func sortedPaths(outcomes []models.TaskOutcome) []string {
	paths := make([]string, len(outcomes))
	for i, o := range outcomes {
		paths[i] = o.Path
	}
	sort.Strings(paths)
	return paths
}

func TestRunProducesOneOutcomePerFile(t *testing.T) {
	for _, n := range []int{0, 1, 5, 37} {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			files := fileNames(n)
			pool := New(4, models.OutputURLOnly, &cannedUploader{}, nil)

			outcomes := pool.Run(context.Background(), files)

			require.Len(t, outcomes, n)
			assert.Equal(t, files, sortedPaths(outcomes))
		})
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	files := fileNames(12)
	replies := make(map[string]cannedReply)
	for _, f := range files {
		replies[f] = cannedReply{
			resp:  &models.RawResponse{StatusCode: 200, Body: `{"result":{"url":"http://x/y"}}`},
			delay: 20 * time.Millisecond,
		}
	}

	for _, k := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("concurrency %d", k), func(t *testing.T) {
			uploader := &cannedUploader{replies: replies}
			pool := New(k, models.OutputURLOnly, uploader, nil)

			outcomes := pool.Run(context.Background(), files)

			require.Len(t, outcomes, len(files))
			assert.LessOrEqual(t, int(uploader.maxActive.Load()), k)
			assert.GreaterOrEqual(t, int(uploader.maxActive.Load()), 1)
		})
	}
}

func TestRunMixedBatchCompletes(t *testing.T) {
	ok := &models.RawResponse{StatusCode: 200, Body: `{"result":{"url":"http://x/y"}}`}
	uploader := &cannedUploader{replies: map[string]cannedReply{
		"one.png":   {resp: ok, delay: 10 * time.Millisecond},
		"two.png":   {err: errors.New("send request: connection reset")},
		"three.png": {resp: ok, delay: 5 * time.Millisecond},
	}}
	observer := &recordingObserver{}
	pool := New(2, models.OutputNameAndURL, uploader, observer)

	done := make(chan []models.TaskOutcome, 1)
	go func() {
		done <- pool.Run(context.Background(), []string{"one.png", "two.png", "three.png"})
	}()

	var outcomes []models.TaskOutcome
	select {
	case outcomes = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not complete")
	}

	summary := models.Summarize(outcomes)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.TransportErrors)
	assert.Zero(t, summary.ApplicationErrors)

	for _, o := range outcomes {
		if o.Path == "two.png" {
			assert.Equal(t, models.OutcomeTransportError, o.Kind)
		} else {
			assert.Equal(t, models.OutcomeSuccess, o.Kind)
			assert.Equal(t, o.Path+": http://x/y", o.Text)
		}
	}

	assert.ElementsMatch(t, []string{"one.png", "two.png", "three.png"}, observer.started)
	assert.ElementsMatch(t, []string{"one.png", "two.png", "three.png"}, observer.completed)
}

func TestRunSurvivesPanickingUpload(t *testing.T) {
	uploader := &cannedUploader{replies: map[string]cannedReply{
		"boom.png": {},
	}}
	pool := New(2, models.OutputURLOnly, uploader, nil)

	outcomes := pool.Run(context.Background(), []string{"a.png", "boom.png", "b.png"})

	require.Len(t, outcomes, 3)
	assert.Equal(t, 1, models.Summarize(outcomes).TransportErrors)
}

func TestRunIsRepeatable(t *testing.T) {
	uploader := &cannedUploader{replies: map[string]cannedReply{
		"bad-status.png": {resp: &models.RawResponse{StatusCode: 500, Body: "oops"}},
		"bad-json.png":   {resp: &models.RawResponse{StatusCode: 200, Body: `{"result":[]}`}},
		"offline.png":    {err: errors.New("send request: no route to host")},
	}}
	files := []string{"a.png", "bad-status.png", "b.png", "bad-json.png", "offline.png"}
	pool := New(3, models.OutputNameAndURL, uploader, nil)

	first := pool.Run(context.Background(), files)
	second := pool.Run(context.Background(), files)

	assert.ElementsMatch(t, first, second)
}

func TestRunDispatchesInInputOrder(t *testing.T) {
	files := fileNames(6)
	observer := &recordingObserver{}
	pool := New(1, models.OutputURLOnly, &cannedUploader{}, observer)

	outcomes := pool.Run(context.Background(), files)

	assert.Equal(t, files, observer.started)
	for i, o := range outcomes {
		assert.Equal(t, i, o.SequenceID)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	assert.Equal(t, 1, New(0, models.OutputJSON, &cannedUploader{}, nil).Workers)
	assert.Equal(t, 1, New(-4, models.OutputJSON, &cannedUploader{}, nil).Workers)
}
