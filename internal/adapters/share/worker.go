// Package share publishes exported snapshot documents to a blob backend so a
// household member can hand the resulting link to another device. Deliveries
// carry serialized documents only; the worker never touches live list state.
package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"homestock/internal/blob"
)

// DeliveryStatus describes the lifecycle stage of a share request.
type DeliveryStatus string

const (
	StatusQueued    DeliveryStatus = "queued"
	StatusRunning   DeliveryStatus = "running"
	StatusSucceeded DeliveryStatus = "succeeded"
	StatusFailed    DeliveryStatus = "failed"
)

// Delivery tracks one share request and its published artifact.
type Delivery struct {
	ID          string         `json:"id"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	URL         string         `json:"url,omitempty"`
	SizeBytes   int64          `json:"size_bytes"`
	Status      DeliveryStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ErrQueueFull is returned when the share queue cannot accept more work.
var ErrQueueFull = errors.New("share queue full")

// Worker publishes share payloads asynchronously.
type Worker struct {
	store blob.Store
	audit AuditLogger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Delivery

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id      string
	actor   string
	payload []byte
}

// NewWorker constructs a share worker over the given blob store. A nil audit
// logger disables the audit trail.
func NewWorker(store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		store:  store,
		audit:  audit,
		queue:  make(chan task, 16),
		jobs:   make(map[string]*Delivery),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing share requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for in-flight work.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// EnqueueShare schedules publishing payload under fileName and returns the
// queued delivery.
func (w *Worker) EnqueueShare(ctx context.Context, actor, fileName, contentType string, payload []byte) (Delivery, error) {
	if fileName == "" {
		return Delivery{}, fmt.Errorf("file name required")
	}
	if len(payload) == 0 {
		return Delivery{}, fmt.Errorf("empty payload")
	}
	now := time.Now().UTC()
	d := Delivery{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		Status:      StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.mu.Lock()
	w.jobs[d.ID] = &d
	queued := d
	w.mu.Unlock()

	w.record(ctx, actor, fileName, StatusQueued)

	select {
	case w.queue <- task{id: d.ID, actor: actor, payload: append([]byte(nil), payload...)}:
	default:
		w.mu.Lock()
		delete(w.jobs, d.ID)
		w.mu.Unlock()
		return Delivery{}, ErrQueueFull
	}
	return queued, nil
}

// GetDelivery returns a snapshot of the delivery record.
func (w *Worker) GetDelivery(id string) (Delivery, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.jobs[id]
	if !ok {
		return Delivery{}, false
	}
	return *d, true
}

func (w *Worker) process(t task) {
	w.mu.RLock()
	d, ok := w.jobs[t.id]
	var fileName, contentType string
	if ok {
		fileName, contentType = d.FileName, d.ContentType
	}
	w.mu.RUnlock()
	if !ok {
		return
	}

	w.update(t.id, func(d *Delivery) { d.Status = StatusRunning })

	key := t.id + "/" + fileName
	info, err := w.store.Put(w.ctx, key, bytes.NewReader(t.payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"shared_by": t.actor},
	})
	if err != nil {
		w.update(t.id, func(d *Delivery) {
			d.Status = StatusFailed
			d.Error = err.Error()
		})
		w.record(w.ctx, t.actor, fileName, StatusFailed)
		return
	}
	url := info.URL
	if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
		url = signed
	}
	w.update(t.id, func(d *Delivery) {
		d.Status = StatusSucceeded
		d.URL = url
		d.SizeBytes = info.Size
	})
	w.record(w.ctx, t.actor, fileName, StatusSucceeded)
}

func (w *Worker) update(id string, fn func(*Delivery)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.jobs[id]; ok {
		fn(d)
		d.UpdatedAt = time.Now().UTC()
	}
}

func (w *Worker) record(ctx context.Context, actor, fileName string, status DeliveryStatus) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Action:     "share_snapshot",
		Actor:      actor,
		FileName:   fileName,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
}
