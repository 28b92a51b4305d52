// Package confirm implements the human-in-the-loop confirmation gate:
// extracted items wait here as Pending until a person approves or rejects
// them. The full item list is snapshotted to disk after every mutation.
package confirm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Approve and Reject for unknown item ids.
var ErrNotFound = errors.New("confirmation item not found")

// ErrAlreadyDecided indicates an approve or reject on an item that has
// already left the Pending state. Decisions happen exactly once.
var ErrAlreadyDecided = errors.New("confirmation item already decided")

// ItemStatus is the confirmation state machine:
// Pending transitions exactly once to Approved or Rejected.
type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusRejected ItemStatus = "rejected"
)

// Item is a candidate fact awaiting explicit human confirmation.
type Item struct {
	// ID is unique and generation-ordered; never reused.
	ID string `json:"id"`
	// Type classifies the item (e.g. "task", "decision").
	Type string `json:"type"`
	// Data carries the extracted content.
	Data map[string]any `json:"data"`
	// Confidence is the extractor's certainty in [0,1].
	Confidence float64 `json:"confidence"`
	// Status is the current lifecycle state.
	Status ItemStatus `json:"status"`
	// CreatedAt is when the item entered the panel.
	CreatedAt time.Time `json:"created_at"`
	// ApprovedAt is set on approval.
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	// RejectedAt is set on rejection.
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	// RejectionReason is the optional reason supplied on rejection.
	RejectionReason string `json:"rejection_reason,omitempty"`
	// Edited is true when approval replaced the original data.
	Edited bool `json:"edited,omitempty"`
}

// clone returns a copy safe to hand to callers.
func (it *Item) clone() Item {
	out := *it
	if it.Data != nil {
		out.Data = make(map[string]any, len(it.Data))
		for k, v := range it.Data {
			out.Data[k] = v
		}
	}
	return out
}

// Panel is the confirmation store. All mutations are serialized under one
// mutex covering both the in-memory list and the synchronous snapshot
// write; any agent goroutine may call Add concurrently.
type Panel struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	items []*Item
	seq   int
}

// NewPanel creates a Panel persisting to path and loads any existing
// snapshot. A missing file is not an error; an unreadable or corrupt file
// is, so setup problems surface at startup rather than on first approval.
func NewPanel(path string, logger *zap.Logger) (*Panel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Panel{path: path, logger: logger}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// AddForConfirmation creates a Pending item, persists the snapshot, and
// returns the new item's id.
func (p *Panel) AddForConfirmation(itemType string, data map[string]any, confidence float64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	item := &Item{
		ID:         fmt.Sprintf("%s-%06d-%s", itemType, p.seq, uuid.New().String()[:8]),
		Type:       itemType,
		Data:       data,
		Confidence: confidence,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	p.items = append(p.items, item)

	if err := p.save(); err != nil {
		return "", err
	}
	p.logger.Debug("item added for confirmation",
		zap.String("id", item.ID),
		zap.String("type", itemType),
		zap.Float64("confidence", confidence))
	return item.ID, nil
}

// GetPending returns Pending items, optionally filtered by type. Pass an
// empty string for all types.
func (p *Panel) GetPending(itemType string) []Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Item
	for _, it := range p.items {
		if it.Status != StatusPending {
			continue
		}
		if itemType != "" && it.Type != itemType {
			continue
		}
		out = append(out, it.clone())
	}
	return out
}

// GetApproved returns all Approved items.
func (p *Panel) GetApproved() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Item
	for _, it := range p.items {
		if it.Status == StatusApproved {
			out = append(out, it.clone())
		}
	}
	return out
}

// Get returns the item with the given id.
func (p *Panel) Get(id string) (Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	it := p.find(id)
	if it == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it.clone(), nil
}

// Approve transitions an item to Approved. If editedData is non-nil it
// replaces the item's data and marks the item edited. The snapshot is
// written before returning.
func (p *Panel) Approve(id string, editedData map[string]any) (Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	it := p.find(id)
	if it == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if it.Status != StatusPending {
		return Item{}, fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, id, it.Status)
	}

	now := time.Now().UTC()
	it.Status = StatusApproved
	it.ApprovedAt = &now
	if editedData != nil {
		it.Data = editedData
		it.Edited = true
	}

	if err := p.save(); err != nil {
		return Item{}, err
	}
	p.logger.Info("confirmation approved", zap.String("id", id), zap.Bool("edited", it.Edited))
	return it.clone(), nil
}

// Reject transitions an item to Rejected, recording the optional reason.
func (p *Panel) Reject(id, reason string) (Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	it := p.find(id)
	if it == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if it.Status != StatusPending {
		return Item{}, fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, id, it.Status)
	}

	now := time.Now().UTC()
	it.Status = StatusRejected
	it.RejectedAt = &now
	it.RejectionReason = reason

	if err := p.save(); err != nil {
		return Item{}, err
	}
	p.logger.Info("confirmation rejected", zap.String("id", id), zap.String("reason", reason))
	return it.clone(), nil
}

// ClearProcessed drops Approved and Rejected items, keeping Pending ones.
func (p *Panel) ClearProcessed() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.items[:0]
	for _, it := range p.items {
		if it.Status == StatusPending {
			kept = append(kept, it)
		}
	}
	p.items = kept
	return p.save()
}

// find returns the item with the given id, or nil. Caller holds p.mu.
func (p *Panel) find(id string) *Item {
	for _, it := range p.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// save writes the full item list as one JSON document. Caller holds p.mu.
// The write goes to a temp file first and is renamed into place so a crash
// mid-write never corrupts the previous snapshot.
func (p *Panel) save() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create confirmation directory: %w", err)
	}

	data, err := json.MarshalIndent(p.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode confirmations: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write confirmations: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace confirmations: %w", err)
	}
	return nil
}

// load reads the snapshot from disk, if present, and resumes the id
// sequence past every loaded item.
func (p *Panel) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read confirmations: %w", err)
	}

	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode confirmations: %w", err)
	}
	p.items = items
	p.seq = len(items)
	return nil
}
