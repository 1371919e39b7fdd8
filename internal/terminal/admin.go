package terminal

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// StaffDirectory holds the administrator's staff listing. Every fetch is
// tagged with a sequence number and a response only replaces the snapshot
// when no newer fetch has completed, so a slow listing can't overwrite
// fresher data.
type StaffDirectory struct {
	mu       sync.Mutex
	client   Collaborator
	sessions *SessionManager
	logger   *zap.Logger

	nextSeq    uint64
	appliedSeq uint64
	snapshot   []StaffRecord
}

// NewStaffDirectory builds the directory.
func NewStaffDirectory(client Collaborator, sessions *SessionManager, logger *zap.Logger) *StaffDirectory {
	return &StaffDirectory{client: client, sessions: sessions, logger: logger}
}

// Refresh fetches the listing from the access state store. Out-of-order
// completions are discarded; the last known-good snapshot survives any
// failure.
func (d *StaffDirectory) Refresh(ctx context.Context) ([]StaffRecord, error) {
	d.mu.Lock()
	d.nextSeq++
	seq := d.nextSeq
	d.mu.Unlock()

	list, err := d.client.ListStaff(ctx, d.sessions.Token())
	if err != nil {
		if errors.Is(err, ErrStaleAuthorization) {
			_ = d.sessions.Terminate()
		}
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq < d.appliedSeq {
		d.logger.Debug("discarding stale staff listing", zap.Uint64("seq", seq), zap.Uint64("applied", d.appliedSeq))
		return d.snapshot, nil
	}
	d.appliedSeq = seq
	d.snapshot = list
	return list, nil
}

// Snapshot returns the last applied listing.
func (d *StaffDirectory) Snapshot() []StaffRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// DutyToggleController flips a staff member's duty access. One toggle at a
// time; the listing is refreshed from the store after a successful write
// rather than mutated locally.
type DutyToggleController struct {
	mu        sync.Mutex
	busy      bool
	client    Collaborator
	sessions  *SessionManager
	directory *StaffDirectory
	logger    *zap.Logger
}

// NewDutyToggleController builds the controller.
func NewDutyToggleController(client Collaborator, sessions *SessionManager, directory *StaffDirectory, logger *zap.Logger) *DutyToggleController {
	return &DutyToggleController{client: client, sessions: sessions, directory: directory, logger: logger}
}

// Toggle sends the negation of currentOnDuty for the staff member and
// re-fetches the listing on success. On failure the listing is left at its
// last known-good state; retry is manual.
func (c *DutyToggleController) Toggle(ctx context.Context, staffID string, currentOnDuty bool) ([]StaffRecord, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	target := !currentOnDuty
	if err := c.client.ToggleAccess(ctx, c.sessions.Token(), staffID, target); err != nil {
		if errors.Is(err, ErrStaleAuthorization) {
			_ = c.sessions.Terminate()
		}
		c.logger.Warn("duty toggle failed", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	c.logger.Info("duty access toggled", zap.String("staff_id", staffID), zap.Bool("on_duty", target))
	return c.directory.Refresh(ctx)
}

// CreateStaff registers a new account and refreshes the listing.
func (c *DutyToggleController) CreateStaff(ctx context.Context, input CreateStaffInput) ([]StaffRecord, error) {
	if err := c.client.CreateStaff(ctx, c.sessions.Token(), input); err != nil {
		if errors.Is(err, ErrStaleAuthorization) {
			_ = c.sessions.Terminate()
		}
		return nil, err
	}
	return c.directory.Refresh(ctx)
}
