// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package paywall

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

// ErrRefreshInFlight is returned when a refresh is requested while another
// one has not finished.
var ErrRefreshInFlight = errors.New("paywall: roles refresh already in flight")

// Reload reasons passed to the [ReloadFunc].
const (
	ReloadAfterRefresh       = "roles_refreshed"
	ReloadAfterFailedRefresh = "roles_refresh_failed"
)

// Refresher performs one roles refresh against the server.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ReloadFunc is the terminal recovery action: re-derive the view from a fresh
// session. It is invoked after every refresh attempt, successful or not.
type ReloadFunc func(ctx context.Context, reason string)

// ControllerOptions tunes a [Controller].
type ControllerOptions struct {

	// ReloadDelay is the pause before reloading after a failed refresh.
	ReloadDelay time.Duration

	Logger *slog.Logger
}

/*
Controller drives the roles refresh of one mounted gated view.

Lifecycle:

  - [Controller.Mount] decides the state and, when it is [StateRefreshing],
    starts at most one automatic refresh for the lifetime of the controller.
  - [Controller.RefreshRoles] is the manual trigger behind the refresh button.
  - Only one refresh runs at a time; a second request gets [ErrRefreshInFlight].

After a refresh the controller always calls Reload. A failed refresh waits
ReloadDelay first, so a persistent failure does not spin.
*/
type Controller struct {
	refresher Refresher
	reload    ReloadFunc
	options   ControllerOptions

	autoStarted atomic.Bool
	inFlight    atomic.Bool
	background  sync.WaitGroup
}

// NewController builds a controller for one view.
func NewController(refresher Refresher, reload ReloadFunc, options ControllerOptions) *Controller {
	if options.ReloadDelay <= 0 {
		options.ReloadDelay = constants.RefreshReloadDelay
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Controller{refresher: refresher, reload: reload, options: options}
}

// Mount decides the state for result and starts the automatic refresh when
// the snapshot is stale.
func (c *Controller) Mount(ctx context.Context, result entitlement.Result) State {
	state := Decide(result)
	if state != StateRefreshing {
		return state
	}

	if !c.autoStarted.CompareAndSwap(false, true) {
		return state
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return state
	}

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.run(ctx, "auto")
	}()

	return state
}

// RefreshRoles runs a manual refresh synchronously.
func (c *Controller) RefreshRoles(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	return c.run(ctx, "manual")
}

// Refreshing reports whether a refresh is running (the button is disabled).
func (c *Controller) Refreshing() bool {
	return c.inFlight.Load()
}

// Wait blocks until the automatic refresh, if any, has finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

// run performs one refresh. The caller must have claimed inFlight.
func (c *Controller) run(ctx context.Context, trigger string) error {
	defer c.inFlight.Store(false)

	logger := c.options.Logger.With(slog.String("trigger", trigger))

	err := c.refresher.Refresh(ctx)
	if err == nil {
		logger.InfoContext(ctx, "paywall_reload", slog.String("reason", ReloadAfterRefresh))
		c.reload(ctx, ReloadAfterRefresh)
		return nil
	}

	logger.WarnContext(ctx, "paywall_refresh_failed", slog.Any("error", err))

	timer := time.NewTimer(c.options.ReloadDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}

	logger.InfoContext(ctx, "paywall_reload", slog.String("reason", ReloadAfterFailedRefresh))
	c.reload(ctx, ReloadAfterFailedRefresh)
	return err
}
