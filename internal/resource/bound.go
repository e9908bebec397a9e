package resource

import (
	"context"
	"log/slog"
)

// NetworkBound decides, per subscription, whether the locally stored value is
// good enough or a remote fetch is needed, and reports progress as a sequence
// of Resource states.
//
// LoadLocal, FetchRemote and SaveRemote are required; a stream missing any of
// them emits a single Error state and closes. LoadLocal must return a channel
// that yields the current stored value first and a new value after every
// change, and closes once ctx is done.
type NetworkBound[Result, Request any] struct {
	LoadLocal     func(ctx context.Context) <-chan Result
	ShouldFetch   func(snapshot *Result) bool
	FetchRemote   func(ctx context.Context) APIResponse[Request]
	SaveRemote    func(ctx context.Context, data Request) error
	OnFetchFailed func(message string)
	Logger        *slog.Logger
}

// FetchIfEmpty is the usual fetch policy for collections: fetch when nothing
// was read or the stored collection is empty.
func FetchIfEmpty[E any](snapshot *[]E) bool {
	return snapshot == nil || len(*snapshot) == 0
}

// Stream subscribes once and returns the state sequence. The channel closes
// after an Error state, when the local observation ends, or when ctx is done.
//
// Emission order:
//
//	Loading, [Loading, fetch], Success...   (fetch succeeded, empty, or skipped)
//	Loading, Loading, Error                 (fetch failed)
func (nb NetworkBound[Result, Request]) Stream(ctx context.Context) <-chan Resource[Result] {
	out := make(chan Resource[Result])

	go func() {
		defer close(out)

		if missing := nb.missingFunc(); missing != "" {
			msg := "network-bound resource misconfigured: " + missing + " is nil"
			nb.logger().Error(msg)
			send(ctx, out, Error[Result](msg, nil))
			return
		}

		if !send(ctx, out, Loading[Result](nil)) {
			return
		}

		snapshot := nb.snapshot(ctx)
		if ctx.Err() != nil {
			return
		}

		if !nb.shouldFetch(snapshot) {
			nb.forwardLocal(ctx, out)
			return
		}

		if !send(ctx, out, Loading[Result](nil)) {
			return
		}

		resp := nb.FetchRemote(ctx)
		if ctx.Err() != nil {
			return
		}

		switch resp.Status {
		case APISuccess:
			if err := nb.SaveRemote(ctx, resp.Data); err != nil {
				if ctx.Err() != nil {
					return
				}
				nb.logger().Error("saving fetched data failed", "err", err)
			}
			nb.forwardLocal(ctx, out)
		case APIEmpty:
			nb.forwardLocal(ctx, out)
		default:
			if nb.OnFetchFailed != nil {
				nb.OnFetchFailed(resp.Message)
			}
			send(ctx, out, Error[Result](resp.Message, nil))
		}
	}()

	return out
}

func (nb NetworkBound[Result, Request]) missingFunc() string {
	switch {
	case nb.LoadLocal == nil:
		return "LoadLocal"
	case nb.FetchRemote == nil:
		return "FetchRemote"
	case nb.SaveRemote == nil:
		return "SaveRemote"
	}
	return ""
}

// snapshot reads the first value of a dedicated local subscription and then
// releases it. Returns nil when the observation ends without a value.
func (nb NetworkBound[Result, Request]) snapshot(ctx context.Context) *Result {
	snapCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case v, ok := <-nb.LoadLocal(snapCtx):
		if !ok {
			return nil
		}
		return &v
	case <-ctx.Done():
		return nil
	}
}

func (nb NetworkBound[Result, Request]) shouldFetch(snapshot *Result) bool {
	if nb.ShouldFetch == nil {
		return snapshot == nil
	}
	return nb.ShouldFetch(snapshot)
}

// forwardLocal opens a fresh local subscription and relays every value as
// Success until the observation ends or ctx is done.
func (nb NetworkBound[Result, Request]) forwardLocal(ctx context.Context, out chan<- Resource[Result]) {
	for v := range nb.LoadLocal(ctx) {
		if !send(ctx, out, Success(v)) {
			return
		}
	}
}

func (nb NetworkBound[Result, Request]) logger() *slog.Logger {
	if nb.Logger != nil {
		return nb.Logger
	}
	return slog.Default()
}

func send[T any](ctx context.Context, out chan<- Resource[T], r Resource[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
