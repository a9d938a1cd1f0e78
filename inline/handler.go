package inline

import "context"

// Handler inlines a single source. Returning Unhandled passes the source on
// to the next handler.
type Handler interface {
	Handle(ctx context.Context, src Source, c Context) (Result, error)
}

// HandlerFunc adapts a synchronous function to a Handler.
type HandlerFunc func(src Source, c Context) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, src Source, c Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Unhandled, err
	}
	return f(src, c)
}

// Outcome is delivered by an asynchronous handler once it is done.
type Outcome struct {
	Result Result
	Err    error
}

// AsyncHandlerFunc adapts a function doing its own I/O in the background.
// The returned channel must receive exactly one Outcome.
type AsyncHandlerFunc func(ctx context.Context, src Source, c Context) <-chan Outcome

func (f AsyncHandlerFunc) Handle(ctx context.Context, src Source, c Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Unhandled, ctx.Err()
	case out := <-f(ctx, src, c):
		return out.Result, out.Err
	}
}
