// Package async provides a generic Future for running computations off the
// calling goroutine, with timeout-aware waiting and coordination helpers.
//
// # Usage
//
// Basic asynchronous operation:
//
//	func fetchUser(ctx context.Context, userID int) (User, error) {
//		return userStore.Get(ctx, userID)
//	}
//
//	future := async.Async(ctx, 123, fetchUser)
//
//	// Do other work...
//
//	user, err := future.Await()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Bounded waits:
//
//	user, err := future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("still running, try again later")
//	}
//
//	// Or tied to a context:
//	user, err = future.AwaitContext(ctx)
//
// # Coordination
//
// WaitAll awaits every future and returns results in argument order, joining
// any errors:
//
//	futures := []*async.Future[User]{
//		async.Async(ctx, 1, fetchUser),
//		async.Async(ctx, 2, fetchUser),
//	}
//	users, err := async.WaitAll(futures...)
//
// WaitAny returns as soon as the first future completes:
//
//	index, user, err := async.WaitAny(futures...)
//
// # Failure Semantics
//
// A context cancelled before the function starts short-circuits the future
// with ctx.Err(); once running, the function is responsible for observing the
// context itself. Panics inside the function are captured as errors matching
// ErrPanic rather than crashing the process, mirroring how signal dispatch
// contains receiver panics.
package async
