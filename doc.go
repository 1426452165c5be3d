// Package appkit provides a toolkit for in-process signal dispatch and the
// supporting infrastructure around it. The library implements modern Go
// patterns including generics for type safety, functional options for
// configuration, and interface-based design for flexibility and testability.
//
// # Package Organization
//
// The toolkit is organized into two categories:
//
//   - Core: the dispatch machinery and components built directly on it
//   - Utilities: standalone packages usable on their own
//
// # Core Packages
//
//	github.com/dmitrymomot/appkit/core/dispatch - synchronous signal dispatch with weak receiver references
//	github.com/dmitrymomot/appkit/core/registry - signal-emitting key-value registry for shared application state
//	github.com/dmitrymomot/appkit/core/config   - type-safe environment variable loading
//
// # Utility Packages
//
//	github.com/dmitrymomot/appkit/pkg/async  - Future pattern for asynchronous computations
//	github.com/dmitrymomot/appkit/pkg/logger - slog attribute helpers for structured logging
//	github.com/dmitrymomot/appkit/pkg/retry  - exponential backoff with jitter and bounded budgets
//
// # Example Usage
//
//	import (
//		"context"
//		"log"
//
//		"github.com/dmitrymomot/appkit/core/dispatch"
//	)
//
//	func main() {
//		d := dispatch.New()
//
//		err := d.Connect("user.created", dispatch.ReceiverFunc(
//			func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
//				log.Printf("welcome %v", data["email"])
//				return nil, nil
//			},
//		))
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if _, err := d.Send(context.Background(), "user.created", dispatch.Any,
//			dispatch.Data{"email": "user@example.com"}); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// For complete examples and detailed usage instructions, refer to the
// individual package documentation using the go doc command.
package appkit
