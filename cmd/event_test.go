package cmd

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"sync"

	"github.com/frahmantamala/revolv-ledger/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("publishTestEvent", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
	})

	It("should run handlers before returning when sync", func() {
		var seen []events.Event
		bus.Subscribe(events.EventTypeRepaymentCreated, func(_ context.Context, e events.Event) error {
			seen = append(seen, e)
			return nil
		})

		Expect(publishTestEvent(ctx, bus, events.EventTypeRepaymentCreated, 7, "12.50", true)).To(Succeed())
		Expect(seen).To(HaveLen(1))
		Expect(seen[0].EventType()).To(Equal(events.EventTypeRepaymentCreated))
	})

	It("should fail on a handler error when sync", func() {
		boom := stdErrors.New("subscriber down")
		bus.Subscribe(events.EventTypeReinvestmentCreated, func(context.Context, events.Event) error {
			return boom
		})

		err := publishTestEvent(ctx, bus, events.EventTypeReinvestmentCreated, 1, "1.00", true)
		Expect(err).To(MatchError(boom))
	})

	It("should wait for asynchronous handlers and ignore their errors", func() {
		var (
			mu    sync.Mutex
			calls int
		)
		bus.Subscribe(events.EventTypeRepaymentCreated, func(context.Context, events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return stdErrors.New("ignored")
		})

		Expect(publishTestEvent(ctx, bus, events.EventTypeRepaymentCreated, 1, "1.00", false)).To(Succeed())
		mu.Lock()
		defer mu.Unlock()
		Expect(calls).To(Equal(1))
	})

	It("should reject unknown event types and bad amounts", func() {
		Expect(publishTestEvent(ctx, bus, "ledger.unknown", 1, "1.00", true)).To(MatchError(ContainSubstring("unknown event type")))
		Expect(publishTestEvent(ctx, bus, events.EventTypeRepaymentCreated, 1, "abc", true)).To(MatchError(ContainSubstring("invalid amount")))
	})
})
