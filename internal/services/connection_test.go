package services_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blinky-companion/sync-agent/internal/models"
	"github.com/blinky-companion/sync-agent/internal/services"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
	"github.com/blinky-companion/sync-agent/pkg/scheduler"
)

func event(t models.ConnectionEventType) models.ConnectionEvent {
	return models.ConnectionEvent{Type: t, DeviceID: "dev-1"}
}

var _ = Describe("ConnectionCoordinator", func() {
	var (
		sched *scheduler.Scheduler
		tr    *fakeTransport
		c     *services.ConnectionCoordinator
		seen  *notifications
	)

	BeforeEach(func() {
		sched = scheduler.NewScheduler(1)
		tr = newFakeTransport()
		c = services.NewConnectionCoordinator(sched, tr)
		seen = &notifications{}
		c.Subscribe(seen.listen)
	})

	AfterEach(func() {
		sched.Close()
	})

	Describe("NewConnectionCoordinator", func() {
		It("should start disconnected with sync disabled", func() {
			Expect(c.CurrentState()).To(Equal(models.Disconnected(false)))
			Expect(c.SyncEnabled()).To(BeFalse())
			Expect(c.DeviceID()).To(BeEmpty())
		})
	})

	Describe("OnEvent", func() {
		// Given a fresh coordinator
		// When the transport reports the full connection lifecycle
		// Then the coordinator ends ready and notifies connectivity restored once
		It("should follow the lifecycle to ready", func() {
			c.OnEvent(event(models.ConnectionEventConnecting))
			Expect(c.SyncEnabled()).To(BeFalse())
			c.OnEvent(event(models.ConnectionEventInitializing))
			Expect(c.SyncEnabled()).To(BeFalse())
			c.OnEvent(event(models.ConnectionEventReady))

			Expect(c.CurrentState()).To(Equal(models.Ready()))
			Expect(c.SyncEnabled()).To(BeTrue())
			Expect(c.DeviceID()).To(Equal("dev-1"))
			Expect(seen.Types()).To(Equal([]models.NotificationType{models.NotificationConnectivityRestored}))
			Consistently(tr.Reconnects, 200*time.Millisecond).Should(Equal(0))
		})

		// Given a ready device
		// When the link drops
		// Then exactly one connectivity lost notification and one reconnect follow
		It("should request exactly one reconnect when disconnected", func() {
			c.OnEvent(event(models.ConnectionEventReady))

			c.OnEvent(event(models.ConnectionEventDisconnected))

			Expect(c.CurrentState()).To(Equal(models.Disconnected(false)))
			Expect(c.SyncEnabled()).To(BeFalse())
			Eventually(tr.Reconnects, time.Second).Should(Equal(1))
			Consistently(tr.Reconnects, 200*time.Millisecond).Should(Equal(1))
			Expect(seen.Types()).To(Equal([]models.NotificationType{
				models.NotificationConnectivityRestored,
				models.NotificationConnectivityLost,
			}))
		})

		// Given a ready device
		// When the link starts tearing down
		// Then the coordinator already treats it as lost
		It("should request a reconnect when disconnecting", func() {
			c.OnEvent(event(models.ConnectionEventReady))

			c.OnEvent(event(models.ConnectionEventDisconnecting))

			Expect(c.CurrentState()).To(Equal(models.Disconnecting()))
			Eventually(tr.Reconnects, time.Second).Should(Equal(1))
			Expect(seen.Types()).To(ContainElement(models.NotificationConnectivityLost))
		})

		// Given a device without the required service
		// When the transport reports disconnected(unsupported)
		// Then the reason is kept and a reconnect is still requested
		It("should keep the unsupported reason", func() {
			c.OnEvent(models.ConnectionEvent{Type: models.ConnectionEventDisconnected, DeviceID: "dev-1", Unsupported: true})

			Expect(c.CurrentState()).To(Equal(models.Disconnected(true)))
			Expect(c.CurrentState().Reason).To(Equal(models.DisconnectReasonUnsupported))
			Eventually(tr.Reconnects, time.Second).Should(Equal(1))
		})

		// Given a connecting device
		// When the transport reports ready twice in a row
		// Then the state is ready and no reconnect is requested
		It("should tolerate repeated events", func() {
			c.OnEvent(event(models.ConnectionEventReady))
			c.OnEvent(event(models.ConnectionEventReady))

			Expect(c.SyncEnabled()).To(BeTrue())
			Consistently(tr.Reconnects, 200*time.Millisecond).Should(Equal(0))
		})

		// Given a coordinator
		// When an unknown event arrives
		// Then it is ignored
		It("should ignore unknown events", func() {
			c.OnEvent(event(models.ConnectionEventReady))

			c.OnEvent(models.ConnectionEvent{Type: "bogus"})

			Expect(c.CurrentState()).To(Equal(models.Ready()))
		})

		// Given three drops in a row
		// When each is handled
		// Then one reconnect per drop is requested
		It("should request one reconnect per lost event", func() {
			for range 3 {
				c.OnEvent(event(models.ConnectionEventDisconnected))
			}

			Eventually(tr.Reconnects, time.Second).Should(Equal(3))
			Consistently(tr.Reconnects, 200*time.Millisecond).Should(Equal(3))
		})
	})

	Describe("Connect", func() {
		It("should reject an empty device id", func() {
			err := c.Connect("")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		// Given a coordinator
		// When connecting to a device
		// Then the request reaches the transport and the state is not changed by the request
		It("should forward the request to the transport", func() {
			Expect(c.Connect("AA:BB:CC:DD:EE:FF")).To(Succeed())

			Eventually(tr.Connects, time.Second).Should(Equal([]string{"AA:BB:CC:DD:EE:FF"}))
			Expect(c.DeviceID()).To(Equal("AA:BB:CC:DD:EE:FF"))
			Expect(c.CurrentState()).To(Equal(models.Disconnected(false)))
		})
	})

	Describe("Reconnect", func() {
		It("should do nothing without a known device", func() {
			c.Reconnect()

			Consistently(tr.Reconnects, 200*time.Millisecond).Should(Equal(0))
		})
	})

	Describe("Send", func() {
		It("should hand the payload to the transport", func() {
			Expect(c.Send(context.Background(), []byte("x"))).To(Succeed())
			Expect(tr.Sent()).To(Equal([][]byte{[]byte("x")}))
		})

		It("should wrap transport failures", func() {
			tr.sendErr = errors.New("gatt write failed")

			err := c.Send(context.Background(), []byte("x"))
			Expect(srvErrors.IsTransportError(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("gatt write failed")))
		})

		It("should return when the context is done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			// the worker may win the race against the cancelled context
			err := c.Send(ctx, []byte("x"))
			if err != nil {
				Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			}
		})
	})

	Describe("Run", func() {
		// Given a running event loop
		// When the transport emits events
		// Then the coordinator applies them in order
		It("should drain transport events", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				c.Run(ctx)
			}()

			tr.events <- event(models.ConnectionEventConnecting)
			tr.events <- event(models.ConnectionEventInitializing)
			tr.events <- event(models.ConnectionEventReady)

			Eventually(c.SyncEnabled, time.Second).Should(BeTrue())

			cancel()
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should stop when the event channel closes", func() {
			done := make(chan struct{})
			go func() {
				defer close(done)
				c.Run(context.Background())
			}()

			close(tr.events)
			Eventually(done, time.Second).Should(BeClosed())
		})
	})

	Describe("RememberDevice", func() {
		It("should record devices that become ready", func() {
			rec := &fakeRecorder{}
			c.Subscribe(services.RememberDevice(rec, time.Now))

			c.OnEvent(event(models.ConnectionEventDisconnected))
			c.OnEvent(event(models.ConnectionEventReady))

			Expect(rec.Touched()).To(Equal([]string{"dev-1"}))
		})
	})
})
