package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blinky-companion/sync-agent/internal/store"
	"github.com/blinky-companion/sync-agent/internal/store/migrations"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

var _ = Describe("DeviceStore", func() {
	var (
		ctx context.Context
		db  *sql.DB
		st  *store.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		st = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	// Given no device was ever reached
	// When asking for the last device
	// Then a not found error is returned
	It("should return not found when empty", func() {
		_, err := st.Device().Last(ctx)
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	// Given two devices reached at different times
	// When asking for the last device
	// Then the most recent one is returned
	It("should return the most recently reached device", func() {
		t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		Expect(st.Device().Touch(ctx, "AA:AA:AA:AA:AA:AA", t0)).To(Succeed())
		Expect(st.Device().Touch(ctx, "BB:BB:BB:BB:BB:BB", t0.Add(time.Minute))).To(Succeed())

		d, err := st.Device().Last(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.ID).To(Equal("BB:BB:BB:BB:BB:BB"))
	})

	// Given a device touched twice
	// When asking for the last device
	// Then the timestamp is the latest touch
	It("should update the timestamp of a known device", func() {
		t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		Expect(st.Device().Touch(ctx, "AA:AA:AA:AA:AA:AA", t0)).To(Succeed())
		Expect(st.Device().Touch(ctx, "BB:BB:BB:BB:BB:BB", t0.Add(time.Minute))).To(Succeed())
		Expect(st.Device().Touch(ctx, "AA:AA:AA:AA:AA:AA", t0.Add(time.Hour))).To(Succeed())

		d, err := st.Device().Last(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.ID).To(Equal("AA:AA:AA:AA:AA:AA"))
		Expect(d.LastConnectedAt.UTC()).To(Equal(t0.Add(time.Hour)))
	})
})
