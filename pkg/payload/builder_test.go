package payload_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
	"github.com/blinky-companion/sync-agent/pkg/payload"
)

var _ = Describe("Builder", func() {
	var (
		builder *payload.Builder
		now     time.Time
	)

	BeforeEach(func() {
		builder = payload.NewBuilder(time.UTC)
		now = time.Date(2026, 3, 1, 12, 30, 15, 999_000_000, time.UTC)
	})

	Describe("Build", func() {
		It("should accept the upper alarm bounds", func() {
			p, err := builder.Build(true, now, 23, 59, "home", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.AlarmHour).To(Equal(uint8(23)))
			Expect(p.AlarmMinute).To(Equal(uint8(59)))
		})

		It("should reject alarm hour 24", func() {
			_, err := builder.Build(true, now, 24, 0, "home", "pw")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("alarmHour"))
		})

		It("should reject alarm minute 60", func() {
			_, err := builder.Build(true, now, 0, 60, "home", "pw")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("alarmMinute"))
		})

		It("should reject negative alarm values", func() {
			_, err := builder.Build(true, now, -1, 0, "home", "pw")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should reject an empty ssid", func() {
			_, err := builder.Build(true, now, 7, 30, "", "pw")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("ssid"))
		})

		It("should accept an empty password", func() {
			p, err := builder.Build(false, now, 7, 30, "open-cafe", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Password).To(BeEmpty())
		})

		It("should truncate to whole seconds in UTC", func() {
			p, err := builder.Build(false, now, 7, 30, "home", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.CurrentTimeSeconds).To(Equal(uint64(now.Unix())))
		})

		// Given a zone with daylight saving
		// When the instant falls in summer time
		// Then both the standard and the daylight offset are applied
		It("should apply the zone offset in effect at the instant", func() {
			berlin, err := time.LoadLocation("Europe/Berlin")
			Expect(err).NotTo(HaveOccurred())
			b := payload.NewBuilder(berlin)

			summer := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
			p, err := b.Build(false, summer, 7, 30, "home", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.CurrentTimeSeconds).To(Equal(uint64(summer.Unix() + 2*3600)))

			winter := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
			p, err = b.Build(false, winter, 7, 30, "home", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.CurrentTimeSeconds).To(Equal(uint64(winter.Unix() + 3600)))
		})

		It("should reject an instant before the epoch", func() {
			_, err := builder.Build(false, time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC), 7, 30, "home", "pw")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("Serialize", func() {
		It("should render the fields in wire order", func() {
			data, err := payload.Serialize(models.SyncPayload{
				LedOn:              true,
				CurrentTimeSeconds: 1700000000,
				AlarmHour:          7,
				AlarmMinute:        30,
				SSID:               "home",
				Password:           "p<w>&",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"ledState":1,"currentTime":1700000000,"alarmHour":7,"alarmMinute":30,"ssid":"home","password":"p<w>&"}`))
		})

		It("should encode a switched-off LED as 0", func() {
			data, err := payload.Serialize(models.SyncPayload{SSID: "home"})
			Expect(err).NotTo(HaveOccurred())

			var fields map[string]any
			Expect(json.Unmarshal(data, &fields)).To(Succeed())
			Expect(fields["ledState"]).To(BeEquivalentTo(0))
		})

		// Given a built payload
		// When it is serialized and parsed back
		// Then every field equals the input
		It("should round-trip through Parse", func() {
			built, err := builder.Build(true, now, 23, 59, "semi;colon", "pa\"ss")
			Expect(err).NotTo(HaveOccurred())

			data, err := payload.Serialize(built)
			Expect(err).NotTo(HaveOccurred())

			parsed, err := builder.Parse(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(built))
			Expect(parsed.LedOn).To(BeTrue())
		})
	})

	Describe("Parse", func() {
		It("should reject an out-of-range ledState", func() {
			_, err := builder.Parse([]byte(`{"ledState":2,"currentTime":1,"alarmHour":1,"alarmMinute":1,"ssid":"a","password":""}`))
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should reject unknown fields", func() {
			_, err := builder.Parse([]byte(`{"ledState":1,"extra":true}`))
			Expect(err).To(HaveOccurred())
		})
	})
})
