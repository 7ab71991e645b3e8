package ble

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	// Given an empty configuration
	// When defaults are applied
	// Then the Nordic UART service and RX characteristic are used
	It("should default to the Nordic UART service", func() {
		cfg := Config{}.withDefaults()

		Expect(cfg.ServiceUUID).To(Equal(NordicUARTService))
		Expect(cfg.CharacteristicUUID).To(Equal(NordicUARTRX))
		Expect(cfg.ChunkSize).To(Equal(DefaultChunkSize))
	})

	It("should keep explicit values", func() {
		cfg := Config{ServiceUUID: "a", CharacteristicUUID: "b", ChunkSize: 180}.withDefaults()

		Expect(cfg).To(Equal(Config{ServiceUUID: "a", CharacteristicUUID: "b", ChunkSize: 180}))
	})
})

var _ = Describe("chunks", func() {
	// Given a payload longer than the chunk size
	// When it is split
	// Then every chunk but the last is full and joined they equal the input
	It("should split a payload into MTU sized writes", func() {
		data := []byte(`{"ledState":1,"currentTime":1700000000,"alarmHour":7,"alarmMinute":30,"ssid":"home","password":"pw"}`)

		parts := chunks(data, 20)

		Expect(parts).To(HaveLen((len(data) + 19) / 20))
		var joined []byte
		for i, p := range parts {
			if i < len(parts)-1 {
				Expect(p).To(HaveLen(20))
			}
			joined = append(joined, p...)
		}
		Expect(joined).To(Equal(data))
	})

	It("should return no chunks for an empty payload", func() {
		Expect(chunks(nil, 20)).To(BeEmpty())
	})

	It("should fall back to the default size", func() {
		parts := chunks(make([]byte, 45), 0)
		Expect(parts).To(HaveLen(3))
	})
})
