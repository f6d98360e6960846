package internal

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageMap", func() {
	var m PageMap

	BeforeEach(func() {
		m = NewPageMap()
	})

	It("should start empty", func() {
		_, found := m.Lookup(0)
		Expect(found).To(BeFalse())
		Expect(m.NumMapped()).To(Equal(0))
	})

	It("should map frame zero", func() {
		m.Map(1, 0)

		frame, found := m.Lookup(1)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(uint32(0)))
	})

	It("should map the last page", func() {
		m.Map(0xFFFFF, 0x1FFF_F000)

		frame, found := m.Lookup(0xFFFFF)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(uint32(0x1FFF_F000)))
	})

	It("should overwrite a mapping without counting it twice", func() {
		m.Map(3, 0x1000)
		m.Map(3, 0x2000)

		frame, _ := m.Lookup(3)
		Expect(frame).To(Equal(uint32(0x2000)))
		Expect(m.NumMapped()).To(Equal(1))
	})

	It("should unmap", func() {
		m.Map(3, 0x1000)
		m.Unmap(3)
		m.Unmap(3)

		_, found := m.Lookup(3)
		Expect(found).To(BeFalse())
		Expect(m.NumMapped()).To(Equal(0))
	})

	It("should reset", func() {
		m.Map(1, 0x1000)
		m.Map(2, 0x2000)

		m.Reset()

		_, found := m.Lookup(1)
		Expect(found).To(BeFalse())
		Expect(m.NumMapped()).To(Equal(0))
	})

	It("should panic on an unaligned frame", func() {
		Expect(func() { m.Map(1, 0x1001) }).To(Panic())
	})
})
