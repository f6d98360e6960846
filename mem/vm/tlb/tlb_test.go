package tlb

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

func evenOnly(h Half) Entry {
	return Entry{Even: h}
}

var _ = ginkgo.Describe("TLB", func() {
	var (
		mockCtrl    *gomock.Controller
		faultRaiser *MockFaultRaiser
		tlb         *Comp
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		faultRaiser = NewMockFaultRaiser(mockCtrl)
		tlb = MakeBuilder().
			WithFaultRaiser(faultRaiser).
			Build("TLB")
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	expectMiss := func(vAddr uint32, kind vm.AccessKind) {
		faultRaiser.EXPECT().RaiseTranslationFault(vAddr, kind)

		pAddr, ok := tlb.Translate(vAddr, kind)

		Expect(ok).To(BeFalse())
		Expect(pAddr).To(Equal(uint32(0)))
	}

	expectHit := func(vAddr uint32, kind vm.AccessKind, want uint32) {
		pAddr, ok := tlb.Translate(vAddr, kind)

		Expect(ok).To(BeTrue())
		Expect(pAddr).To(Equal(want))
	}

	ginkgo.It("should start empty", func() {
		Expect(tlb.Name()).To(Equal("TLB"))
		Expect(tlb.Entries()).To(Equal([vm.NumTLBEntries]Entry{}))

		read, write := tlb.NumMapped()
		Expect(read).To(Equal(0))
		Expect(write).To(Equal(0))

		expectMiss(0x0, vm.Read)
	})

	ginkgo.Context("entry store", func() {
		ginkgo.It("should get and set entries", func() {
			e := evenOnly(Half{Valid: true, Start: 0x1000, End: 0x2000})

			tlb.SetEntry(31, e)

			Expect(tlb.Entry(31)).To(Equal(e))
			Expect(tlb.Entries()[31]).To(Equal(e))
		})

		ginkgo.It("should not map anything on SetEntry alone", func() {
			tlb.SetEntry(0, evenOnly(Half{
				Valid: true, Start: 0x1000, End: 0x2000, Phys: 0x1000,
			}))

			expectMiss(0x1000, vm.Read)
		})

		ginkgo.DescribeTable("should panic on an index out of range",
			func(index int) {
				Expect(func() { tlb.Entry(index) }).To(Panic())
				Expect(func() { tlb.SetEntry(index, Entry{}) }).To(Panic())
				Expect(func() { tlb.Remove(index) }).To(Panic())
				Expect(func() { tlb.Install(index) }).To(Panic())
			},
			ginkgo.Entry("negative", -1),
			ginkgo.Entry("one past the end", 32),
			ginkgo.Entry("far away", 1000),
		)
	})

	ginkgo.Context("dirty entry", func() {
		ginkgo.BeforeEach(func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x0000_1000, End: 0x0000_3000, Phys: 0x0001_0000,
			}))
		})

		ginkgo.It("should translate reads and writes", func() {
			expectHit(0x0000_1000, vm.Read, 0x0001_0000)
			expectHit(0x0000_1FFF, vm.Read, 0x0001_0FFF)
			expectHit(0x0000_2000, vm.Write, 0x0001_1000)
			expectHit(0x0000_2ABC, vm.Read, 0x0001_1ABC)
		})

		ginkgo.It("should exclude the end of the range", func() {
			expectMiss(0x0000_3000, vm.Read)
			expectMiss(0x0000_0FFF, vm.Write)
		})

		ginkgo.It("should count mapped pages", func() {
			read, write := tlb.NumMapped()
			Expect(read).To(Equal(2))
			Expect(write).To(Equal(2))
		})

		ginkgo.It("should unmap on Remove", func() {
			tlb.Remove(0)

			expectMiss(0x0000_1000, vm.Read)
			expectMiss(0x0000_2000, vm.Write)
		})

		ginkgo.It("should clear everything on Reset", func() {
			tlb.Reset()

			Expect(tlb.Entry(0)).To(Equal(Entry{}))
			expectMiss(0x0000_1000, vm.Read)
		})
	})

	ginkgo.Context("clean entry", func() {
		ginkgo.BeforeEach(func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true,
				Start: 0x0000_1000, End: 0x0000_3000, Phys: 0x0001_0000,
			}))
		})

		ginkgo.It("should only translate reads", func() {
			expectHit(0x0000_1000, vm.Read, 0x0001_0000)
			expectMiss(0x0000_1000, vm.Write)
		})
	})

	ginkgo.It("should translate every address of an accepted half", func() {
		h := Half{
			Valid: true, Dirty: true,
			Start: 0x0040_0000, End: 0x0041_0000, Phys: 0x0020_0000,
		}
		tlb.WriteEntry(5, Entry{Odd: h})

		for v := h.Start; v < h.End; v += 0x123 {
			want := h.Phys + (v - h.Start)
			expectHit(v, vm.Read, want)
			expectHit(v, vm.Write, want)
		}
	})

	ginkgo.It("should round an unaligned physical base up to a page", func() {
		tlb.WriteEntry(0, evenOnly(Half{
			Valid: true, Start: 0x1000, End: 0x2000, Phys: 0x0001_0001,
		}))

		expectHit(0x1234, vm.Read, 0x0001_1234)
	})

	ginkgo.It("should install both halves independently", func() {
		tlb.WriteEntry(2, Entry{
			Even: Half{Valid: true, Start: 0x2000, End: 0x3000, Phys: 0x5000},
			Odd: Half{
				Valid: true, Dirty: true,
				Start: 0x3000, End: 0x4000, Phys: 0x9000,
			},
		})

		expectHit(0x2010, vm.Read, 0x5010)
		expectMiss(0x2010, vm.Write)
		expectHit(0x3010, vm.Write, 0x9010)
	})

	ginkgo.It("should skip invalid halves", func() {
		tlb.WriteEntry(2, Entry{
			Even: Half{Start: 0x2000, End: 0x3000, Phys: 0x5000},
		})

		expectMiss(0x2000, vm.Read)
	})

	ginkgo.It("should map pages up to the top of the address space", func() {
		tlb.WriteEntry(0, evenOnly(Half{
			Valid: true, Start: 0xFFFF_E000, End: 0xFFFF_FFFF, Phys: 0x1000,
		}))

		expectHit(0xFFFF_E00C, vm.Read, 0x100C)
		expectHit(0xFFFF_F00C, vm.Read, 0x200C)
	})

	ginkgo.Context("rejection", func() {
		ginkgo.DescribeTable("should leave rejected halves unmapped",
			func(h Half) {
				h.Valid = true
				h.Dirty = true
				tlb.WriteEntry(7, evenOnly(h))

				read, write := tlb.NumMapped()
				Expect(read).To(Equal(0))
				Expect(write).To(Equal(0))

				expectMiss(h.Start, vm.Read)
				expectMiss(h.Start, vm.Write)
			},
			ginkgo.Entry("empty range",
				Half{Start: 0x2000, End: 0x2000, Phys: 0x1000}),
			ginkgo.Entry("inverted range",
				Half{Start: 0x3000, End: 0x2000, Phys: 0x1000}),
			ginkgo.Entry("inside the kernel window",
				Half{Start: 0x8000_0000, End: 0x8000_2000, Phys: 0x1000}),
			ginkgo.Entry("at the end of the kernel window",
				Half{Start: 0xBFFF_F000, End: 0xC000_0000, Phys: 0x1000}),
			ginkgo.Entry("beyond the physical ceiling",
				Half{Start: 0x1000, End: 0x3000, Phys: 0x2000_0000}),
		)

		ginkgo.It("should accept a range crossing into the kernel window", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Start: 0x7FFF_F000, End: 0x8000_1000, Phys: 0,
			}))

			expectHit(0x7FFF_F004, vm.Read, 0x0004)
			expectHit(0x8000_0004, vm.Read, 0x1004)
		})

		ginkgo.It("should accept a mapping to physical page zero", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Start: 0x1000, End: 0x2000, Phys: 0,
			}))

			expectHit(0x1008, vm.Read, 0x0008)
		})

		ginkgo.It("should accept the last page below the ceiling", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Start: 0x1000, End: 0x2000, Phys: 0x1FFF_F000,
			}))

			expectHit(0x1008, vm.Read, 0x1FFF_F008)
		})
	})

	ginkgo.Context("rewriting entries", func() {
		ginkgo.It("should drop the old range of an entry", func() {
			tlb.WriteEntry(3, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x3000, Phys: 0x1_0000,
			}))
			tlb.WriteEntry(3, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x8000, End: 0x9000, Phys: 0x2_0000,
			}))

			expectMiss(0x1000, vm.Read)
			expectMiss(0x2000, vm.Write)
			expectHit(0x8000, vm.Read, 0x2_0000)
		})

		ginkgo.It("should keep stale pages if Remove comes after the change", func() {
			tlb.WriteEntry(3, evenOnly(Half{
				Valid: true, Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
			}))

			tlb.SetEntry(3, evenOnly(Half{
				Valid: true, Start: 0x8000, End: 0x9000, Phys: 0x2_0000,
			}))
			tlb.Remove(3)
			tlb.Install(3)

			expectHit(0x1000, vm.Read, 0x1_0000)
		})

		ginkgo.It("should do nothing when removing an invalid entry", func() {
			tlb.WriteEntry(1, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
			}))
			tlb.SetEntry(4, evenOnly(Half{
				Start: 0x1000, End: 0x2000, Phys: 0x3_0000,
			}))

			hook := NewMockHook(mockCtrl)
			tlb.AcceptHook(hook)

			tlb.Remove(4)
			tlb.Remove(4)

			expectHit(0x1000, vm.Write, 0x1_0000)
		})
	})

	ginkgo.Context("overlapping entries", func() {
		ginkgo.It("should let the last install win", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
			}))
			tlb.WriteEntry(1, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x2000, Phys: 0x2_0000,
			}))

			expectHit(0x1000, vm.Read, 0x2_0000)
			expectHit(0x1000, vm.Write, 0x2_0000)
		})

		ginkgo.It("should make a page read-only when a clean entry covers it", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
			}))
			tlb.WriteEntry(1, evenOnly(Half{
				Valid: true,
				Start: 0x1000, End: 0x2000, Phys: 0x2_0000,
			}))

			expectHit(0x1000, vm.Read, 0x2_0000)
			expectMiss(0x1000, vm.Write)
		})

		ginkgo.It("should drop write mappings with the read mapping", func() {
			tlb.WriteEntry(0, evenOnly(Half{
				Valid: true, Dirty: true,
				Start: 0x1000, End: 0x3000, Phys: 0x1_0000,
			}))
			tlb.WriteEntry(1, evenOnly(Half{
				Valid: true,
				Start: 0x2000, End: 0x3000, Phys: 0x2_0000,
			}))

			tlb.Remove(1)

			expectMiss(0x2000, vm.Read)
			expectMiss(0x2000, vm.Write)
			expectHit(0x1000, vm.Write, 0x1_0000)
		})

		ginkgo.It("should keep write mappings backed by read mappings", func() {
			for i := 0; i < vm.NumTLBEntries; i++ {
				tlb.WriteEntry(i, evenOnly(Half{
					Valid: true,
					Dirty: i%3 != 0,
					Start: uint32(i%5) * 0x1000,
					End:   uint32(i%5)*0x1000 + uint32(i%4+1)*0x1000,
					Phys:  uint32(i) * 0x10_0000,
				}))
			}

			for i := 0; i < vm.NumTLBEntries; i += 2 {
				tlb.Remove(i)
			}

			for page := uint32(0); page < 16; page++ {
				vAddr := page << vm.Log2PageSize
				w, wOK := tlb.Lookup(vAddr, vm.Write)
				if !wOK {
					continue
				}

				r, rOK := tlb.Lookup(vAddr, vm.Read)
				Expect(rOK).To(BeTrue())
				Expect(r).To(Equal(w))
			}
		})
	})

	ginkgo.Context("hooks", func() {
		var hook *MockHook

		ginkgo.BeforeEach(func() {
			hook = NewMockHook(mockCtrl)
			tlb.AcceptHook(hook)
		})

		ginkgo.It("should report installed and removed halves", func() {
			e := Entry{
				Even: Half{
					Valid: true, Dirty: true,
					Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
				},
				Odd: Half{
					Valid: true,
					Start: 0x8000_0000, End: 0x8000_1000, Phys: 0x1_0000,
				},
			}

			gomock.InOrder(
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: tlb,
					Pos:    vm.HookPosTLBMap,
					Item: vm.TLBEvent{
						Index: 9, Half: vm.Even,
						Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
						Dirty: true,
					},
				}),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: tlb,
					Pos:    vm.HookPosTLBReject,
					Item: vm.TLBEvent{
						Index: 9, Half: vm.Odd,
						Start: 0x8000_0000, End: 0x8000_1000, Phys: 0x1_0000,
						Reason: vm.RejectKernelWindow,
					},
				}),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: tlb,
					Pos:    vm.HookPosTLBUnmap,
					Item: vm.TLBEvent{
						Index: 9, Half: vm.Even,
						Start: 0x1000, End: 0x2000, Phys: 0x1_0000,
						Dirty: true,
					},
				}),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: tlb,
					Pos:    vm.HookPosTLBUnmap,
					Item: vm.TLBEvent{
						Index: 9, Half: vm.Odd,
						Start: 0x8000_0000, End: 0x8000_1000, Phys: 0x1_0000,
					},
				}),
			)

			tlb.WriteEntry(9, e)
			tlb.Remove(9)
		})

		ginkgo.It("should report misses before raising the fault", func() {
			gomock.InOrder(
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: tlb,
					Pos:    vm.HookPosTranslationMiss,
					Item: vm.TranslationMiss{
						VAddr: 0x4000, Kind: vm.Write,
					},
				}),
				faultRaiser.EXPECT().RaiseTranslationFault(uint32(0x4000), vm.Write),
			)

			tlb.Translate(0x4000, vm.Write)
		})

		ginkgo.It("should report resets", func() {
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: tlb,
				Pos:    vm.HookPosTLBReset,
			})

			tlb.Reset()
		})

		ginkgo.It("should not report lookups", func() {
			_, ok := tlb.Lookup(0x4000, vm.Read)

			Expect(ok).To(BeFalse())
		})
	})

	ginkgo.It("should let the fault raiser interrupt the translation", func() {
		faultRaiser.EXPECT().
			RaiseTranslationFault(uint32(0x5000), vm.Read).
			Do(func(uint32, vm.AccessKind) { panic("exception") })

		Expect(func() { tlb.Translate(0x5000, vm.Read) }).
			To(PanicWith("exception"))
	})
})

var _ = ginkgo.Describe("Builder", func() {
	ginkgo.It("should refuse to build without a fault raiser", func() {
		Expect(func() { MakeBuilder().Build("TLB") }).To(Panic())
	})

	ginkgo.It("should register hooks", func() {
		mockCtrl := gomock.NewController(ginkgo.GinkgoT())
		hook := NewMockHook(mockCtrl)

		hook.EXPECT().Func(gomock.Any())

		tlb := MakeBuilder().
			WithFaultRaiser(NewMockFaultRaiser(mockCtrl)).
			WithHook(hook).
			Build("TLB")

		Expect(tlb.Hooks()).To(ConsistOf(hook))
	})

	ginkgo.It("should not share hooks between builders", func() {
		base := MakeBuilder().WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))
		a := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))
		b := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))

		Expect(a.hooks).To(HaveLen(2))
		Expect(b.hooks).To(HaveLen(2))
	})
})
