package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/insts"
	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/latency"
)

var _ = Describe("Table", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	It("should use 1 cycle for ALU ops", func() {
		Expect(table.ForOp(insts.OpADD)).To(Equal(uint64(1)))
		Expect(table.ForOp(insts.OpADDI)).To(Equal(uint64(1)))
		Expect(table.ForOp(insts.OpSLT)).To(Equal(uint64(1)))
	})

	It("should use 2 cycles for loads", func() {
		Expect(table.ForOp(insts.OpLW)).To(Equal(uint64(2)))
	})

	It("should use 1 cycle for stores and branches", func() {
		Expect(table.ForOp(insts.OpSW)).To(Equal(uint64(1)))
		Expect(table.ForOp(insts.OpBEQ)).To(Equal(uint64(1)))
		Expect(table.ForOp(insts.OpBNE)).To(Equal(uint64(1)))
	})

	It("should honour a custom configuration", func() {
		config := latency.DefaultTimingConfig()
		config.LoadLatency = 5
		table = latency.NewTableWithConfig(config)
		Expect(table.ForOp(insts.OpLW)).To(Equal(uint64(5)))
	})
})

var _ = Describe("TimingConfig", func() {
	It("should validate defaults", func() {
		Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
	})

	It("should reject a zero latency", func() {
		config := latency.DefaultTimingConfig()
		config.LoadLatency = 0
		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should round-trip through a JSON file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "timing.json")

		config := latency.DefaultTimingConfig()
		config.ALULatency = 3
		Expect(config.SaveConfig(path)).To(Succeed())

		loaded, err := latency.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.ALULatency).To(Equal(uint64(3)))
		Expect(loaded.LoadLatency).To(Equal(uint64(2)))
	})

	It("should keep defaults for fields missing from the file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"load_latency": 7}`), 0644)).To(Succeed())

		loaded, err := latency.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.LoadLatency).To(Equal(uint64(7)))
		Expect(loaded.ALULatency).To(Equal(uint64(1)))
	})

	It("should fail on a missing file", func() {
		_, err := latency.LoadConfig("does-not-exist.json")
		Expect(err).To(HaveOccurred())
	})
})
