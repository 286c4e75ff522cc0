package disasm_test

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	gomock "github.com/golang/mock/gomock"
	"github.com/hashicorp/go-hclog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/artemijrodionov/sim8086/disasm"
	"github.com/artemijrodionov/sim8086/inst"
)

type collector struct {
	lines []disasm.Line
}

func (c *collector) Emit(line disasm.Line) error {
	c.lines = append(c.lines, line)
	return nil
}

func (c *collector) texts() []string {
	texts := make([]string, len(c.lines))
	for i, l := range c.lines {
		texts[i] = l.Text
	}
	return texts
}

func randomMovs(n int, seed int64) []byte {
	rnd := rand.New(rand.NewSource(seed))
	data := make([]byte, 0, n*disasm.InstSize)
	for i := 0; i < n; i++ {
		w := inst.Encode(inst.Inst{
			Opcode:    inst.OpMov,
			Direction: inst.Direction(rnd.Intn(2)),
			Size:      inst.Size(rnd.Intn(2)),
			Mode:      inst.ModeReg,
			Reg:       inst.Register(rnd.Intn(8)),
			RM:        inst.Register(rnd.Intn(8)),
		})
		b := w.Bytes()
		data = append(data, b[0], b[1])
	}
	return data
}

var _ = Describe("Disassembler", func() {
	var (
		ctx    context.Context
		sink   *collector
		logBuf *gbytes.Buffer
		logger hclog.Logger
		opts   disasm.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		sink = &collector{}
		logBuf = gbytes.NewBuffer()
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "disasm",
			Output: logBuf,
			Level:  hclog.Warn,
		})
		opts = disasm.DefaultOptions()
	})

	run := func(data []byte) (disasm.Summary, error) {
		return disasm.New(sink, opts, logger).RunBytes(ctx, data)
	}

	stream := func(data []byte) (disasm.Summary, error) {
		return disasm.New(sink, opts, logger).Run(ctx, bytesReader(data))
	}

	for name, decode := range map[string]func([]byte) (disasm.Summary, error){
		"in memory": func(data []byte) (disasm.Summary, error) { return run(data) },
		"streamed":  func(data []byte) (disasm.Summary, error) { return stream(data) },
	} {
		Context(name, func() {
			It("should decode the reference instruction", func() {
				summary, err := decode([]byte{0x89, 0xd9})
				Expect(err).NotTo(HaveOccurred())
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx"}))
				Expect(summary).To(Equal(disasm.Summary{Bytes: 2, Instructions: 1}))
			})

			It("should decode in input order", func() {
				_, err := decode([]byte{0x89, 0xd9, 0x88, 0xe5, 0x89, 0xda})
				Expect(err).NotTo(HaveOccurred())
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx", "mov ch, ah", "mov dx, bx"}))
				Expect(sink.lines[2].Offset).To(Equal(4))
			})

			It("should warn about a trailing byte", func() {
				summary, err := decode([]byte{0x89, 0xd9, 0x88})
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Instructions).To(Equal(1))
				Expect(summary.TrailingBytes).To(Equal(1))
				Expect(summary.Bytes).To(Equal(3))
				Expect(logBuf).To(gbytes.Say("dropping trailing bytes"))
			})

			It("should reject a trailing byte when asked", func() {
				opts.Trailing = disasm.RejectTrailing
				_, err := decode([]byte{0x89, 0xd9, 0x88})

				var trailing *disasm.TrailingBytesError
				Expect(errors.As(err, &trailing)).To(BeTrue())
				Expect(trailing.Offset).To(Equal(2))
				Expect(trailing.Count).To(Equal(1))
				Expect(err).To(MatchError(disasm.ErrTrailingBytes))
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx"}))
			})

			It("should skip unknown opcodes with a warning", func() {
				summary, err := decode([]byte{0x89, 0xd9, 0xb1, 0x0c, 0x88, 0xc8})
				Expect(err).NotTo(HaveOccurred())
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx", "mov al, cl"}))
				Expect(summary.Skipped).To(Equal(1))
				Expect(logBuf).To(gbytes.Say("skipping instruction"))
			})

			It("should abort on unknown opcodes when asked", func() {
				opts.OnUnknown = disasm.AbortUnknown
				_, err := decode([]byte{0x89, 0xd9, 0xb1, 0x0c, 0x88, 0xc8})

				var offsetErr *disasm.OffsetError
				Expect(errors.As(err, &offsetErr)).To(BeTrue())
				Expect(offsetErr.Offset).To(Equal(2))
				Expect(offsetErr.Word).To(Equal(uint16(0x0cb1)))
				Expect(err).To(MatchError(inst.ErrUnknownOpcode))
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx"}))
			})

			It("should reject memory modes in strict mode", func() {
				opts.StrictMode = true
				summary, err := decode([]byte{0x8b, 0x1e, 0x89, 0xd9})
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Skipped).To(Equal(1))
				Expect(sink.texts()).To(Equal([]string{"mov cx, bx"}))
			})

			It("should stop when the context is cancelled", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				ctx = cancelled

				_, err := decode([]byte{0x89, 0xd9})
				Expect(err).To(MatchError(context.Canceled))
				Expect(sink.lines).To(BeEmpty())
			})
		})
	}

	It("should produce the same output in parallel", func() {
		data := append(randomMovs(20000, 1), 0xb1, 0x0c, 0x89)

		_, err := run(data)
		Expect(err).NotTo(HaveOccurred())
		sequential := sink.texts()

		sink = &collector{}
		opts.Workers = 7
		summary, err := run(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.texts()).To(Equal(sequential))
		Expect(summary.Instructions).To(Equal(20000))
		Expect(summary.Skipped).To(Equal(1))
		Expect(summary.TrailingBytes).To(Equal(1))
	})

	Context("with a mocked sink", func() {
		var (
			mockCtrl *gomock.Controller
			mockSink *MockSink
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mockSink = NewMockSink(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should emit every instruction once, in order", func() {
			gomock.InOrder(
				mockSink.EXPECT().Emit(gomock.Any()).DoAndReturn(func(l disasm.Line) error {
					Expect(l.Text).To(Equal("mov cx, bx"))
					return nil
				}),
				mockSink.EXPECT().Emit(gomock.Any()).DoAndReturn(func(l disasm.Line) error {
					Expect(l.Text).To(Equal("mov ch, ah"))
					Expect(l.Bytes()).To(Equal([2]byte{0x88, 0xe5}))
					return nil
				}),
			)

			_, err := disasm.New(mockSink, opts, logger).RunBytes(ctx, []byte{0x89, 0xd9, 0x88, 0xe5})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should stop at the first sink error", func() {
			mockSink.EXPECT().Emit(gomock.Any()).Return(errors.New("disk full"))

			summary, err := disasm.New(mockSink, opts, logger).RunBytes(ctx, []byte{0x89, 0xd9, 0x88, 0xe5})
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(summary.Instructions).To(Equal(0))
		})
	})

	It("should stop a blocked stream when the context is cancelled", func() {
		pr, pw := io.Pipe()
		DeferCleanup(pw.Close)

		cancelled, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := disasm.New(sink, opts, logger).Run(cancelled, pr)
			done <- err
		}()

		Consistently(done, "50ms").ShouldNot(Receive())
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	Context("with files", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "sim8086")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)
		})

		write := func(name string, data []byte) string {
			path := filepath.Join(dir, name)
			Expect(os.WriteFile(path, data, 0644)).To(Succeed())
			return path
		}

		It("should map and decode a file", func() {
			src, err := disasm.Open(write("listing_37", []byte{0x89, 0xd9}))
			Expect(err).NotTo(HaveOccurred())
			defer src.Close()
			Expect(src.Path()).To(HaveSuffix("listing_37"))

			summary, err := disasm.New(sink, opts, logger).RunBytes(ctx, src.Bytes())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Instructions).To(Equal(1))
			Expect(sink.texts()).To(Equal([]string{"mov cx, bx"}))
		})

		It("should accept an empty file", func() {
			src, err := disasm.Open(write("empty", nil))
			Expect(err).NotTo(HaveOccurred())
			defer src.Close()
			Expect(src.Mapped()).To(BeFalse())

			summary, err := disasm.New(sink, opts, logger).RunBytes(ctx, src.Bytes())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(disasm.Summary{}))
		})

		It("should report a missing file", func() {
			_, err := disasm.Open(filepath.Join(dir, "missing"))
			Expect(err).To(MatchError(os.ErrNotExist))
			Expect(err).To(MatchError(ContainSubstring("failed to open file")))
		})

		It("should report a mapped file that shrinks while decoding", func() {
			path := write("listing_39", randomMovs(32768, 3))
			src, err := disasm.Open(path)
			Expect(err).NotTo(HaveOccurred())
			defer src.Close()
			Expect(src.Mapped()).To(BeTrue())
			Expect(os.Truncate(path, 0)).To(Succeed())

			_, err = disasm.New(sink, opts, logger).RunBytes(ctx, src.Bytes())
			Expect(err).To(MatchError(disasm.ErrSourceChanged))

			opts.Workers = 4
			_, err = disasm.New(sink, opts, logger).RunBytes(ctx, src.Bytes())
			Expect(err).To(MatchError(disasm.ErrSourceChanged))
		})

		It("should keep a copied file intact when it shrinks", func() {
			path := write("listing_40", randomMovs(32768, 4))
			src, err := disasm.Read(path)
			Expect(err).NotTo(HaveOccurred())
			defer src.Close()
			Expect(src.Mapped()).To(BeFalse())
			Expect(os.Truncate(path, 0)).To(Succeed())

			summary, err := disasm.New(sink, opts, logger).RunBytes(ctx, src.Bytes())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Instructions).To(Equal(32768))
		})

		It("should release the source on close", func() {
			src, err := disasm.Open(write("listing_38", randomMovs(8, 2)))
			Expect(err).NotTo(HaveOccurred())
			Expect(src.Bytes()).To(HaveLen(16))
			Expect(src.Close()).To(Succeed())
			Expect(src.Bytes()).To(BeNil())
		})
	})
})
