package render_test

import (
	"context"
	"errors"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lorenz/internal/config"
	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/integrators"
	"github.com/san-kum/lorenz/internal/physics"
	"github.com/san-kum/lorenz/internal/render"
)

func trajectories(end float64) (*dynamo.Trajectory, *dynamo.Trajectory) {
	sys := physics.NewLorenz()
	h := dynamo.Horizon{Start: 0, End: end, Dt: 0.02}
	base, err := integrators.Integrate(sys, dynamo.State{12, 12, 12}, h)
	Expect(err).NotTo(HaveOccurred())
	pert, err := integrators.Integrate(sys, dynamo.State{12.001, 12, 12}, h)
	Expect(err).NotTo(HaveOccurred())
	return base, pert
}

func smallOptions(dir string) render.Options {
	opts := render.FromConfig(config.DefaultConfig())
	opts.Dir = dir
	opts.Width, opts.Height = 160, 120
	opts.Workers = 3
	return opts
}

var _ = Describe("FrameIndices", func() {
	It("strides from zero", func() {
		Expect(render.FrameIndices(10, 3)).To(Equal([]int{0, 3, 6, 9}))
		Expect(render.FrameIndices(3, 1)).To(Equal([]int{0, 1, 2}))
	})

	It("treats a stride below one as one", func() {
		Expect(render.FrameIndices(2, 0)).To(Equal([]int{0, 1}))
	})

	It("is empty for empty trajectories", func() {
		Expect(render.FrameIndices(0, 1)).To(BeEmpty())
	})
})

var _ = Describe("Options", func() {
	It("pads frame numbers to five digits", func() {
		opts := render.Options{Dir: "images/chaos", Prefix: "lorenz"}
		Expect(opts.FramePath(42)).To(Equal(filepath.Join("images/chaos", "lorenz_00042.png")))
		Expect(opts.FramePath(2499)).To(HaveSuffix("lorenz_02499.png"))
	})

	It("takes the reference look from the default config", func() {
		opts := render.FromConfig(config.DefaultConfig())
		Expect(opts.Width).To(Equal(640))
		Expect(opts.Height).To(Equal(480))
		Expect(opts.Elevation).To(Equal(30.0))
		Expect(opts.Margin).To(Equal(5.0))
		Expect(opts.BaseColor).To(Equal("#DAA520"))
		Expect(opts.PertColor).To(Equal("#1E90FF"))
	})

	DescribeTable("New rejects bad options",
		func(mutate func(*render.Options)) {
			opts := smallOptions(".")
			mutate(&opts)
			_, err := render.New(opts)
			Expect(err).To(MatchError(render.ErrInvalidOptions))
		},
		Entry("zero width", func(o *render.Options) { o.Width = 0 }),
		Entry("empty prefix", func(o *render.Options) { o.Prefix = "" }),
		Entry("bad base color", func(o *render.Options) { o.BaseColor = "goldenrod" }),
		Entry("bad perturbed color", func(o *render.Options) { o.PertColor = "#12" }),
	)
})

var _ = Describe("Renderer", func() {
	var (
		dir        string
		base, pert *dynamo.Trajectory
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		base, pert = trajectories(0.2)
	})

	It("writes one decodable PNG per selected sample", func() {
		opts := smallOptions(dir)
		opts.Every = 2

		var (
			mu    sync.Mutex
			calls int
			last  int
			total int
		)
		opts.OnFrame = func(done, n int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			last = max(last, done)
			total = n
		}

		r, err := render.New(opts)
		Expect(err).NotTo(HaveOccurred())

		report, err := r.Render(context.Background(), base, pert, 28)
		Expect(err).NotTo(HaveOccurred())

		want := render.FrameIndices(base.Len(), 2)
		Expect(report.Frames).To(Equal(len(want)))
		Expect(calls).To(Equal(len(want)))
		Expect(last).To(Equal(len(want)))
		Expect(total).To(Equal(len(want)))
		Expect(report.First).To(Equal(opts.FramePath(0)))

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(len(want)))

		for _, i := range want {
			Expect(opts.FramePath(i)).To(BeAnExistingFile())
		}
		Expect(opts.FramePath(1)).NotTo(BeAnExistingFile())

		f, err := os.Open(opts.FramePath(0))
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		img, err := png.Decode(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(160))
		Expect(img.Bounds().Dy()).To(Equal(120))
	})

	It("assembles a half-size GIF from every n-th frame", func() {
		opts := smallOptions(dir)
		opts.GIF = filepath.Join(dir, "lorenz.gif")
		opts.GIFEvery = 3

		r, err := render.New(opts)
		Expect(err).NotTo(HaveOccurred())
		report, err := r.Render(context.Background(), base, pert, 28)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.GIF).To(Equal(opts.GIF))

		f, err := os.Open(opts.GIF)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		anim, err := gif.DecodeAll(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(anim.Image).To(HaveLen((base.Len() + 2) / 3))
		Expect(anim.Image[0].Bounds().Dx()).To(Equal(80))
	})

	It("does nothing for empty trajectories", func() {
		r, err := render.New(smallOptions(dir))
		Expect(err).NotTo(HaveOccurred())

		report, err := r.Render(context.Background(), dynamo.NewTrajectory(0), dynamo.NewTrajectory(0), 28)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Frames).To(BeZero())

		entries, _ := os.ReadDir(dir)
		Expect(entries).To(BeEmpty())
	})

	It("requires the output directory to exist", func() {
		r, err := render.New(smallOptions(filepath.Join(dir, "missing")))
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Render(context.Background(), base, pert, 28)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("rejects trajectories on different grids", func() {
		r, err := render.New(smallOptions(dir))
		Expect(err).NotTo(HaveOccurred())

		short, _ := trajectories(0.1)
		_, err = r.Render(context.Background(), base, short, 28)
		Expect(err).To(MatchError(dynamo.ErrLengthMismatch))
	})

	It("reports the failing frame", func() {
		opts := smallOptions(dir)
		opts.Prefix = filepath.Join("no-such-subdir", "lorenz")
		r, err := render.New(opts)
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Render(context.Background(), base, pert, 28)
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("stops when the context is cancelled", func() {
		r, err := render.New(smallOptions(dir))
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = r.Render(ctx, base, pert, 28)
		Expect(err).To(MatchError(context.Canceled))

		entries, _ := os.ReadDir(dir)
		Expect(entries).To(BeEmpty())
	})
})
