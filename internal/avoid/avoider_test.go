package avoid_test

import (
	"errors"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/san-kum/navcore/internal/avoid"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/vessel"
)

type fakeRef struct{ frame geom.Frame }

func (r *fakeRef) Frame() geom.Frame          { return r.frame }
func (r *fakeRef) LinearVelocity() r3.Vector  { return r3.Vector{} }
func (r *fakeRef) AngularVelocity() r3.Vector { return r3.Vector{} }
func (r *fakeRef) Gravity() r3.Vector         { return r3.Vector{} }
func (r *fakeRef) Mass() float64              { return 1000 }
func (r *fakeRef) CenterOfMass() r3.Vector    { return r.frame.Position }
func (r *fakeRef) BoundingRadius() float64    { return 4 }

type fakeSensor struct {
	id     string
	pos    r3.Vector
	active bool
}

func (s *fakeSensor) ID() string          { return s.id }
func (s *fakeSensor) Position() r3.Vector { return s.pos }
func (s *fakeSensor) Active() bool        { return s.active }

type fakeProbe struct {
	ref     *fakeRef
	enabled bool
	reaches []float64
	hitAt   float64
}

func (p *fakeProbe) Frame() geom.Frame       { return p.ref.frame }
func (p *fakeProbe) SetEnabled(enabled bool) { p.enabled = enabled }
func (p *fakeProbe) Range(_ r3.Vector, max float64) (float64, bool) {
	p.reaches = append(p.reaches, max)
	if p.hitAt > 0 && p.hitAt <= max {
		return p.hitAt, true
	}
	return 0, false
}

type fakeMover struct {
	ticks  int
	count  int
	speeds []float64
	stops  int
}

func (m *fakeMover) NavigateTo(_ r3.Vector, speed float64) bool {
	m.speeds = append(m.speeds, speed)
	m.count++
	if m.count >= m.ticks {
		m.count = 0
		return true
	}
	return false
}

func (m *fakeMover) Stop() { m.stops++; m.count = 0 }

// fakeOrienter aligns at once and records each distinct target in order.
type fakeOrienter struct {
	targets []r3.Vector
	stops   int
}

func (o *fakeOrienter) AlignWithTarget(p r3.Vector) bool {
	if n := len(o.targets); n == 0 || o.targets[n-1] != p {
		o.targets = append(o.targets, p)
	}
	return true
}

func (o *fakeOrienter) Stop() { o.stops++ }

var _ = Describe("Avoider", func() {
	var (
		ref      *fakeRef
		tr, tl   *fakeSensor
		br, bl   *fakeSensor
		sensors  []vessel.ProximitySensor
		probe    *fakeProbe
		mover    *fakeMover
		orienter *fakeOrienter
		av       *avoid.Avoider
		goal     r3.Vector
	)

	runUntilIdle := func(limit int) bool {
		for i := 0; i < limit; i++ {
			av.Execute()
			if av.State() == "Idle" {
				return true
			}
		}
		return false
	}

	BeforeEach(func() {
		// identity frame: forward -Z, right +X, up +Y
		ref = &fakeRef{frame: geom.Identity(r3.Vector{})}
		tr = &fakeSensor{id: "tr", pos: r3.Vector{X: 1, Y: 1, Z: -2}}
		tl = &fakeSensor{id: "tl", pos: r3.Vector{X: -1, Y: 1, Z: -2}}
		br = &fakeSensor{id: "br", pos: r3.Vector{X: 1, Y: -1, Z: -2}}
		bl = &fakeSensor{id: "bl", pos: r3.Vector{X: -1, Y: -1, Z: -2}}
		rear := &fakeSensor{id: "rear", pos: r3.Vector{X: 1, Y: 1, Z: 3}}
		sensors = []vessel.ProximitySensor{tr, rear, tl, br, bl}
		probe = &fakeProbe{ref: ref}
		mover = &fakeMover{ticks: 3}
		orienter = &fakeOrienter{}
		goal = r3.Vector{Z: -50}

		var err error
		av, err = avoid.New(ref, mover, orienter, sensors, probe, avoid.DefaultConfig(), zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
		mover.stops, orienter.stops = 0, 0
	})

	It("binds one forward sensor per corner", func() {
		Expect(av.Sensor(avoid.TopRight).ID()).To(Equal("tr"))
		Expect(av.Sensor(avoid.TopLeft).ID()).To(Equal("tl"))
		Expect(av.Sensor(avoid.BottomRight).ID()).To(Equal("br"))
		Expect(av.Sensor(avoid.BottomLeft).ID()).To(Equal("bl"))
		Expect(av.State()).To(Equal("Idle"))
		Expect(av.Status()).To(Equal(avoid.StatusIdle))
	})

	It("reports every missing corner and the probe", func() {
		_, err := avoid.New(ref, mover, orienter, []vessel.ProximitySensor{tr, tl, br, &fakeSensor{pos: r3.Vector{Z: 5}}}, nil, avoid.DefaultConfig(), zerolog.Nop())
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, vessel.ErrNoSensors)).To(BeTrue())
		Expect(errors.Is(err, vessel.ErrNoProbe)).To(BeTrue())
		Expect(multierr.Errors(err)).To(HaveLen(2))
		Expect(err.Error()).To(ContainSubstring("bottom-left"))
	})

	It("needs four sensors", func() {
		_, err := avoid.New(ref, mover, orienter, sensors[:2], probe, avoid.DefaultConfig(), zerolog.Nop())
		Expect(err).To(MatchError(vessel.ErrNoSensors))
	})

	It("flies straight to a clear goal", func() {
		av.NavigateTo(goal, 20)
		Expect(av.State()).To(Equal("Aligning"))
		Expect(av.Status()).To(Equal(avoid.StatusNavigating))
		Expect(probe.enabled).To(BeTrue())

		Expect(runUntilIdle(20)).To(BeTrue())
		Expect(av.Status()).To(Equal(avoid.StatusArrived))
		Expect(probe.enabled).To(BeFalse())
		Expect(orienter.targets).To(Equal([]r3.Vector{goal}))
		Expect(mover.speeds[0]).To(BeNumerically("~", 10, 1e-12))
		Expect(probe.reaches[0]).To(BeNumerically("~", 40, 1e-12))
	})

	It("slows for obstacles in probe reach", func() {
		probe.hitAt = 15
		av.NavigateTo(goal, 20)
		av.Execute()
		av.Execute()
		Expect(mover.speeds).To(HaveLen(1))
		Expect(mover.speeds[0]).To(BeNumerically("~", 3, 1e-12))
		Expect(probe.reaches).To(HaveLen(9))
	})

	It("never drops below the minimum speed", func() {
		probe.hitAt = 1
		av.NavigateTo(goal, 20)
		av.Execute()
		av.Execute()
		Expect(mover.speeds[0]).To(BeNumerically("~", 2, 1e-12))
	})

	It("detours around a blocked corner and resumes the goal", func() {
		mover.ticks = 1
		tr.active = true
		av.NavigateTo(goal, 20)

		av.Execute() // aligned
		av.Execute() // blocked while navigating
		Expect(av.State()).To(Equal("Scanning"))
		Expect(mover.stops).To(Equal(1))

		av.Execute() // picks the first candidate the right side does not block
		tr.active = false
		av.Execute() // aligned with the candidate, now clear
		Expect(av.State()).To(Equal("Navigating"))

		Expect(orienter.targets).To(HaveLen(2))
		left := orienter.targets[1]
		Expect(left.X).To(BeNumerically("~", -10/1.4142135623730951, 1e-9))
		Expect(left.Z).To(BeNumerically("~", -10/1.4142135623730951, 1e-9))

		Expect(runUntilIdle(20)).To(BeTrue())
		Expect(av.Status()).To(Equal(avoid.StatusArrived))
		Expect(orienter.targets[len(orienter.targets)-1]).To(Equal(goal))
	})

	It("is stuck after every detour is spent", func() {
		for _, s := range []*fakeSensor{tr, tl, br, bl} {
			s.active = true
		}
		av.NavigateTo(goal, 20)
		Expect(runUntilIdle(100)).To(BeTrue())
		Expect(av.Status()).To(Equal(avoid.StatusStuck))

		proposals := orienter.targets[1:]
		Expect(proposals).To(HaveLen(4))
		for i, want := range []r3.Vector{{X: 10}, {X: -10}, {Y: 10}, {Y: -10}} {
			Expect(proposals[i].Distance(want)).To(BeNumerically("<", 1e-9))
		}
	})

	It("only proposes candidates the sensors leave open", func() {
		tl.active = true
		bl.active = true
		av.NavigateTo(goal, 20)
		Expect(runUntilIdle(100)).To(BeTrue())
		Expect(av.Status()).To(Equal(avoid.StatusStuck))

		proposals := orienter.targets[1:]
		Expect(proposals).To(HaveLen(5))
		Expect(proposals[0].X).To(BeNumerically(">", 0))
		for i := range proposals {
			for j := i + 1; j < len(proposals); j++ {
				Expect(proposals[i].Distance(proposals[j])).To(BeNumerically(">", 0.1))
			}
		}
	})

	It("restarts when given a new goal mid-trip", func() {
		av.NavigateTo(goal, 20)
		av.Execute()
		av.NavigateTo(r3.Vector{X: 30}, 0)
		Expect(mover.stops).To(Equal(1))
		Expect(av.State()).To(Equal("Aligning"))
		Expect(av.Status()).To(Equal(avoid.StatusNavigating))
	})

	It("stops on request", func() {
		av.NavigateTo(goal, 20)
		av.Execute()
		av.Stop()
		Expect(av.State()).To(Equal("Idle"))
		Expect(av.Status()).To(Equal(avoid.StatusIdle))
		Expect(probe.enabled).To(BeFalse())
		Expect(orienter.stops).To(BeNumerically(">=", 1))
	})
})
