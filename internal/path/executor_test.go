package path_test

import (
	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/path"
)

type fakeRef struct{ frame geom.Frame }

func (r *fakeRef) Frame() geom.Frame          { return r.frame }
func (r *fakeRef) LinearVelocity() r3.Vector  { return r3.Vector{} }
func (r *fakeRef) AngularVelocity() r3.Vector { return r3.Vector{} }
func (r *fakeRef) Gravity() r3.Vector         { return r3.Vector{} }
func (r *fakeRef) Mass() float64              { return 1000 }
func (r *fakeRef) CenterOfMass() r3.Vector    { return r.frame.Position }
func (r *fakeRef) BoundingRadius() float64    { return 2 }

// fakeMover arrives at a target after ticks consecutive calls.
type fakeMover struct {
	ticks      int
	count      int
	targets    []r3.Vector
	precisions []float64
	stops      int
}

func (m *fakeMover) NavigateTo(target r3.Vector, _ float64) bool {
	if n := len(m.targets); n == 0 || m.targets[n-1] != target {
		m.targets = append(m.targets, target)
		m.count = 0
	}
	m.count++
	return m.count >= m.ticks
}

func (m *fakeMover) SetPrecision(p float64) { m.precisions = append(m.precisions, p) }
func (m *fakeMover) Stop()                  { m.stops++; m.count = 0 }

type fakeOrienter struct {
	frames []geom.Frame
	stops  int
}

func (o *fakeOrienter) AlignWithFrame(f geom.Frame) bool {
	if n := len(o.frames); n == 0 || o.frames[n-1] != f {
		o.frames = append(o.frames, f)
	}
	return true
}

func (o *fakeOrienter) SetPrecision(float64) {}
func (o *fakeOrienter) Stop()                { o.stops++ }

// fakeConnector engages on the succeedOn-th Connect call; zero never engages.
type fakeConnector struct {
	succeedOn   int
	calls       int
	connected   bool
	disconnects int
	peer        r3.Vector
}

func (c *fakeConnector) Connected() bool { return c.connected }
func (c *fakeConnector) Connect() {
	c.calls++
	if c.succeedOn > 0 && c.calls >= c.succeedOn {
		c.connected = true
	}
}
func (c *fakeConnector) Disconnect() { c.connected = false; c.disconnects++ }
func (c *fakeConnector) PeerForward() (r3.Vector, bool) {
	return c.peer, c.connected && c.peer.Norm2() > 0
}

func at(x, y, z float64) path.Waypoint {
	return path.Waypoint{Frame: geom.Identity(r3.Vector{X: x, Y: y, Z: z})}
}

func docking(x, y, z float64, dir r3.Vector) path.Waypoint {
	wp := at(x, y, z)
	wp.Docking = true
	wp.DockingDir = dir
	return wp
}

var _ = Describe("Executor", func() {
	var (
		ref      *fakeRef
		mover    *fakeMover
		orienter *fakeOrienter
		conn     *fakeConnector
		exec     *path.Executor
		states   []string
		indices  []int
	)

	// run ticks until the executor is idle again, noting each new path index.
	run := func(limit int) int {
		for i := 1; i <= limit; i++ {
			exec.Update()
			if idx := exec.Status().Index; len(indices) == 0 || indices[len(indices)-1] != idx {
				indices = append(indices, idx)
			}
			if exec.StateName() == "Idle" {
				return i
			}
		}
		return -1
	}

	BeforeEach(func() {
		ref = &fakeRef{frame: geom.Identity(r3.Vector{})}
		mover = &fakeMover{ticks: 2}
		orienter = &fakeOrienter{}
		conn = &fakeConnector{}
		states = nil
		indices = nil

		var err error
		exec, err = path.New(ref, mover, orienter, conn, path.DefaultConfig(), zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
		exec.OnTransition(func(_, to string) { states = append(states, to) })
	})

	It("starts idle", func() {
		Expect(exec.StateName()).To(Equal("Idle"))
		Expect(exec.Status().Idle).To(BeTrue())
	})

	It("rejects a missing reference", func() {
		_, err := path.New(nil, mover, orienter, conn, path.DefaultConfig(), zerolog.Nop())
		Expect(err).To(HaveOccurred())
	})

	Describe("recording", func() {
		It("captures plain and docking waypoints", func() {
			Expect(exec.StartRecording("ore-run")).To(Succeed())
			Expect(exec.Status().Recording).To(BeTrue())
			Expect(exec.StartRecording("other")).To(MatchError(path.ErrBusy))

			Expect(exec.AddWaypoint()).To(Succeed())

			ref.frame = geom.Identity(r3.Vector{X: 25, Y: 3})
			conn.connected = true
			conn.peer = r3.Vector{X: 1}
			Expect(exec.AddWaypoint()).To(Succeed())
			Expect(exec.Status().Index).To(Equal(1))

			exec.StopRecording()
			Expect(exec.StateName()).To(Equal("Idle"))
			Expect(exec.AddWaypoint()).To(MatchError(path.ErrNotRecording))

			p, ok := exec.Path("ore-run")
			Expect(ok).To(BeTrue())
			Expect(p.Waypoints).To(HaveLen(2))
			Expect(p.Waypoints[0].Docking).To(BeFalse())
			Expect(p.Waypoints[1].Docking).To(BeTrue())
			Expect(p.Waypoints[1].DockingDir).To(Equal(r3.Vector{X: 1}))
			Expect(p.Waypoints[1].Frame.Position).To(Equal(r3.Vector{X: 25, Y: 3}))
			Expect(exec.PointCount("ore-run")).To(Equal(2))
		})

		It("rejects an empty name", func() {
			Expect(exec.StartRecording("")).To(MatchError(path.ErrEmptyName))
		})

		It("replaces a path recorded under the same name", func() {
			Expect(exec.StartRecording("loop")).To(Succeed())
			Expect(exec.AddWaypoint()).To(Succeed())
			Expect(exec.AddWaypoint()).To(Succeed())
			exec.StopRecording()

			Expect(exec.StartRecording("loop")).To(Succeed())
			Expect(exec.AddWaypoint()).To(Succeed())
			exec.StopRecording()
			Expect(exec.PointCount("loop")).To(Equal(1))
		})
	})

	Describe("replaying plain paths", func() {
		BeforeEach(func() {
			Expect(exec.AddPath(&path.Path{Name: "line", Speed: 10, Waypoints: []path.Waypoint{
				at(0, 0, 0), at(10, 0, 0), at(20, 0, 0),
			}})).To(Succeed())
		})

		It("visits every waypoint in order", func() {
			Expect(exec.StartPath("line", false, 0)).To(Succeed())
			Expect(run(100)).To(BeNumerically(">", 0))
			Expect(mover.targets).To(Equal([]r3.Vector{{X: 0}, {X: 10}, {X: 20}}))
			Expect(orienter.frames).To(HaveLen(3))
			Expect(indices).To(Equal([]int{0, 1, 2}))
			Expect(states).To(ContainElement("StopPath"))
		})

		DescribeTable("picks the starting waypoint",
			func(reverse bool, start int, want []r3.Vector) {
				Expect(exec.StartPath("line", reverse, start)).To(Succeed())
				Expect(run(100)).To(BeNumerically(">", 0))
				Expect(mover.targets).To(Equal(want))
			},
			Entry("forward from the middle", false, 1, []r3.Vector{{X: 10}, {X: 20}}),
			Entry("forward out of range", false, 7, []r3.Vector{{X: 0}, {X: 10}, {X: 20}}),
			Entry("reverse from the end", true, 0, []r3.Vector{{X: 20}, {X: 10}, {X: 0}}),
			Entry("reverse counted from the end", true, 1, []r3.Vector{{X: 10}, {X: 0}}),
			Entry("reverse out of range", true, 9, []r3.Vector{{X: 20}, {X: 10}, {X: 0}}),
		)

		It("refuses unknown paths and a busy executor", func() {
			Expect(exec.StartPath("nowhere", false, 0)).To(MatchError(path.ErrUnknownPath))
			Expect(exec.StartPath("line", false, 0)).To(Succeed())
			Expect(exec.StartPath("line", false, 0)).To(MatchError(path.ErrBusy))
			Expect(exec.ClearPath("line")).To(MatchError(path.ErrBusy))
		})

		It("stops mid-path", func() {
			Expect(exec.StartPath("line", false, 0)).To(Succeed())
			for i := 0; i < 4; i++ {
				exec.Update()
			}
			exec.StopPath()
			Expect(exec.StateName()).To(Equal("StopPath"))
			Expect(mover.stops).To(Equal(1))
			Expect(orienter.stops).To(Equal(1))

			exec.Update()
			Expect(exec.StateName()).To(Equal("Idle"))
			Expect(exec.Status().Idle).To(BeTrue())
		})

		It("ignores StopPath while idle", func() {
			exec.StopPath()
			Expect(exec.StateName()).To(Equal("Idle"))
			Expect(mover.stops).To(BeZero())
		})
	})

	Describe("docking", func() {
		dir := r3.Vector{Z: 1}

		It("approaches, aligns, closes in and connects", func() {
			conn.succeedOn = 1
			Expect(exec.AddPath(&path.Path{Name: "dock", Waypoints: []path.Waypoint{
				at(0, 0, -10), docking(0, 0, -20, dir),
			}})).To(Succeed())

			Expect(exec.StartPath("dock", false, 0)).To(Succeed())
			Expect(run(100)).To(BeNumerically(">", 0))

			Expect(mover.targets).To(Equal([]r3.Vector{
				{Z: -10}, {Z: -18}, {Z: -20},
			}))
			Expect(states).To(Equal([]string{
				"StartPath", "Aligning", "Moving", "Aligning", "Docking", "Connecting", "StopPath", "Idle",
			}))
			Expect(mover.precisions).To(ContainElement(path.DefaultConfig().DockingNavPrecision))
			Expect(conn.connected).To(BeTrue())
			Expect(conn.disconnects).To(BeZero())
		})

		It("retries at nearby offsets and advances exactly once", func() {
			// the initial attempt plus five failed candidates; the sixth engages
			conn.succeedOn = 7
			Expect(exec.AddPath(&path.Path{Name: "dock", Waypoints: []path.Waypoint{
				at(0, 0, -10), docking(0, 0, -20, dir), at(10, 0, -20),
			}})).To(Succeed())

			Expect(exec.StartPath("dock", false, 0)).To(Succeed())
			Expect(run(200)).To(BeNumerically(">", 0))

			Expect(conn.calls).To(Equal(7))
			Expect(conn.disconnects).To(Equal(1))
			Expect(indices).To(Equal([]int{0, 1, 2}))

			Expect(mover.targets).To(HaveLen(11))
			Expect(mover.targets[3].Z).To(BeNumerically("~", -20.01, 1e-9))
			Expect(mover.targets[4].X).To(BeNumerically("~", -0.01, 1e-9))
			Expect(mover.targets[4].Y).To(BeNumerically("~", 0.01, 1e-9))
			Expect(mover.targets[9]).To(Equal(r3.Vector{Z: -18}))
			Expect(mover.targets[10]).To(Equal(r3.Vector{X: 10, Z: -20}))
			Expect(states).To(ContainElement("Undocking"))
		})

		It("gives up after every candidate fails", func() {
			Expect(exec.AddPath(&path.Path{Name: "dock", Waypoints: []path.Waypoint{
				docking(0, 0, -20, dir), at(10, 0, -20),
			}})).To(Succeed())

			Expect(exec.StartPath("dock", true, 0)).To(Succeed())
			Expect(run(200)).To(BeNumerically(">", 0))

			Expect(conn.calls).To(Equal(10))
			Expect(conn.connected).To(BeFalse())
			Expect(exec.Status().Idle).To(BeTrue())
			Expect(states[len(states)-2]).To(Equal("StopPath"))
		})

		It("undocks before leaving a docked start", func() {
			conn.connected = true
			Expect(exec.AddPath(&path.Path{Name: "leave", Waypoints: []path.Waypoint{
				docking(0, 0, 0, dir), at(0, 0, -10),
			}})).To(Succeed())

			Expect(exec.StartPath("leave", false, 0)).To(Succeed())
			exec.Update()
			Expect(exec.StateName()).To(Equal("Undocking"))
			Expect(exec.Status().Undocking).To(BeTrue())
			Expect(conn.disconnects).To(Equal(1))

			Expect(run(100)).To(BeNumerically(">", 0))
			Expect(mover.targets).To(Equal([]r3.Vector{{Z: 2}, {Z: -10}}))
		})

		It("aborts a docking waypoint without a connector", func() {
			bare, err := path.New(ref, mover, orienter, nil, path.DefaultConfig(), zerolog.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(bare.AddPath(&path.Path{Name: "dock", Waypoints: []path.Waypoint{
				at(0, 0, -10), docking(0, 0, -20, dir),
			}})).To(Succeed())

			Expect(bare.StartPath("dock", false, 0)).To(Succeed())
			for i := 0; i < 20 && bare.StateName() != "StopPath"; i++ {
				bare.Update()
			}
			Expect(bare.StateName()).To(Equal("StopPath"))
			Expect(bare.Status().Index).To(Equal(1))
			Expect(mover.targets).To(Equal([]r3.Vector{{Z: -10}}))
		})
	})

	It("persists paths through the text format", func() {
		Expect(exec.AddPath(&path.Path{Name: "b", Speed: 8, Waypoints: []path.Waypoint{at(1, 2, 3)}})).To(Succeed())
		Expect(exec.AddPath(&path.Path{Name: "a", Speed: 5, Waypoints: []path.Waypoint{
			at(0, 0, 0), docking(4, 0, 0, r3.Vector{X: 1}),
		}})).To(Succeed())

		other, err := path.New(ref, mover, orienter, conn, path.DefaultConfig(), zerolog.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(other.Deserialize(exec.Serialize())).To(Equal(2))
		Expect(other.PathNames()).To(Equal([]string{"a", "b"}))

		p, _ := other.Path("a")
		Expect(p.Speed).To(Equal(5.0))
		Expect(p.Waypoints[1].Docking).To(BeTrue())
		Expect(p.Waypoints[1].DockingDir).To(Equal(r3.Vector{X: 1}))
	})
})
