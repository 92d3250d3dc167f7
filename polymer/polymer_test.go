package polymer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// assertInvariants checks the structural invariants spec.md requires to hold
// after every operation: walkers stay ordered and collision-free, and the
// cached propensity (PropSum, PropList length) agrees with the bound walkers.
// The Uncovered cache is not checked here.
func assertInvariants(p *Polymer) {
	for i := 1; i < len(p.Walkers); i++ {
		prev, cur := p.Walkers[i-1], p.Walkers[i]
		So(prev.Start, ShouldBeLessThan, cur.Start)
		So(Intersects(prev.Start, prev.Stop, cur.Start, cur.Stop), ShouldBeFalse)
	}

	var sum float64
	for _, w := range p.Walkers {
		sum += w.Speed
	}
	So(p.PropSum, ShouldAlmostEqual, sum, 1e-9)
	So(len(p.PropList), ShouldEqual, len(p.Walkers))
}

func buildTestPolymer() (*Polymer, *Element, *Element) {
	promoter := NewPromoter("promoter1", 5, 15, []string{"rnapol"})
	terminator := NewTerminator("myterm", 49, 50, map[string]TerminatorParams{
		"rnapol": {Efficiency: 1.0},
	})
	mask := NewMask(60, 100, nil)
	p := NewPolymer("testpolymer", 100, []*Element{promoter, terminator}, mask, NewChooser(1))
	return p, promoter, terminator
}

func TestBindPolymerase(t *testing.T) {
	Convey("Given a polymer with a free promoter", t, func() {
		p, _, _ := buildTestPolymer()
		pol := NewPolymerase("rnapol", 1.0, 10)

		Convey("binding to that promoter places the walker at its start", func() {
			err := p.BindPolymerase(pol, "promoter1")
			So(err, ShouldBeNil)
			So(pol.Start, ShouldEqual, 5)
			So(pol.Stop, ShouldEqual, 14)
			So(p.Walkers, ShouldContain, pol)
			assertInvariants(p)
		})

		Convey("binding a walker that doesn't interact with the promoter fails", func() {
			other := NewPolymerase("ecolipol", 1.0, 10)
			err := p.BindPolymerase(other, "promoter1")
			So(err, ShouldEqual, ErrIncompatibleBinding)
		})

		Convey("binding to an already-covered promoter fails to find one", func() {
			promoter := NewPromoter("promoter1", 5, 15, []string{"rnapol"})
			promoter.Cover()
			mask := NewMask(60, 100, nil)
			p2 := NewPolymer("p2", 100, []*Element{promoter}, mask, NewChooser(1))
			err := p2.BindPolymerase(pol, "promoter1")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("a footprint larger than the promoter is rejected", func() {
			big := NewPolymerase("rnapol", 1.0, 50)
			err := p.BindPolymerase(big, "promoter1")
			So(err, ShouldEqual, ErrFootprintTooLarge)
		})
	})
}

func TestMovePolymeraseAndCollision(t *testing.T) {
	Convey("Given a polymer with one bound walker", t, func() {
		p, _, _ := buildTestPolymer()
		pol := NewPolymerase("rnapol", 1.0, 10)
		So(p.BindPolymerase(pol, "promoter1"), ShouldBeNil)

		Convey("Execute moves the only walker forward by one", func() {
			So(p.Execute(), ShouldBeNil)
			So(pol.Start, ShouldEqual, 6)
			So(pol.Stop, ShouldEqual, 15)
			assertInvariants(p)
		})

		Convey("a walker that collides with its downstream neighbor rolls back", func() {
			follower := NewPolymerase("rnapol", 1.0, 10)
			follower.Start, follower.Stop = 15, 24
			follower.Attached = true
			So(p.insertWalker(follower), ShouldBeNil)
			p.PropSum += follower.Speed

			So(p.moveWalker(pol), ShouldBeNil)
			So(pol.Start, ShouldEqual, 5)
			So(pol.Stop, ShouldEqual, 14)
			assertInvariants(p)
		})
	})
}

func TestResolveTerminationAndReadthrough(t *testing.T) {
	Convey("Given a walker approaching a terminator with efficiency 1.0", t, func() {
		p, _, term := buildTestPolymer()
		pol := NewPolymerase("rnapol", 1.0, 2)
		pol.Start, pol.Stop = 46, 47
		So(p.insertWalker(pol), ShouldBeNil)
		p.PropSum += pol.Speed

		released := -1
		pol.ReleaseSignal.Connect(func(stop int) { released = stop })

		Convey("the walker terminates and detaches as soon as it overlaps the terminator", func() {
			So(p.moveWalker(pol), ShouldBeNil)
			So(p.moveWalker(pol), ShouldBeNil)

			So(pol.Attached, ShouldBeFalse)
			So(released, ShouldEqual, 50)
			So(p.Walkers, ShouldNotContain, pol)
		})

		Convey("a terminator with zero efficiency always lets the walker read through", func() {
			term.Interactions["rnapol"] = TerminatorParams{Efficiency: 0}
			So(p.moveWalker(pol), ShouldBeNil)
			So(p.moveWalker(pol), ShouldBeNil)

			So(pol.Attached, ShouldBeTrue)
			So(term.Readthrough, ShouldBeTrue)
		})

		Convey("readthrough persists across consecutive overlapping frames", func() {
			term.Interactions["rnapol"] = TerminatorParams{Efficiency: 0}
			So(p.moveWalker(pol), ShouldBeNil)
			So(p.moveWalker(pol), ShouldBeNil)
			So(term.Readthrough, ShouldBeTrue)

			So(p.moveWalker(pol), ShouldBeNil)
			So(pol.Attached, ShouldBeTrue)
		})
	})
}

func TestMaskCollisionAndShift(t *testing.T) {
	Convey("Given a walker whitelisted to push the mask", t, func() {
		mask := NewMask(60, 100, []string{"ecolipol"})
		p := NewPolymer("p", 100, nil, mask, NewChooser(1))
		pol := NewPolymerase("ecolipol", 1.0, 10)
		pol.Start, pol.Stop = 50, 59
		So(p.insertWalker(pol), ShouldBeNil)
		p.PropSum += pol.Speed

		Convey("the mask recedes instead of blocking the walker", func() {
			So(p.moveWalker(pol), ShouldBeNil)
			So(pol.Start, ShouldEqual, 51)
			So(mask.Start, ShouldEqual, 61)
		})
	})

	Convey("Given a walker not whitelisted to push the mask", t, func() {
		mask := NewMask(60, 100, []string{"ecolipol"})
		p := NewPolymer("p", 100, nil, mask, NewChooser(1))
		pol := NewPolymerase("rnapol", 1.0, 10)
		pol.Start, pol.Stop = 50, 59
		So(p.insertWalker(pol), ShouldBeNil)
		p.PropSum += pol.Speed

		Convey("the walker rolls back instead of pushing the mask", func() {
			So(p.moveWalker(pol), ShouldBeNil)
			So(pol.Start, ShouldEqual, 50)
			So(mask.Start, ShouldEqual, 60)
		})
	})

	Convey("Given a mask adjacent to a promoter it straddles", t, func() {
		promoter := NewPromoter("downstream", 61, 70, []string{"rnapol"})
		mask := NewMask(60, 100, nil)
		p := NewPolymer("p", 100, []*Element{promoter}, mask, NewChooser(1))
		So(promoter.IsCovered(), ShouldBeTrue)

		Convey("ShiftMask keeps the promoter covered while the mask still overlaps it", func() {
			for i := 0; i < 5; i++ {
				p.ShiftMask()
			}
			So(mask.Start, ShouldEqual, 65)
			So(promoter.IsCovered(), ShouldBeTrue)
		})
	})
}

func TestCountUncoveredAndPropensity(t *testing.T) {
	Convey("Given a fresh polymer with one free promoter", t, func() {
		p, _, _ := buildTestPolymer()

		Convey("CountUncovered reports it free", func() {
			So(p.CountUncovered("promoter1"), ShouldEqual, 1)
		})

		Convey("CalculatePropensity is zero with no walkers bound", func() {
			So(p.CalculatePropensity(), ShouldEqual, 0)
		})

		Convey("binding a walker raises both the propensity and covers the promoter", func() {
			pol := NewPolymerase("rnapol", 2.5, 10)
			So(p.BindPolymerase(pol, "promoter1"), ShouldBeNil)
			So(p.CalculatePropensity(), ShouldEqual, 2.5)
			So(p.CountUncovered("promoter1"), ShouldEqual, 0)
		})
	})
}
