package polymer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestElementCovering(t *testing.T) {
	Convey("Given a fresh promoter element", t, func() {
		promoter := NewPromoter("promoter1", 5, 15, []string{"rnapol"})

		Convey("it starts uncovered", func() {
			So(promoter.IsCovered(), ShouldBeFalse)
			So(promoter.Covered(), ShouldEqual, 0)
		})

		Convey("Cover/Uncover are reference-counted", func() {
			promoter.Cover()
			promoter.Cover()
			So(promoter.Covered(), ShouldEqual, 2)

			promoter.Uncover()
			So(promoter.IsCovered(), ShouldBeTrue)

			promoter.Uncover()
			So(promoter.IsCovered(), ShouldBeFalse)
		})

		Convey("Uncover saturates at zero rather than going negative", func() {
			promoter.Uncover()
			So(promoter.Covered(), ShouldEqual, 0)
		})

		Convey("the edge detector fires only across a SaveState boundary", func() {
			promoter.SaveState()
			promoter.Cover()
			So(promoter.WasCovered(), ShouldBeTrue)
			So(promoter.WasUncovered(), ShouldBeFalse)

			promoter.SaveState()
			promoter.Uncover()
			So(promoter.WasUncovered(), ShouldBeTrue)
		})
	})

	Convey("Given a terminator with per-walker efficiencies", t, func() {
		term := NewTerminator("myterm", 50, 55, map[string]TerminatorParams{
			"rnapol":   {Efficiency: 1.0},
			"ecolipol": {Efficiency: 0.6},
		})

		So(term.Interacts("rnapol"), ShouldBeTrue)
		So(term.Interacts("other"), ShouldBeFalse)
		So(term.Interactions["ecolipol"].Efficiency, ShouldEqual, 0.6)
	})
}

func TestIntersects(t *testing.T) {
	Convey("Intersects uses the inclusive overlap rule", t, func() {
		So(Intersects(5, 10, 10, 20), ShouldBeTrue)
		So(Intersects(5, 10, 11, 20), ShouldBeFalse)
		So(Intersects(5, 10, 1, 4), ShouldBeFalse)
		So(Intersects(5, 10, 1, 5), ShouldBeTrue)
	})
}

func TestMaskRecede(t *testing.T) {
	Convey("Given a mask spanning [10, 100]", t, func() {
		mask := NewMask(10, 100, []string{"ecolipol"})

		Convey("Recede advances Start by one", func() {
			mask.Recede()
			So(mask.Start, ShouldEqual, 11)
		})

		Convey("Recede never advances Start past Stop", func() {
			mask.Start = 100
			mask.Recede()
			So(mask.Start, ShouldEqual, 100)
		})

		Convey("Interacts reflects the whitelist of pushers", func() {
			So(mask.Interacts("ecolipol"), ShouldBeTrue)
			So(mask.Interacts("rnapol"), ShouldBeFalse)
		})
	})
}

func TestPolymeraseMovement(t *testing.T) {
	Convey("Given a bound polymerase", t, func() {
		pol := NewPolymerase("rnapol", 1.0, 10)
		pol.Start, pol.Stop = 5, 14

		Convey("Move advances both endpoints", func() {
			pol.Move()
			So(pol.Start, ShouldEqual, 6)
			So(pol.Stop, ShouldEqual, 15)
		})

		Convey("MoveBack rolls both endpoints back", func() {
			pol.MoveBack()
			So(pol.Start, ShouldEqual, 4)
			So(pol.Stop, ShouldEqual, 13)
		})
	})
}
