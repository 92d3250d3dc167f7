package polymer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestChooserDeterminism(t *testing.T) {
	Convey("Given two Choosers seeded identically", t, func() {
		a := NewChooser(42)
		b := NewChooser(42)

		Convey("they draw identical sequences", func() {
			for i := 0; i < 10; i++ {
				So(a.Float64(), ShouldEqual, b.Float64())
			}
		})
	})

	Convey("Given a Chooser and a weights slice with one dominant weight", t, func() {
		c := NewChooser(1)
		weights := []float64{0, 0, 1000}

		Convey("WeightedIndex always selects the dominant index", func() {
			for i := 0; i < 50; i++ {
				So(c.WeightedIndex(weights), ShouldEqual, 2)
			}
		})
	})

	Convey("Given a Chooser and uniform weights", t, func() {
		c := NewChooser(7)
		weights := []float64{1, 1, 1, 1}

		Convey("WeightedIndex always returns an in-range index", func() {
			for i := 0; i < 100; i++ {
				idx := c.WeightedIndex(weights)
				So(idx, ShouldBeGreaterThanOrEqualTo, 0)
				So(idx, ShouldBeLessThan, len(weights))
			}
		})
	})
}
