package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/teamforge/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper with default options", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a request ID is new", func() {
			seen := d.SeenAndRecord(ctx, "pick-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then the second sighting is reported", func() {
				So(d.SeenAndRecord(ctx, "pick-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("When it is unrecorded", func() {
				d.Unrecord(ctx, "pick-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "pick-1"), ShouldBeFalse)
				})
			})
		})

		Convey("When an unknown ID is unrecorded", func() {
			d.Unrecord(ctx, "never")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a deduper bounded to three IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"a", "b", "c", "d"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("Then the oldest ID was evicted first", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "id-0"), ShouldBeTrue)
	})

	Convey("Given many goroutines racing on the same IDs", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each ID is fresh exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
