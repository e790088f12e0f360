package catalogs_test

import (
	"fmt"
	"log"
	"time"

	"github.com/hdwx/mrms/pkg/catalogs"
)

// Example shows where the documents of one frame live.
func Example() {
	registry := catalogs.DefaultRegistry()
	spec, err := registry.Lookup(1)
	if err != nil {
		log.Fatal(err)
	}

	valid := time.Date(2022, 5, 1, 12, 5, 0, 0, time.UTC)
	fmt.Println(spec.FramePath(valid))
	fmt.Println(catalogs.RunDocumentPath(spec.ID, valid))
	fmt.Println(catalogs.ProductDocumentPath(spec.ID))
	fmt.Println(catalogs.TypeDocumentPath(spec.TypeID))
	// Output:
	// products/radar/national/2022/05/01/1200/05.png
	// metadata/products/1/202205011200.json
	// metadata/products/1.json
	// metadata/1.json
}

// ExampleNewProductRun builds a run document from unsorted frames.
func ExampleNewProductRun() {
	hour := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	frames := []catalogs.Frame{
		catalogs.NewFrame("04.png", hour.Add(4*time.Minute), catalogs.NoGIS),
		catalogs.NewFrame("00.png", hour, catalogs.NoGIS),
	}

	run := catalogs.NewProductRun(hour, frames, hour.Add(5*time.Minute))
	fmt.Println(run.RunName, run.PathExtension, run.AvailableFrameCount)
	for _, f := range run.ProductFrames {
		fmt.Println(f.Valid, f.Filename)
	}
	// Output:
	// 01 May 2022 1200Z 2022/05/01/1200/ 2
	// 202205011200 00.png
	// 202205011204 04.png
}
