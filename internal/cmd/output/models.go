package output

import (
	"strconv"
	"strings"

	"github.com/hdwx/mrms/pkg/catalogs"
)

// FramesTable lists the frames of a run.
func FramesTable(run *catalogs.ProductRun) Data {
	data := Data{
		Headers:         []string{"Valid", "Filename", "Fhour", "GIS Info"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	for _, f := range run.ProductFrames {
		data.Rows = append(data.Rows, []string{
			f.Valid,
			f.Filename,
			strconv.Itoa(f.FHour),
			strings.Join(f.GISInfo[:], " "),
		})
	}
	return data
}

// ProductsTable lists product definitions next to their published summary,
// if any.
func ProductsTable(specs []catalogs.ProductSpec, summaries map[catalogs.ProductID]*catalogs.Product) Data {
	data := Data{
		Headers:         []string{"ID", "Description", "Path", "GIS", "Reload", "Last Reload"},
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignCenter, AlignRight, AlignLeft},
	}
	for _, spec := range specs {
		reload, last := "-", "-"
		if s, ok := summaries[spec.ID]; ok && s != nil {
			reload = strconv.Itoa(s.ProductReloadTime) + "s"
			last = s.LastReloadTime
		}
		data.Rows = append(data.Rows, []string{
			spec.ID.String(),
			spec.Description,
			spec.Path,
			yesNo(spec.IsGIS),
			reload,
			last,
		})
	}
	return data
}

// RunSummary is one row of a run listing.
type RunSummary struct {
	Run         string `json:"run" yaml:"run"`
	RunName     string `json:"runName" yaml:"runName"`
	Frames      int    `json:"frames" yaml:"frames"`
	PublishTime string `json:"publishTime" yaml:"publishTime"`
}

// RunsTable lists runs of a product.
func RunsTable(runs []RunSummary) Data {
	data := Data{
		Headers:         []string{"Run", "Name", "Frames", "Published"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	for _, r := range runs {
		data.Rows = append(data.Rows, []string{r.Run, r.RunName, strconv.Itoa(r.Frames), r.PublishTime})
	}
	return data
}

// StampsTable lists timestamps in document form.
func StampsTable(header string, stamps []string) Data {
	data := Data{Headers: []string{header}}
	for _, s := range stamps {
		data.Rows = append(data.Rows, []string{s})
	}
	return data
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
