package record

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hdwx/mrms"
	"github.com/hdwx/mrms/internal/cmd/output"
	"github.com/hdwx/mrms/pkg/catalogs"
)

// Status is the end-of-batch document written after every product of a
// record call succeeded. Downstream jobs poll it instead of the run
// documents.
type Status struct {
	BatchID       string          `json:"batchID" yaml:"batchID"`
	Valid         string          `json:"valid" yaml:"valid"`
	CompletedTime string          `json:"completedTime,omitempty" yaml:"completedTime,omitempty"`
	Products      []ProductStatus `json:"products" yaml:"products"`
}

// ProductStatus is the outcome for one product.
type ProductStatus struct {
	ProductID           catalogs.ProductID `json:"productID" yaml:"productID"`
	Filename            string             `json:"filename" yaml:"filename"`
	PathExtension       string             `json:"pathExtension" yaml:"pathExtension"`
	AvailableFrameCount int                `json:"availableFrameCount" yaml:"availableFrameCount"`
	Discovered          int                `json:"discovered" yaml:"discovered"`
	Conflicts           int                `json:"conflicts" yaml:"conflicts"`
}

// NewStatus starts a status document for frames valid at valid.
func NewStatus(valid time.Time) *Status {
	return &Status{
		BatchID:  uuid.NewString(),
		Valid:    catalogs.FormatStamp(valid),
		Products: []ProductStatus{},
	}
}

// Add appends the outcome of one RecordFrame call.
func (s *Status) Add(r *mrms.RecordResult) {
	s.Products = append(s.Products, ProductStatus{
		ProductID:           r.ProductID,
		Filename:            r.Frame.Filename,
		PathExtension:       r.Run.PathExtension,
		AvailableFrameCount: r.Run.AvailableFrameCount,
		Discovered:          len(r.Discovered),
		Conflicts:           len(r.Conflicts),
	})
}

// Table implements output.Tabular.
func (s *Status) Table() output.Data {
	data := output.Data{
		Headers: []string{"Product", "Valid", "File", "Frames", "Discovered", "Conflicts"},
		ColumnAlignment: []output.Align{
			output.AlignRight, output.AlignLeft, output.AlignLeft,
			output.AlignRight, output.AlignRight, output.AlignRight,
		},
	}
	for _, p := range s.Products {
		data.Rows = append(data.Rows, []string{
			p.ProductID.String(),
			s.Valid,
			p.PathExtension + p.Filename,
			strconv.Itoa(p.AvailableFrameCount),
			strconv.Itoa(p.Discovered),
			strconv.Itoa(p.Conflicts),
		})
	}
	return data
}
