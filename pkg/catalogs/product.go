package catalogs

import (
	"fmt"
	"time"

	"github.com/hdwx/mrms/pkg/constants"
)

// ProductID identifies one rendered image series.
type ProductID int

// ProductTypeID identifies a grouping of products.
type ProductTypeID int

// String returns the decimal form used in metadata paths.
func (id ProductID) String() string {
	return fmt.Sprintf("%d", int(id))
}

// String returns the decimal form used in metadata paths.
func (id ProductTypeID) String() string {
	return fmt.Sprintf("%d", int(id))
}

// Product is the summary document of one product. It is embedded by value
// in its ProductType's product list.
type Product struct {
	ProductID          ProductID `json:"productID" yaml:"productID"`
	ProductDescription string    `json:"productDescription" yaml:"productDescription"`
	ProductPath        string    `json:"productPath" yaml:"productPath"`
	ProductReloadTime  int       `json:"productReloadTime" yaml:"productReloadTime"`
	LastReloadTime     string    `json:"lastReloadTime" yaml:"lastReloadTime"`
	IsForecast         bool      `json:"isForecast" yaml:"isForecast"`
	IsGIS              bool      `json:"isGIS" yaml:"isGIS"`
	FileExtension      string    `json:"fileExtension" yaml:"fileExtension"`
	DisplayFrames      int       `json:"displayFrames" yaml:"displayFrames"`
}

// ProductSpec is the static definition of a product. Everything in a
// Product summary except lastReloadTime and the reload hint comes from here.
type ProductSpec struct {
	ID            ProductID
	TypeID        ProductTypeID
	Description   string
	Path          string
	Extension     string
	IsGIS         bool
	IsForecast    bool
	DisplayFrames int
	GISInfo       GISInfo
}

// Summary builds the product summary refreshed at now.
func (s ProductSpec) Summary(now time.Time, reloadSeconds int) Product {
	if reloadSeconds <= 0 {
		reloadSeconds = constants.DefaultReloadSeconds
	}
	return Product{
		ProductID:          s.ID,
		ProductDescription: s.Description,
		ProductPath:        s.Path,
		ProductReloadTime:  reloadSeconds,
		LastReloadTime:     FormatStamp(now),
		IsForecast:         s.IsForecast,
		IsGIS:              s.IsGIS,
		FileExtension:      s.Extension,
		DisplayFrames:      s.DisplayFrames,
	}
}

// FrameName returns the image file name for a frame valid at t.
func (s ProductSpec) FrameName(t time.Time) string {
	return FrameName(t, s.Extension)
}

// RunDir returns the output directory holding the images of the run that
// contains t, relative to the output root.
func (s ProductSpec) RunDir(t time.Time) string {
	return RunDir(s.Path, t)
}

// FramePath returns the image path of the frame valid at t.
func (s ProductSpec) FramePath(t time.Time) string {
	return joinPath(s.RunDir(t), s.FrameName(t))
}
