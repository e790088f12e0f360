package catalogs

import (
	"path"
	"strings"
	"time"

	"github.com/hdwx/mrms/pkg/constants"
)

// PathExtension returns the run directory suffix for hour, "YYYY/MM/DD/HH00/".
func PathExtension(hour time.Time) string {
	return RunHour(hour).Format(constants.RunDirLayout) + "/"
}

// RunDir returns the directory holding a product's images for the run
// containing t, relative to the output root.
func RunDir(productPath string, t time.Time) string {
	return joinPath(productPath, strings.TrimSuffix(PathExtension(t), "/"))
}

// RunDocumentPath returns metadata/products/<id>/<YYYYMMDDHH>00.json.
func RunDocumentPath(id ProductID, t time.Time) string {
	name := RunHour(t).Format(constants.RunFileLayout) + constants.DocumentExtension
	return path.Join(constants.MetadataDir, constants.ProductsDir, id.String(), name)
}

// ProductRunsDir returns the directory holding a product's run documents.
func ProductRunsDir(id ProductID) string {
	return path.Join(constants.MetadataDir, constants.ProductsDir, id.String())
}

// ProductDocumentPath returns metadata/products/<id>.json.
func ProductDocumentPath(id ProductID) string {
	return path.Join(constants.MetadataDir, constants.ProductsDir, id.String()+constants.DocumentExtension)
}

// TypeDocumentPath returns metadata/<typeID>.json.
func TypeDocumentPath(id ProductTypeID) string {
	return path.Join(constants.MetadataDir, id.String()+constants.DocumentExtension)
}

// ParseRunDir parses a "YYYY/MM/DD/HH00" directory suffix back into its run
// hour. ok is false for anything else.
func ParseRunDir(rel string) (time.Time, bool) {
	t, err := time.ParseInLocation(constants.RunDirLayout, strings.Trim(rel, "/"), time.UTC)
	if err != nil || t.Minute() != 0 {
		return time.Time{}, false
	}
	return t, true
}

// joinPath joins slash separated output paths. Product paths carry a
// trailing slash which path.Join drops.
func joinPath(elem ...string) string {
	return path.Join(elem...)
}
