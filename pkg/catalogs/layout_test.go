package catalogs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLayoutPaths(t *testing.T) {
	valid := time.Date(2024, 5, 1, 12, 4, 0, 0, time.UTC)

	assert.Equal(t, "2024/05/01/1200/", PathExtension(valid))
	assert.Equal(t, "products/radar/national/2024/05/01/1200", RunDir("products/radar/national/", valid))
	assert.Equal(t, "metadata/products/1/202405011200.json", RunDocumentPath(1, valid))
	assert.Equal(t, "metadata/products/1", ProductRunsDir(1))
	assert.Equal(t, "metadata/products/1.json", ProductDocumentPath(1))
	assert.Equal(t, "metadata/1.json", TypeDocumentPath(1))

	spec, _ := DefaultRegistry().Lookup(0)
	assert.Equal(t, "gisproducts/radar/RALA/2024/05/01/1200/04.png", spec.FramePath(valid))
}

func TestParseRunDir(t *testing.T) {
	got, ok := ParseRunDir("2024/05/01/1200")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), got)

	_, ok = ParseRunDir("2024/05/01/1200/")
	assert.True(t, ok)

	for _, bad := range []string{"2024/05/01", "2024/05/01/1230", "2024/13/01/1200", "latest"} {
		_, ok := ParseRunDir(bad)
		assert.False(t, ok, bad)
	}
}

func TestStamp(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "202412312359", FormatStamp(ts))

	got, err := ParseStamp("202412312359")
	assert.NoError(t, err)
	assert.True(t, got.Equal(ts))

	_, err = ParseStamp("2024-12-31")
	assert.Error(t, err)

	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), RunHour(ts))
}
