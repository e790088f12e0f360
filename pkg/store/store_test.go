package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/store"
)

func sampleRun() *catalogs.ProductRun {
	hour := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return catalogs.NewProductRun(hour, []catalogs.Frame{
		catalogs.NewFrame("00.png", hour, catalogs.RALAGIS),
		catalogs.NewFrame("02.png", hour.Add(2*time.Minute), catalogs.RALAGIS),
	}, hour.Add(3*time.Minute))
}

func TestFS_RoundTrip(t *testing.T) {
	s := store.NewMemory()
	want := sampleRun()

	require.NoError(t, s.Save("metadata/products/0/202405011200.json", want))

	var got catalogs.ProductRun
	found, err := s.Load("metadata/products/0/202405011200.json", &got)
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFS_LoadMissing(t *testing.T) {
	s := store.NewMemory()
	var run catalogs.ProductRun
	found, err := s.Load("metadata/products/0/nope.json", &run)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFS_LoadMalformed(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, afero.WriteFile(s.Fs(), "metadata/1.json", []byte(`{"products": [`), 0o644))

	var pt catalogs.ProductType
	found, err := s.Load("metadata/1.json", &pt)
	assert.True(t, found)
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
}

func TestFS_LoadRunsValidate(t *testing.T) {
	s := store.NewMemory()
	doc := `{"productFrames":[{"fhour":0,"filename":"00.png","gisInfo":["0,0","0,0"],"valid":"yesterday"}]}`
	require.NoError(t, afero.WriteFile(s.Fs(), "run.json", []byte(doc), 0o644))

	var run catalogs.ProductRun
	_, err := s.Load("run.json", &run)
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
}

func TestFS_SaveFormatAndPermissions(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Save("metadata/1.json", catalogs.NewProductType(catalogs.Reflectivity)))

	data, err := afero.ReadFile(s.Fs(), "metadata/1.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"productTypeID\": 1,\n    \"productTypeDescription\": \"MRMS Reflectivity\",\n    \"products\": []\n}\n", string(data))

	fi, err := s.Fs().Stat("metadata/1.json")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestFS_SaveLeavesNoTempFiles(t *testing.T) {
	s := store.NewMemory()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save("metadata/products/0.json", map[string]int{"n": i}))
	}
	names, err := afero.ReadDir(s.Fs(), "metadata/products")
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "0.json", names[0].Name())
}

// renameFailFs simulates a crash between writing the temp file and renaming
// it over the target.
type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(string, string) error {
	return errors.New("simulated crash before rename")
}

func TestFS_FailedRenameKeepsPriorDocument(t *testing.T) {
	mem := afero.NewMemMapFs()
	prior := sampleRun()
	require.NoError(t, store.New(mem).Save("metadata/products/0/202405011200.json", prior))
	before, err := afero.ReadFile(mem, "metadata/products/0/202405011200.json")
	require.NoError(t, err)

	crashing := store.New(renameFailFs{mem})
	err = crashing.Save("metadata/products/0/202405011200.json", catalogs.NewProductRun(time.Now(), nil, time.Now()))
	require.Error(t, err)
	var ioErr *errors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "rename", ioErr.Operation)

	after, err := afero.ReadFile(mem, "metadata/products/0/202405011200.json")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	entries, err := afero.ReadDir(mem, "metadata/products/0")
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file %s left behind", e.Name())
	}
}

func TestFS_ListAndDirs(t *testing.T) {
	s := store.NewMemory()
	fsys := s.Fs()
	run := "products/radar/national/2024/05/01/1200"
	for _, name := range []string{"04.png", "00.png", ".02.png.tmp"} {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join(run, name), []byte("png"), 0o644))
	}
	require.NoError(t, fsys.MkdirAll("products/radar/national/2024/05/01/1300", 0o755))

	names, err := s.List(run)
	require.NoError(t, err)
	assert.Equal(t, []string{".02.png.tmp", "00.png", "04.png"}, names)

	dirs, err := s.Dirs("products/radar/national/2024/05/01")
	require.NoError(t, err)
	assert.Equal(t, []string{"1200", "1300"}, dirs)

	names, err = s.List("products/radar/local")
	require.NoError(t, err)
	assert.Empty(t, names)

	ok, err := s.Exists(run + "/04.png")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Exists(run + "/06.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewOS(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	s, err := store.NewOS(root)
	require.NoError(t, err)

	require.NoError(t, s.Save("metadata/products/1.json", map[string]string{"a": "b"}))

	fi, err := os.Stat(filepath.Join(root, "metadata", "products", "1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	_, err = store.NewOS("")
	assert.True(t, errors.IsValidationError(err))
}
