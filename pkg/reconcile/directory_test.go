package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdwx/mrms/pkg/catalogs"
	"github.com/hdwx/mrms/pkg/reconcile"
)

func TestObserveDirectory(t *testing.T) {
	spec, err := catalogs.DefaultRegistry().Lookup(0)
	require.NoError(t, err)

	names := []string{"00.png", "02.png", ".04.png.123.tmp", "04.png", "readme.txt", "06.jpg", "latest.png"}
	recorded := map[string]bool{"00.png": true}

	l := reconcile.ObserveDirectory(names, recorded, spec, hour.Add(17*time.Minute))

	require.Len(t, l.Frames, 2)
	assert.Equal(t, catalogs.Frame{Filename: "02.png", GISInfo: catalogs.RALAGIS, Valid: "202405011202"}, l.Frames[0])
	assert.Equal(t, catalogs.Frame{Filename: "04.png", GISInfo: catalogs.RALAGIS, Valid: "202405011204"}, l.Frames[1])
	assert.ElementsMatch(t, []string{".04.png.123.tmp", "readme.txt", "06.jpg", "latest.png"}, l.Ignored)
}

func TestObserveDirectory_Empty(t *testing.T) {
	spec, _ := catalogs.DefaultRegistry().Lookup(1)
	l := reconcile.ObserveDirectory(nil, nil, spec, hour)
	assert.Empty(t, l.Frames)
	assert.Empty(t, l.Ignored)
}

func TestObserveDirectory_SignedNames(t *testing.T) {
	spec, _ := catalogs.DefaultRegistry().Lookup(1)
	l := reconcile.ObserveDirectory([]string{"-0.png", "+5.png", " 5.png", "05.png"}, nil, spec, hour.Add(10*time.Minute))

	require.Len(t, l.Frames, 1)
	assert.Equal(t, "05.png", l.Frames[0].Filename)
	assert.ElementsMatch(t, []string{"-0.png", "+5.png", " 5.png"}, l.Ignored)
}
