package util_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jsphweid/sightread/util"
	"github.com/stretchr/testify/assert"
)

func TestGetKeys(t *testing.T) {
	assert := assert.New(t)
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := util.GetKeys(m)
	sort.Strings(keys)
	assert.Equal([]string{"a", "b", "c"}, keys)
}

func TestGobRoundTrip(t *testing.T) {
	assert := assert.New(t)

	type payload struct {
		Name  string
		Count int
	}
	raw, err := util.EncodeGob(payload{Name: "x", Count: 7})
	assert.NoError(err)

	got, err := util.DecodeGob[payload](raw)
	assert.NoError(err)
	assert.Equal(payload{Name: "x", Count: 7}, got)
}

func TestDecodeGobGarbage(t *testing.T) {
	assert := assert.New(t)
	_, err := util.DecodeGob[int]([]byte{0x00, 0x01})
	assert.Error(err)
}

func TestMinAndSum(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3, util.Min(3, 5))
	assert.Equal(3, util.Min(5, 3))
	assert.Equal(10, util.Sum([]int{1, 2, 3, 4}))
	assert.Equal(1.5, util.Sum([]float64{1, 0.5}))
}

func TestGatherAllSessionPaths(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	for _, name := range []string{"a.session", "b.session", "c.txt"} {
		assert.NoError(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	paths := util.GatherAllSessionPaths(dir, 0)
	assert.Len(paths, 2)

	paths = util.GatherAllSessionPaths(dir, 1)
	assert.Len(paths, 1)
}
