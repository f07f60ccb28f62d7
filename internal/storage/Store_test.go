package storage

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SaveLoad(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Save("rec", record{Name: "a", Count: 2}))

	var got record
	require.True(t, s.Load("rec", &got))
	assert.Equal(t, record{Name: "a", Count: 2}, got)
	assert.True(t, s.Has("rec"))
}

func TestStore_Overwrite(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Save(KeyUserRole, "landowner"))
	require.NoError(t, s.Save(KeyUserRole, "beekeeper"))

	var role string
	require.True(t, s.Load(KeyUserRole, &role))
	assert.Equal(t, "beekeeper", role)
	assert.Equal(t, len(KeyUserRole)+len(`"beekeeper"`), s.Size())
}

func TestStore_LoadAbsent(t *testing.T) {
	s := NewStore(0)
	var v string
	assert.False(t, s.Load("missing", &v))
	assert.False(t, s.Has("missing"))
}

func TestStore_LoadUnparsableIsAbsent(t *testing.T) {
	s := NewStore(0)
	s.Replace(map[string]json.RawMessage{"broken": json.RawMessage(`{"name":`)})

	var got record
	assert.False(t, s.Load("broken", &got))
	assert.True(t, s.Has("broken"))
}

func TestStore_LoadWrongShapeIsAbsent(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Save("list", []int{1, 2}))

	var got record
	assert.False(t, s.Load("list", &got))
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Save("a", 1))
	s.Remove("a")
	s.Remove("never-set")

	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Size())
}

func TestStore_QuotaKeepsPriorValue(t *testing.T) {
	s := NewStore(20)
	require.NoError(t, s.Save("k", "short"))

	err := s.Save("k", "a value that is far too long for the quota")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	var v string
	require.True(t, s.Load("k", &v))
	assert.Equal(t, "short", v)
	assert.Equal(t, len("k")+len(`"short"`), s.Size())
}

func TestStore_QuotaCountsReplacedValue(t *testing.T) {
	s := NewStore(12)
	require.NoError(t, s.Save("k", "12345678"))
	// replacing with a value of the same size fits
	assert.NoError(t, s.Save("k", "87654321"))
}

func TestStore_UnencodableValue(t *testing.T) {
	s := NewStore(0)
	err := s.Save("ch", make(chan int))
	assert.Error(t, err)
	assert.False(t, s.Has("ch"))
}

func TestStore_KeysSorted(t *testing.T) {
	s := NewStore(0)
	for _, k := range []string{KeyWeatherCache, KeyUserPlots, KeyUserRole} {
		require.NoError(t, s.Save(k, true))
	}
	assert.Equal(t, []string{"userRole", "user_plots", "weatherCache"}, s.Keys())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Save("k", "v"))

	snap := s.Snapshot()
	snap["k"][1] = 'X'

	var v string
	require.True(t, s.Load("k", &v))
	assert.Equal(t, "v", v)
}

func TestStore_ReplaceIgnoresQuota(t *testing.T) {
	s := NewStore(4)
	s.Replace(map[string]json.RawMessage{
		"first":  json.RawMessage(`"0123456789"`),
		"second": json.RawMessage(`[1,2,3]`),
	})

	assert.Equal(t, []string{"first", "second"}, s.Keys())
	assert.Equal(t, len("first")+12+len("second")+7, s.Size())

	var nums []int
	require.True(t, s.Load("second", &nums))
	assert.Equal(t, []int{1, 2, 3}, nums)
}
