package index

import (
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/btree"
	"pagedb/common"
	"pagedb/config"
	"pagedb/disk"
	"pagedb/types"
)

var fixtureRids = []btree.RID{{Page: 1, Slot: 1}, {Page: 2, Slot: 3}, {Page: 1, Slot: 2}, {Page: 3, Slot: 5}, {Page: 4, Slot: 4}, {Page: 3, Slot: 2}}

func newTestManager(t *testing.T) *Manager {
	common.SetLogOutput(io.Discard)
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	m, err := NewManager(cfg)
	require.NoError(t, err)
	return m
}

func createAndOpen(t *testing.T, m *Manager, keyType types.DataType, n int) (string, *Handle) {
	name := uuid.New().String() + ".idx"
	require.NoError(t, m.CreateBtree(name, keyType, n))
	h, err := m.OpenBtree(name)
	require.NoError(t, err)
	return name, h
}

func mustParseAll(literals ...string) []types.Value {
	res := make([]types.Value, len(literals))
	for i, l := range literals {
		res[i] = types.MustParse(l)
	}
	return res
}

func TestIndex_Should_Find_Every_Inserted_Key(t *testing.T) {
	m := newTestManager(t)
	keys := mustParseAll("i1", "i11", "i13", "i17", "i23", "i52")
	_, h := createAndOpen(t, m, types.Int, 2)

	for i, k := range keys {
		require.NoError(t, h.InsertKey(k, fixtureRids[i]))
	}

	assert.Equal(t, 6, h.NumEntries())
	assert.Equal(t, types.Int, h.KeyType())
	for i, k := range keys {
		rid, err := h.FindKey(k)
		assert.NoError(t, err)
		assert.Equal(t, fixtureRids[i], rid)
	}
	require.NoError(t, h.Close())
}

func TestIndex_Should_Build_Expected_Node_Counts_For_Float_And_String_Keys(t *testing.T) {
	m := newTestManager(t)

	_, h := createAndOpen(t, m, types.Float, 2)
	for i, k := range mustParseAll("f2.0", "f1.5", "f0.1", "f4.5", "f10.5", "f20.4") {
		require.NoError(t, h.InsertKey(k, fixtureRids[i]))
	}
	assert.Equal(t, 4, h.NumNodes())
	assert.Equal(t, 6, h.NumEntries())
	require.NoError(t, h.Close())

	_, h = createAndOpen(t, m, types.String, 2)
	for i, k := range mustParseAll("sxyz", "sabc", "scs525", "siit", "sxee", "sbird") {
		require.NoError(t, h.InsertKey(k, fixtureRids[i]))
	}
	assert.Equal(t, 3, h.NumNodes())
	assert.Equal(t, 6, h.NumEntries())
	require.NoError(t, h.Close())
}

func TestIndex_Should_Not_Find_Deleted_Keys(t *testing.T) {
	m := newTestManager(t)
	keys := mustParseAll("i1", "i11", "i13", "i17", "i23", "i52")
	rnd := rand.New(rand.NewSource(7))

	for iter := 0; iter < 50; iter++ {
		name, h := createAndOpen(t, m, types.Int, 2)
		for i, k := range keys {
			require.NoError(t, h.InsertKey(k, fixtureRids[i]))
		}

		deletes := make([]bool, len(keys))
		for i := range keys {
			if rnd.Intn(2) == 0 {
				deletes[i] = true
				require.NoError(t, h.DeleteKey(keys[i]))
			}
		}

		for i, k := range keys {
			rid, err := h.FindKey(k)
			if deletes[i] {
				assert.ErrorIs(t, err, common.ErrKeyNotFound)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, fixtureRids[i], rid)
			}
		}

		require.NoError(t, h.Close())
		require.NoError(t, m.DeleteBtree(name))
	}
}

func TestIndex_Scan_Should_Return_Rids_In_Key_Order(t *testing.T) {
	m := newTestManager(t)
	_, h := createAndOpen(t, m, types.Int, 2)

	perm := rand.New(rand.NewSource(3)).Perm(300)
	for _, i := range perm {
		require.NoError(t, h.InsertKey(types.NewInt(int32(i)), btree.RID{Page: int32(i), Slot: 1}))
	}

	sc, err := h.OpenTreeScan()
	require.NoError(t, err)
	for i := 0; i < 300; i++ {
		rid, err := sc.NextEntry()
		require.NoError(t, err)
		assert.Equal(t, int32(i), rid.Page)
	}
	_, err = sc.NextEntry()
	assert.ErrorIs(t, err, common.ErrNoMoreEntries)
	sc.Close()

	_, err = sc.NextEntry()
	assert.ErrorIs(t, err, common.ErrNoMoreEntries)
	require.NoError(t, h.Close())
}

func TestIndex_Should_Keep_Entries_Across_Close_And_Open(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.String, 4)

	ref := map[string]btree.RID{}
	for i := 0; i < 1000; i++ {
		k := uuid.New().String()
		rid := btree.RID{Page: int32(i), Slot: int32(i % 13)}
		require.NoError(t, h.InsertKey(types.NewString(k), rid))
		ref[k] = rid
	}
	require.NoError(t, h.Close())

	h, err := m.OpenBtree(name)
	require.NoError(t, err)
	assert.Equal(t, 1000, h.NumEntries())
	assert.Equal(t, types.String, h.KeyType())
	assert.Greater(t, h.NumNodes(), 1)
	for k, want := range ref {
		rid, err := h.FindKey(types.NewString(k))
		require.NoError(t, err)
		assert.Equal(t, want, rid)
	}

	require.NoError(t, h.DeleteKey(types.NewString(uuid.New().String())))
	for k := range ref {
		require.NoError(t, h.DeleteKey(types.NewString(k)))
		delete(ref, k)
		if len(ref) == 500 {
			break
		}
	}
	require.NoError(t, h.Close())

	h, err = m.OpenBtree(name)
	require.NoError(t, err)
	assert.Equal(t, 500, h.NumEntries())
	for k, want := range ref {
		rid, err := h.FindKey(types.NewString(k))
		require.NoError(t, err)
		assert.Equal(t, want, rid)
	}
	require.NoError(t, h.Close())
}

func TestOpenBtree_Should_Fail_When_Snapshot_Is_Corrupt(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.Int, 2)
	for i := 0; i < 100; i++ {
		require.NoError(t, h.InsertKey(types.NewInt(int32(i)), btree.RID{Page: int32(i)}))
	}
	require.NoError(t, h.Close())

	f, err := disk.OpenPageFile(m.cfg.Path(name))
	require.NoError(t, err)
	buf := make([]byte, disk.PageSize)
	require.NoError(t, f.ReadPage(1, buf))
	buf[10] ^= 0xff
	require.NoError(t, f.WritePage(1, buf))
	require.NoError(t, f.Close())

	_, err = m.OpenBtree(name)
	assert.ErrorIs(t, err, common.ErrCorruptSnapshot)

	// a failed open leaves the index closed
	require.NoError(t, m.DeleteBtree(name))
}

func TestOpenBtree_Should_Fail_When_File_Is_Not_An_Index(t *testing.T) {
	m := newTestManager(t)
	name := uuid.New().String()
	require.NoError(t, disk.CreatePageFile(m.cfg.Path(name)))

	_, err := m.OpenBtree(name)

	assert.ErrorIs(t, err, common.ErrIndexNotCreated)
}

func TestDeleteBtree_Should_Remove_Index_File(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.Int, 2)

	assert.ErrorIs(t, m.DeleteBtree(name), common.ErrIndexAlreadyOpen)
	require.NoError(t, h.Close())
	require.NoError(t, m.DeleteBtree(name))

	_, err := m.OpenBtree(name)
	assert.ErrorIs(t, err, common.ErrFileNotFound)
	assert.ErrorIs(t, m.DeleteBtree(name), common.ErrFileNotFound)
}

func TestOpenBtree_Should_Refuse_Second_Open(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.Int, 2)

	_, err := m.OpenBtree(name)
	assert.ErrorIs(t, err, common.ErrIndexAlreadyOpen)

	require.NoError(t, h.Close())
	h, err = m.OpenBtree(name)
	require.NoError(t, err)
	require.NoError(t, h.Close())
}

func TestCreateBtree_Should_Reject_Orders_That_Do_Not_Fit(t *testing.T) {
	m := newTestManager(t)

	err := m.CreateBtree("big", types.Int, btree.MaxOrder(types.Int))
	assert.ErrorIs(t, err, common.ErrOrderTooHighForPage)

	err = m.CreateBtree("small", types.Int, 1)
	assert.ErrorIs(t, err, common.ErrOrderTooLow)
}

func TestHandle_Should_Reject_Calls_After_Close(t *testing.T) {
	m := newTestManager(t)
	_, h := createAndOpen(t, m, types.Int, 2)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	assert.ErrorIs(t, h.InsertKey(types.NewInt(1), btree.RID{}), common.ErrIndexClosed)
	_, err := h.FindKey(types.NewInt(1))
	assert.ErrorIs(t, err, common.ErrIndexClosed)
	assert.ErrorIs(t, h.DeleteKey(types.NewInt(1)), common.ErrIndexClosed)
	_, err = h.OpenTreeScan()
	assert.ErrorIs(t, err, common.ErrIndexClosed)
}

func TestManager_Shutdown_Should_Persist_Open_Indexes(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.Float, 2)
	require.NoError(t, h.InsertKey(types.NewFloat(2.5), btree.RID{Page: 9, Slot: 9}))

	require.NoError(t, m.Shutdown())

	h, err := m.OpenBtree(name)
	require.NoError(t, err)
	rid, err := h.FindKey(types.NewFloat(2.5))
	assert.NoError(t, err)
	assert.Equal(t, btree.RID{Page: 9, Slot: 9}, rid)
	require.NoError(t, h.Close())
}

func TestInsertKey_Should_Reject_Strings_Longer_Than_Max_Key_Length(t *testing.T) {
	m := newTestManager(t)
	name, h := createAndOpen(t, m, types.String, 2)

	long := types.NewString(strings.Repeat("a", 70000))
	assert.ErrorIs(t, h.InsertKey(long, btree.RID{Page: 1}), common.ErrInvalidValue)
	require.NoError(t, h.InsertKey(types.NewString("b"), btree.RID{Page: 2}))
	require.NoError(t, h.Close())

	h, err := m.OpenBtree(name)
	require.NoError(t, err)
	assert.Equal(t, 1, h.NumEntries())
	rid, err := h.FindKey(types.NewString("b"))
	assert.NoError(t, err)
	assert.Equal(t, btree.RID{Page: 2}, rid)
	require.NoError(t, h.Close())
}

func TestScan_Should_Fail_Instead_Of_Reading_Freed_Nodes(t *testing.T) {
	m := newTestManager(t)
	_, h := createAndOpen(t, m, types.Int, 2)
	for i := 0; i < 20; i++ {
		require.NoError(t, h.InsertKey(types.NewInt(int32(i)), btree.RID{Page: int32(i)}))
	}

	sc, err := h.OpenTreeScan()
	require.NoError(t, err)
	_, err = sc.NextEntry()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.NoError(t, h.DeleteKey(types.NewInt(int32(i))))
	}
	_, err = sc.NextEntry()
	assert.ErrorIs(t, err, common.ErrTreeModified)

	require.NoError(t, h.InsertKey(types.NewInt(1), btree.RID{Page: 1}))
	sc, err = h.OpenTreeScan()
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = sc.NextEntry()
	assert.ErrorIs(t, err, common.ErrIndexClosed)
	_, _, err = sc.NextKeyEntry()
	assert.ErrorIs(t, err, common.ErrIndexClosed)
}
