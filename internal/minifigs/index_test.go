package minifigs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	err       error
	downloads int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (s *memoryStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.objects[key] = data
	return nil
}

const indexCSV = `code,name,year
sw0547,Clone Trooper (Phase 2) - Dirty,2014
sw0001a,Battle Droid Tan with Back Plate,1999
sw0605,Clone Trooper Sergeant,2015
cty0001,Town Police Officer,1978
`

func TestSearch(t *testing.T) {
	store := newMemoryStore()
	store.objects[DefaultObjectKey] = []byte(indexCSV)
	ix := NewIndex(store, "", nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"clone trooper", []string{"sw0547", "sw0605"}},
		{"TROOPER dirty", []string{"sw0547"}},
		{"trooper  clone", []string{"sw0547", "sw0605"}},
		{"droid police", nil},
		{"(phase", []string{"sw0547"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found, err := ix.Search(context.Background(), tt.query)
			require.NoError(t, err)
			var codes []string
			for _, f := range found {
				codes = append(codes, f.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestSearch_MissingIndex(t *testing.T) {
	ix := NewIndex(newMemoryStore(), "figs.csv", nil)

	found, err := ix.Search(context.Background(), "clone")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearch_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection reset")
	ix := NewIndex(store, "", nil)

	_, err := ix.Search(context.Background(), "clone")
	assert.ErrorContains(t, err, "connection reset")
}

func TestReplace(t *testing.T) {
	store := newMemoryStore()
	ix := NewIndex(store, "figs.csv", nil)

	n, err := ix.Replace(context.Background(), []Minifig{
		{Code: "sw0547", Name: "Clone Trooper &#40;Phase 2&#41;", Year: "2014"},
		{Code: "cty0001", Name: "Police, Town", Year: "1978"},
		{Code: "sw0547", Name: "Clone Trooper &#40;Phase 2&#41; - Dirty", Year: "2014"},
		{Code: " ", Name: "blank"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "code,name,year\n"+
		"sw0547,Clone Trooper (Phase 2) - Dirty,2014\n"+
		"cty0001,\"Police, Town\",1978\n",
		string(store.objects["figs.csv"]))

	found, err := ix.Search(context.Background(), "police town")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, catalog.SearchHit{Kind: catalog.KindMinifig, Number: "cty0001", Name: "Police, Town", Year: 1978}, found[0].Hit())
}

func TestParseCatalogFile_BrickLinkDownload(t *testing.T) {
	data := strings.Join([]string{
		"Category ID\tCategory Name\tNumber\tName\tYear Released\tWeight (in Grams)",
		"65\tStar Wars\tsw0547\tClone Trooper &#40;Phase 2&#41; - Dirty\t2014\t3.5",
		"67\tTown\tcty0001\tPolice \"Officer\"\t?\t3",
		"67\tTown\t\tno code\t1980\t3",
	}, "\n")

	figs, err := ParseCatalogFile(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Minifig{
		{Code: "sw0547", Name: "Clone Trooper (Phase 2) - Dirty", Year: "2014"},
		{Code: "cty0001", Name: "Police \"Officer\"", Year: ""},
	}, figs)
}

func TestParseCatalogFile_IndexShape(t *testing.T) {
	figs, err := ParseCatalogFile(strings.NewReader(indexCSV))
	require.NoError(t, err)
	require.Len(t, figs, 4)
	assert.Equal(t, Minifig{Code: "sw0001a", Name: "Battle Droid Tan with Back Plate", Year: "1999"}, figs[1])
}

func TestParseCatalogFile_Unknown(t *testing.T) {
	_, err := ParseCatalogFile(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseCatalogFile(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
