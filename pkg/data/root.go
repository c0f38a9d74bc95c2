package data

import (
	"fmt"
	"sort"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/pasenov/coverage/pkg/dataset"
)

// TreeName is the tree holding one entry per event.
const TreeName = "Events"

// RootSource reads the Events tree of a ROOT file.
type RootSource struct {
	path string
	file *riofs.File
	tree rtree.Tree
}

// OpenRoot opens path and locates its Events tree.
func OpenRoot(path string) (*RootSource, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	obj, err := f.Get(TreeName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("data: %s: %q is a %T, not a tree", path, TreeName, obj)
	}
	return &RootSource{path: path, file: f, tree: tree}, nil
}

func (s *RootSource) Name() string   { return s.path }
func (s *RootSource) Entries() int64 { return s.tree.Entries() }
func (s *RootSource) Close() error   { return s.file.Close() }

func (s *RootSource) Columns() []string {
	rvars := rtree.NewReadVars(s.tree)
	out := make([]string, len(rvars))
	for i, rv := range rvars {
		out[i] = rv.Name
	}
	sort.Strings(out)
	return out
}

func (s *RootSource) ReadRange(start, end int64, columns []string) (*Table, error) {
	start, end = Clip(start, end, s.Entries())
	out := NewTable(start, end)

	all := rtree.NewReadVars(s.tree)
	byName := make(map[string]rtree.ReadVar, len(all))
	for _, rv := range all {
		byName[rv.Name] = rv
	}
	rvars := all
	if columns != nil {
		rvars = make([]rtree.ReadVar, 0, len(columns))
		for _, c := range columns {
			rv, ok := byName[c]
			if !ok {
				return nil, missing(s.path, c)
			}
			rvars = append(rvars, rv)
		}
	}
	if start == end || len(rvars) == 0 {
		return out, nil
	}

	r, err := rtree.NewReader(s.tree, rvars, rtree.WithRange(start, end))
	if err != nil {
		return nil, fmt.Errorf("data: reader for %s [%d, %d): %w", s.path, start, end, err)
	}
	defer r.Close()

	err = r.Read(func(ctx rtree.RCtx) error {
		for _, rv := range rvars {
			if err := out.appendValue(rv.Name, rv.Value); err != nil {
				return fmt.Errorf("entry %d: %w", ctx.Entry, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", s.path, err)
	}
	return out, nil
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func (t *Table) addScalar(name string, v float64, dt dataset.DType) {
	t.Scalars[name] = append(t.Scalars[name], v)
	t.DTypes[name] = dt
}

func addList[T number](t *Table, name string, vs []T, dt dataset.DType) {
	row := make([]float64, len(vs))
	for i, v := range vs {
		row[i] = float64(v)
	}
	t.Jagged[name] = append(t.Jagged[name], row)
	t.DTypes[name] = dt
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// appendValue converts one entry of a read variable. Slices are copied, the
// reader reuses their storage between entries.
func (t *Table) appendValue(name string, ptr any) error {
	switch v := ptr.(type) {
	case *float32:
		t.addScalar(name, float64(*v), dataset.Float32)
	case *float64:
		t.addScalar(name, *v, dataset.Float64)
	case *bool:
		t.addScalar(name, b2f(*v), dataset.Int)
	case *int8:
		t.addScalar(name, float64(*v), dataset.Int)
	case *int16:
		t.addScalar(name, float64(*v), dataset.Int)
	case *int32:
		t.addScalar(name, float64(*v), dataset.Int)
	case *int64:
		t.addScalar(name, float64(*v), dataset.Int)
	case *uint8:
		t.addScalar(name, float64(*v), dataset.Int)
	case *uint16:
		t.addScalar(name, float64(*v), dataset.Int)
	case *uint32:
		t.addScalar(name, float64(*v), dataset.Int)
	case *uint64:
		t.addScalar(name, float64(*v), dataset.Int)
	case *[]float32:
		addList(t, name, *v, dataset.Float32)
	case *[]float64:
		addList(t, name, *v, dataset.Float64)
	case *[]int8:
		addList(t, name, *v, dataset.Int)
	case *[]int16:
		addList(t, name, *v, dataset.Int)
	case *[]int32:
		addList(t, name, *v, dataset.Int)
	case *[]int64:
		addList(t, name, *v, dataset.Int)
	case *[]uint8:
		addList(t, name, *v, dataset.Int)
	case *[]uint16:
		addList(t, name, *v, dataset.Int)
	case *[]uint32:
		addList(t, name, *v, dataset.Int)
	case *[]uint64:
		addList(t, name, *v, dataset.Int)
	case *[]bool:
		row := make([]float64, len(*v))
		for i, b := range *v {
			row[i] = b2f(b)
		}
		t.Jagged[name] = append(t.Jagged[name], row)
		t.DTypes[name] = dataset.Int
	default:
		return fmt.Errorf("column %q: unsupported type %T", name, ptr)
	}
	return nil
}
