package cloud

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakePageSource serves a fixed script of pages keyed by marker and counts
// fetches.
type fakePageSource struct {
	pages   map[string]*ResultPage[string]
	fetches int
	failOn  string
	err     error
}

func (s *fakePageSource) ListPage(_ context.Context, marker string) (*ResultPage[string], error) {
	s.fetches++
	if s.err != nil && marker == s.failOn {
		return nil, s.err
	}
	page, ok := s.pages[marker]
	if !ok {
		return nil, errors.New("unknown marker: " + marker)
	}
	return page, nil
}

func threePageSource() *fakePageSource {
	return &fakePageSource{
		pages: map[string]*ResultPage[string]{
			"":  {Data: []string{"i-1", "i-2"}, Marker: "a", IsTruncated: true},
			"a": {Data: []string{"i-3", "i-4"}, Marker: "b", IsTruncated: true},
			"b": {Data: []string{"i-5", "i-6"}, IsTruncated: false},
		},
	}
}

func TestIterator_FlattensPagesInOrder(t *testing.T) {
	src := threePageSource()

	got, err := CollectAll(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"i-1", "i-2", "i-3", "i-4", "i-5", "i-6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if src.fetches != 3 {
		t.Errorf("Expected 3 page fetches, got %d", src.fetches)
	}
}

func TestIterator_IsLazy(t *testing.T) {
	src := threePageSource()
	it := NewIterator[string](src)

	if src.fetches != 0 {
		t.Fatalf("Expected no fetch before the first Next, got %d", src.fetches)
	}

	if !it.Next(context.Background()) {
		t.Fatal("Expected a first item")
	}
	if src.fetches != 1 {
		t.Errorf("Expected exactly 1 fetch after consuming the first item, got %d", src.fetches)
	}
	if it.Item() != "i-1" {
		t.Errorf("Expected i-1, got %s", it.Item())
	}
}

func TestIterator_Restartable(t *testing.T) {
	src := threePageSource()
	ctx := context.Background()

	first, err := CollectAll(ctx, src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := CollectAll(ctx, src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected a fresh iteration to reproduce %v, got %v", first, second)
	}
	// No caching: the second iteration re-fetched every page.
	if src.fetches != 6 {
		t.Errorf("Expected 6 fetches across two full iterations, got %d", src.fetches)
	}
}

func TestIterator_StopsWhenNotTruncated(t *testing.T) {
	// A stale marker on the final page must not be followed.
	src := &fakePageSource{
		pages: map[string]*ResultPage[string]{
			"": {Data: []string{"only"}, Marker: "stale", IsTruncated: false},
		},
	}

	got, err := CollectAll(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 1 || got[0] != "only" {
		t.Errorf("Expected a single item, got %v", got)
	}
	if src.fetches != 1 {
		t.Errorf("Expected 1 fetch, got %d", src.fetches)
	}
}

func TestIterator_SkipsEmptyIntermediatePages(t *testing.T) {
	src := &fakePageSource{
		pages: map[string]*ResultPage[string]{
			"":  {Data: nil, Marker: "a", IsTruncated: true},
			"a": {Data: []string{"x"}, IsTruncated: false},
		},
	}

	got, err := CollectAll(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Expected [x], got %v", got)
	}
}

func TestIterator_FetchErrorEndsIteration(t *testing.T) {
	backendErr := errors.New("list failed")
	src := threePageSource()
	src.failOn = "b"
	src.err = backendErr

	it := NewIterator[string](src)
	ctx := context.Background()

	var got []string
	for it.Next(ctx) {
		got = append(got, it.Item())
	}

	// Items yielded before the failure stay delivered.
	want := []string{"i-1", "i-2", "i-3", "i-4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v before the failure, got %v", want, got)
	}
	if !errors.Is(it.Err(), backendErr) {
		t.Errorf("Expected the backend error verbatim, got: %v", it.Err())
	}
	// Next stays false after the error.
	if it.Next(ctx) {
		t.Error("Expected Next to keep returning false after a failure")
	}
}

func TestIterator_EmptySource(t *testing.T) {
	src := &fakePageSource{
		pages: map[string]*ResultPage[string]{
			"": {IsTruncated: false},
		},
	}

	got, err := CollectAll(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no items, got %v", got)
	}
}

func TestPageFunc_AdaptsFunction(t *testing.T) {
	src := PageFunc[int](func(_ context.Context, marker string) (*ResultPage[int], error) {
		if marker == "" {
			return &ResultPage[int]{Data: []int{1, 2}, Marker: "m", IsTruncated: true}, nil
		}
		return &ResultPage[int]{Data: []int{3}, IsTruncated: false}, nil
	})

	got, err := CollectAll(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", got)
	}
}
