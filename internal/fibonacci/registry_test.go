package fibonacci

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/agbru/fibengine/internal/fibonacci/mocks"
)

func TestRegistry_DefaultList(t *testing.T) {
	t.Parallel()

	reg := NewDefaultRegistry(PolicyWrap, 1)
	want := []string{AlgoDoubling, AlgoIterative, AlgoRecursive}
	if diff := cmp.Diff(want, reg.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	all := reg.GetAll()
	if len(all) != len(want) {
		t.Fatalf("GetAll() returned %d calculators, want %d", len(all), len(want))
	}
	for i, c := range all {
		if c.Name() != want[i] {
			t.Errorf("GetAll()[%d].Name() = %q, want %q", i, c.Name(), want[i])
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry().Get("nope"); err == nil {
		t.Error("Get of unknown algorithm should fail")
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockCalculator(ctrl)
	mock.EXPECT().Name().Return(AlgoIterative).AnyTimes()
	mock.EXPECT().Fibonacci(gomock.Any(), uint32(7)).Return(uint32(13), nil)

	reg := NewDefaultRegistry(PolicyWrap, 1)
	reg.Register(mock)

	calc, err := reg.Get(AlgoIterative)
	if err != nil {
		t.Fatal(err)
	}
	got, err := calc.Fibonacci(context.Background(), 7)
	if err != nil || got != 13 {
		t.Errorf("replaced calculator returned %d, %v", got, err)
	}
}
