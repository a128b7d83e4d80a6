package symbol_test

import (
	"sync"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
)

func TestInternIdempotent(t *testing.T) {
	in := symbol.New()

	a := in.Intern("hello")
	b := in.Intern("hello")

	if a != b {
		t.Fatalf("expected same symbol for repeated intern, got %v != %v", a, b)
	}

	if in.String(a) != "hello" {
		t.Fatalf("roundtrip failed: got %q", in.String(a))
	}
}

func TestInternDistinct(t *testing.T) {
	in := symbol.New()

	a := in.Intern("foo")
	b := in.Intern("bar")

	if a == b {
		t.Fatalf("distinct strings interned to the same symbol")
	}
}

func TestInternConcurrent(t *testing.T) {
	in := symbol.New()

	var wg sync.WaitGroup

	ids := make([]symbol.Symbol, 64)

	for i := 0; i < 64; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			ids[i] = in.Intern("shared")
		}(i)
	}

	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent intern produced divergent symbols")
		}
	}
}

func TestDefaultInterner(t *testing.T) {
	a := symbol.Intern("midenc")
	b := symbol.Intern("midenc")

	if a != b {
		t.Fatalf("default interner not idempotent")
	}
}
