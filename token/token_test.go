package token

import (
	"sync"
	"testing"
)

func TestInternStable(t *testing.T) {
	r := NewRegistry()

	a := r.Intern("eth")
	b := r.Intern("ipv4")
	if a == b {
		t.Fatal("Distinct names must get distinct tokens")
	}

	if again := r.Intern("eth"); again != a {
		t.Fatalf("Expected stable token for repeated intern, got %d and %d", a, again)
	}
	if r.Len() != 2 {
		t.Fatalf("Expected 2 interned names, got %d", r.Len())
	}
}

func TestNullToken(t *testing.T) {
	r := NewRegistry()

	if r.Intern("") != Null {
		t.Fatal("Empty string must intern to Null")
	}

	s, ok := r.String(Null)
	if !ok || s != "" {
		t.Fatalf("Null must resolve to empty string, got %q, %v", s, ok)
	}
}

func TestReverseLookup(t *testing.T) {
	r := NewRegistry()
	tok := r.Intern("tcp.flags")

	s, ok := r.String(tok)
	if !ok {
		t.Fatal("String failed for live token")
	}
	if s != "tcp.flags" {
		t.Fatalf("Expected %q, got %q", "tcp.flags", s)
	}

	if _, ok := r.String(Token(999)); ok {
		t.Fatal("String must fail for unknown token")
	}
}

func TestInternConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	tokens := make([]Token, 16)
	for i := range tokens {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			tokens[slot] = r.Intern("shared")
		}(i)
	}
	wg.Wait()

	for _, tok := range tokens {
		if tok != tokens[0] {
			t.Fatal("Concurrent interns of one name must agree")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("Expected a single interned name, got %d", r.Len())
	}
}
