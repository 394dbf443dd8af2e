package main

import "testing"

func TestMainDelegatesToExecute(t *testing.T) {
	orig := execute
	t.Cleanup(func() { execute = orig })

	called := false
	execute = func() { called = true }

	main()

	if !called {
		t.Fatalf("expected execute to be called")
	}
}
