package main

import (
	"os"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "digest"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("find %s: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("missing --config flag")
	}
}

func TestDigestRequiresJWTSecret(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("JWT_SECRET", "")
	root := newRootCmd()
	root.SetArgs([]string{"digest"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected config error without JWT_SECRET")
	}
}
