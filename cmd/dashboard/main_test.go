package main

import (
	"testing"

	"invest-dashboard/internal/store"
)

func TestPickUniverse(t *testing.T) {
	configured := []store.Stock{
		{Code: "069500", Name: "KODEX 200"},
		{Code: "005930", Name: "삼성전자"},
	}

	got := pickUniverse(configured, []string{"005930", "123456"})
	if len(got) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(got))
	}
	if got[0] != (store.Stock{Code: "005930", Name: "삼성전자"}) {
		t.Errorf("known code should keep its configured name, got %+v", got[0])
	}
	if got[1] != (store.Stock{Code: "123456", Name: "123456"}) {
		t.Errorf("unknown code should use the code as name, got %+v", got[1])
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "indicators", "report", "eod"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if f := root.PersistentFlags().Lookup("config"); f == nil || f.DefValue != "config.yaml" {
		t.Errorf("--config flag missing or wrong default")
	}
}
