package trade

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenStrategiesSeedsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.json")
	s, err := OpenStrategies(path)
	if err != nil {
		t.Fatal(err)
	}
	list := s.List()
	if len(list) != 1 || list[0].ID != "default_1" || list[0].Enabled {
		t.Fatalf("List() = %+v", list)
	}
	if list[0].LossCutPercent != -3 || list[0].ProfitTakePercent != 5 {
		t.Errorf("thresholds = %v/%v", list[0].LossCutPercent, list[0].ProfitTakePercent)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written before any change: %v", err)
	}
}

func TestStrategyCRUDPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "strategies.json")
	s, err := OpenStrategies(path)
	if err != nil {
		t.Fatal(err)
	}

	created, err := s.Create(Strategy{
		Name:              "삼성전자 단기",
		StockCode:         "005930",
		StockName:         "삼성전자",
		Enabled:           true,
		MaxAmount:         500000,
		LossCutPercent:    -2,
		ProfitTakePercent: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(created.ID) != 8 {
		t.Errorf("id = %q, want 8 characters", created.ID)
	}
	if created.Enabled {
		t.Error("new strategy should start disabled")
	}
	if created.BuyConditions == nil || created.SellConditions == nil {
		t.Error("conditions should be empty slices, not nil")
	}

	toggled, err := s.Toggle(created.ID)
	if err != nil || !toggled.Enabled {
		t.Fatalf("Toggle() = %+v, %v", toggled, err)
	}

	name := "삼성전자 스윙"
	take := 8.0
	conds := []Condition{{Type: CondRSIBelow, Value: 25}}
	updated, err := s.Update(created.ID, StrategyPatch{Name: &name, ProfitTakePercent: &take, BuyConditions: &conds})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != name || updated.ProfitTakePercent != 8 || updated.LossCutPercent != -2 || len(updated.BuyConditions) != 1 {
		t.Errorf("Update() = %+v", updated)
	}

	reopened, err := OpenStrategies(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name || !got.Enabled || got.BuyConditions[0].Type != CondRSIBelow {
		t.Errorf("reloaded = %+v", got)
	}
	if n := len(reopened.List()); n != 2 {
		t.Errorf("reloaded %d strategies, want 2", n)
	}

	if err := reopened.Delete(created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := reopened.Get(created.ID); !errors.Is(err, ErrStrategyNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

func TestStrategyNotFound(t *testing.T) {
	s, err := OpenStrategies(filepath.Join(t.TempDir(), "s.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Toggle("missing"); !errors.Is(err, ErrStrategyNotFound) {
		t.Errorf("Toggle() error = %v", err)
	}
	if _, err := s.Update("missing", StrategyPatch{}); !errors.Is(err, ErrStrategyNotFound) {
		t.Errorf("Update() error = %v", err)
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrStrategyNotFound) {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	s, _ := OpenStrategies(filepath.Join(t.TempDir(), "s.json"))
	if _, err := s.Create(Strategy{Name: "no code"}); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("Create() error = %v, want ErrInvalidStrategy", err)
	}
}

func TestOpenStrategiesRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenStrategies(path); err == nil {
		t.Error("expected parse error")
	}
}
