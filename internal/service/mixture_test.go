package service_test

import (
	"strings"
	"testing"

	"github.com/saadjs/nutricu/internal/service"
)

func TestSeedDefaultMixturesOnce(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	list, err := service.ListMixtures(sqldb)
	if err != nil {
		t.Fatalf("list mixtures: %v", err)
	}
	if len(list) != 12 {
		t.Fatalf("expected 12 seeded mixtures, got %d", len(list))
	}
	for _, m := range list {
		if !m.IsDefault {
			t.Fatalf("expected mixture %d flagged default", m.ID)
		}
	}
	added, err := service.SeedDefaultMixtures(sqldb)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected no mixtures added on reseed, got %d", added)
	}
}

func TestDeletedDefaultStaysDeleted(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if err := service.DeleteMixture(sqldb, 5); err != nil {
		t.Fatalf("delete default mixture: %v", err)
	}
	edited, err := service.UpdateMixture(sqldb, 2, service.MixtureInput{Name: "Custom HP", CaloriesPer1000ml: 1800, ProteinPer1000ml: 110})
	if err != nil {
		t.Fatalf("edit default mixture: %v", err)
	}
	if !edited.IsDefault {
		t.Fatalf("expected default flag kept on edit")
	}
	if _, err := service.SeedDefaultMixtures(sqldb); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if _, err := service.GetMixture(sqldb, 5); err == nil {
		t.Fatalf("expected deleted default not re-added")
	}
	m, err := service.GetMixture(sqldb, 2)
	if err != nil {
		t.Fatalf("get mixture: %v", err)
	}
	if m.Name != "Custom HP" || m.CaloriesPer1000ml != 1800 {
		t.Fatalf("expected user edit preserved, got %+v", m)
	}
}

func TestAddMixtureAssignsSequentialIDs(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	first, err := service.AddMixture(sqldb, service.MixtureInput{Name: "Ward formula", CaloriesPer1000ml: 1500, ProteinPer1000ml: 60})
	if err != nil {
		t.Fatalf("add mixture: %v", err)
	}
	if first.ID != 13 || first.IsDefault {
		t.Fatalf("expected user mixture 13, got %+v", first)
	}
	second, err := service.AddMixture(sqldb, service.MixtureInput{Name: "Night formula", CaloriesPer1000ml: 1000, ProteinPer1000ml: 40, IsDiabetic: true})
	if err != nil {
		t.Fatalf("add mixture: %v", err)
	}
	if second.ID != 14 {
		t.Fatalf("expected id 14, got %d", second.ID)
	}
}

func TestAddMixtureIDStartsAfterCatalogWhenEmpty(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	for id := int64(1); id <= 12; id++ {
		if err := service.DeleteMixture(sqldb, id); err != nil {
			t.Fatalf("delete mixture %d: %v", id, err)
		}
	}
	m, err := service.AddMixture(sqldb, service.MixtureInput{Name: "Only", CaloriesPer1000ml: 1000, ProteinPer1000ml: 40})
	if err != nil {
		t.Fatalf("add mixture: %v", err)
	}
	if m.ID != 13 {
		t.Fatalf("expected id 13 in empty table, got %d", m.ID)
	}
}

func TestMixtureNameUniqueCaseInsensitive(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.AddMixture(sqldb, service.MixtureInput{Name: "Ward Formula", CaloriesPer1000ml: 1500, ProteinPer1000ml: 60}); err != nil {
		t.Fatalf("add mixture: %v", err)
	}
	_, err := service.AddMixture(sqldb, service.MixtureInput{Name: "  ward formula ", CaloriesPer1000ml: 1500, ProteinPer1000ml: 60})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}

	exists, err := service.MixtureNameExists(sqldb, "WARD FORMULA", 13)
	if err != nil {
		t.Fatalf("name exists: %v", err)
	}
	if exists {
		t.Fatalf("expected own name excluded")
	}
	if _, err := service.UpdateMixture(sqldb, 13, service.MixtureInput{Name: "ward formula", CaloriesPer1000ml: 1400, ProteinPer1000ml: 60}); err != nil {
		t.Fatalf("expected rename to own name in other case allowed: %v", err)
	}
	if _, err := service.UpdateMixture(sqldb, 13, service.MixtureInput{Name: "Пептамен АФ", CaloriesPer1000ml: 1400, ProteinPer1000ml: 60}); err == nil {
		t.Fatalf("expected rename onto a default name rejected")
	}
}

func TestAddMixtureValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	cases := []service.MixtureInput{
		{Name: "", CaloriesPer1000ml: 1000, ProteinPer1000ml: 40},
		{Name: "a", CaloriesPer1000ml: 0, ProteinPer1000ml: 40},
		{Name: "a", CaloriesPer1000ml: 1000, ProteinPer1000ml: -1},
	}
	for _, in := range cases {
		if _, err := service.AddMixture(sqldb, in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
}

func TestResolveMixturesSkipsUnknown(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	got, err := service.ResolveMixtures(sqldb, []int64{5, 99, 2, 5})
	if err != nil {
		t.Fatalf("resolve mixtures: %v", err)
	}
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 2 {
		t.Fatalf("expected mixtures 5 and 2 in request order, got %+v", got)
	}
}

func TestParseMixtureID(t *testing.T) {
	t.Parallel()
	if id, err := service.ParseMixtureID(" 12 "); err != nil || id != 12 {
		t.Fatalf("expected 12, got %d (%v)", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "x"} {
		if _, err := service.ParseMixtureID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
