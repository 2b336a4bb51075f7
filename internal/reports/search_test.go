package reports

import (
	"testing"

	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/pkg/types"
)

func searchOptions() []types.OptionView {
	return []types.OptionView{
		{
			ID:      uuid.MustParse("dddddddd-0000-0000-0000-000000000001"),
			Name:    "Seuil renforcé",
			Details: "seuil aluminium pour portes coupe-feu",
		},
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	t.Parallel()

	if got := Search(exportFixture(), searchOptions(), ""); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if got := Search(exportFixture(), searchOptions(), "   "); len(got) != 0 {
		t.Fatalf("whitespace query must match nothing, got %d", len(got))
	}
}

func TestSearchSiteCarriesCustomerContext(t *testing.T) {
	t.Parallel()

	got := Search(exportFixture(), nil, "victor hugo")
	if len(got) != 1 {
		t.Fatalf("expected one site hit, got %d", len(got))
	}
	hit := got[0]
	if hit.Kind != types.SearchResultSite {
		t.Fatalf("unexpected kind %q", hit.Kind)
	}
	if hit.Context != "Dupont Construction" {
		t.Fatalf("expected the owning customer as context, got %q", hit.Context)
	}
	if hit.CustomerID == nil || hit.SiteID == nil {
		t.Fatal("site hit must carry navigation ids")
	}
}

func TestSearchOrderNumberContext(t *testing.T) {
	t.Parallel()

	got := Search(exportFixture(), nil, "d200")
	if len(got) != 1 {
		t.Fatalf("expected one order hit, got %d", len(got))
	}
	if got[0].Context != "Dupont Construction / Chantier Rue Victor Hugo" {
		t.Fatalf("unexpected context %q", got[0].Context)
	}
	if got[0].OrderID == nil {
		t.Fatal("order hit must carry the order id")
	}
}

func TestSearchMatchesOptionDetails(t *testing.T) {
	t.Parallel()

	got := Search(nil, searchOptions(), "coupe-feu")
	if len(got) != 1 {
		t.Fatalf("expected one option hit, got %d", len(got))
	}
	if got[0].Kind != types.SearchResultOption || got[0].Context != "Special Options" {
		t.Fatalf("unexpected option hit %+v", got[0])
	}
}

func TestSearchDiscoveryOrder(t *testing.T) {
	t.Parallel()

	// "chantier" matches both sites of the first customer; tree order wins.
	got := Search(exportFixture(), nil, "chantier")
	if len(got) < 2 {
		t.Fatalf("expected at least two hits, got %d", len(got))
	}
	if got[0].Label != "Chantier Rue Victor Hugo" || got[1].Label != "Chantier sans commande" {
		t.Fatalf("unexpected ordering: %q then %q", got[0].Label, got[1].Label)
	}
}
