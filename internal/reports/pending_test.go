package reports

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/pkg/types"
)

func pendingFixture() []types.CustomerTree {
	tree := exportFixture()
	// Second order on the first site, already sent on both parts: it must
	// never show up in the pending view.
	sent := fixedPart("F900", true, "Luc")
	tree[0].Sites[0].Orders = append(tree[0].Sites[0].Orders, types.OrderView{
		ID:     uuid.MustParse("cccccccc-0000-0000-0000-000000000002"),
		SiteID: tree[0].Sites[0].ID,
		Frames: sent,
	})
	return tree
}

func TestPendingOrdersFlattensUnsentPartsOnly(t *testing.T) {
	t.Parallel()

	records := PendingOrders(pendingFixture())

	if len(records) != 1 {
		t.Fatalf("expected a single pending record, got %d", len(records))
	}
	record := records[0]
	if record.Part != "doors" || record.Number != "D200" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.CustomerName != "Dupont Construction" || record.SiteName != "Chantier Rue Victor Hugo" {
		t.Fatalf("parent identity missing: %+v", record)
	}
}

func TestFilterPendingByUser(t *testing.T) {
	t.Parallel()

	records := PendingOrders(pendingFixture())
	marie := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	if got := FilterPendingByUser(records, marie); len(got) != 1 {
		t.Fatalf("expected one record for the assigned user, got %d", len(got))
	}
	if got := FilterPendingByUser(records, uuid.New()); len(got) != 0 {
		t.Fatalf("expected no records for a stranger, got %d", len(got))
	}
}

func TestPendingDigestGroupsByCustomerThenSite(t *testing.T) {
	t.Parallel()

	records := PendingOrders(pendingFixture())
	digest := PendingDigest(records)

	wantFragments := []string{
		"Bonjour,",
		"**Client: Dupont Construction**",
		"  *Chantier: Chantier Rue Victor Hugo*",
		"    - D200 (Portes) - Créée le 14/03/2025",
		"Cordialement,\nL'équipe Batiserv",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(digest, fragment) {
			t.Fatalf("digest missing %q:\n%s", fragment, digest)
		}
	}
}

func TestPendingDigestMailtoEncodesSpacesAsPercent20(t *testing.T) {
	t.Parallel()

	link := PendingDigestMailto(nil)
	if !strings.HasPrefix(link, "mailto:?subject=R%C3%A9capitulatif%20des%20Commandes%20en%20Attente&body=") {
		t.Fatalf("unexpected mailto prefix: %q", link)
	}
	if strings.Contains(link, "+") {
		t.Fatalf("mailto link must not use form encoding: %q", link)
	}
}
