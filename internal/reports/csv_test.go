package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

func fixedPart(number string, sent bool, user string) *dbtypes.OrderPart {
	return &dbtypes.OrderPart{
		Number:       number,
		IsSent:       sent,
		CreationDate: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		UserID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		UserName:     user,
		Notes:        "",
	}
}

func exportFixture() []types.CustomerTree {
	customerID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	emptyCustomerID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	siteID := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	emptySiteID := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	orderID := uuid.MustParse("cccccccc-0000-0000-0000-000000000001")

	return []types.CustomerTree{
		{
			ID:    customerID,
			Name:  "Dupont Construction",
			Notes: "client historique",
			Sites: []types.SiteTree{
				{
					ID:         siteID,
					CustomerID: customerID,
					Name:       "Chantier Rue Victor Hugo",
					Orders: []types.OrderView{
						{
							ID:     orderID,
							SiteID: siteID,
							Frames: fixedPart("F100", true, "Marie"),
							Doors:  fixedPart("D200", false, "Marie"),
						},
					},
				},
				{
					ID:         emptySiteID,
					CustomerID: customerID,
					Name:       "Chantier sans commande",
				},
			},
		},
		{
			ID:    emptyCustomerID,
			Name:  "SARL Sans Chantier",
			Notes: "",
		},
	}
}

func TestExportCSVLayout(t *testing.T) {
	t.Parallel()

	tree := exportFixture()
	selected := []uuid.UUID{tree[0].ID, tree[1].ID}

	out := ExportCSV(tree, selected)

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("expected BOM prefix")
	}

	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	// header + 2 part rows + empty-site row + empty-customer row
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}

	if lines[0] != "CustomerID,CustomerName,CustomerNotes,SiteID,SiteName,SiteGeneralInfo,OrderID,OrderPart,OrderNumber,OrderStatus,OrderCreationDate,OrderAssignedUser,OrderNotes" {
		t.Fatalf("unexpected header: %q", lines[0])
	}

	if !strings.Contains(lines[1], "Huisseries,F100,Envoyée,14/03/2025 09:30:00,Marie") {
		t.Fatalf("unexpected frames row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Portes,D200,En attente") {
		t.Fatalf("unexpected doors row: %q", lines[2])
	}

	emptySiteRow := lines[3]
	if !strings.HasSuffix(emptySiteRow, ",,,,,,,") {
		t.Fatalf("expected blank order columns on empty site row: %q", emptySiteRow)
	}
	emptyCustomerRow := lines[4]
	if strings.Count(emptyCustomerRow, ",") != 12 {
		t.Fatalf("expected 13 columns on empty customer row: %q", emptyCustomerRow)
	}
}

func TestExportCSVIsDeterministic(t *testing.T) {
	t.Parallel()

	tree := exportFixture()
	selected := []uuid.UUID{tree[0].ID}

	first := ExportCSV(tree, selected)
	second := ExportCSV(tree, selected)
	if first != second {
		t.Fatal("expected byte-identical output for an unchanged tree")
	}
}

func TestExportCSVSkipsUnselectedCustomers(t *testing.T) {
	t.Parallel()

	tree := exportFixture()
	out := ExportCSV(tree, []uuid.UUID{tree[1].ID})

	if strings.Contains(out, "Dupont Construction") {
		t.Fatal("unselected customer leaked into export")
	}
	if !strings.Contains(out, "SARL Sans Chantier") {
		t.Fatal("selected customer missing from export")
	}
}

func TestExportCSVEmptySelectionExportsAll(t *testing.T) {
	t.Parallel()

	tree := exportFixture()
	out := ExportCSV(tree, nil)

	if !strings.Contains(out, "Dupont Construction") || !strings.Contains(out, "SARL Sans Chantier") {
		t.Fatal("empty selection must export every customer")
	}
}

func TestEscapeCSVFieldRoundTrip(t *testing.T) {
	t.Parallel()

	original := "Nom, \"spécial\"\navec retour"
	escaped := escapeCSVField(original)

	if escaped != "\"Nom, \"\"spécial\"\"\navec retour\"" {
		t.Fatalf("unexpected escaping: %q", escaped)
	}

	// A standard CSV reader recovers the original: strip the wrapping
	// quotes, collapse doubled quotes.
	inner := strings.TrimSuffix(strings.TrimPrefix(escaped, "\""), "\"")
	recovered := strings.ReplaceAll(inner, "\"\"", "\"")
	if recovered != original {
		t.Fatalf("round trip failed: %q", recovered)
	}
}

func TestEscapeCSVFieldLeavesPlainValues(t *testing.T) {
	t.Parallel()

	if got := escapeCSVField("F100"); got != "F100" {
		t.Fatalf("plain value must pass through, got %q", got)
	}
}

func TestExportFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
	if got := ExportFileName(now); got != "export_batiserv_2025-07-01.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}
