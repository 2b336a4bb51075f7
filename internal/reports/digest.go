package reports

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/batiserv/batiserv-backend/pkg/enums"
	"github.com/batiserv/batiserv-backend/pkg/types"
)

const (
	digestSubject = "Récapitulatif des Commandes en Attente"
	digestDateFmt = "02/01/2006"
)

// PendingDigest renders the pending records as a French plain-text summary
// grouped by customer then site, preserving first-seen order.
func PendingDigest(records []types.PendingOrderRecord) string {
	var body strings.Builder
	body.WriteString("Bonjour,\n\nVoici la liste des commandes actuellement en attente :\n\n---\n\n")

	type siteGroup struct {
		name    string
		records []types.PendingOrderRecord
	}
	type customerGroup struct {
		name  string
		sites []*siteGroup
	}

	var groups []*customerGroup
	customerIndex := map[string]*customerGroup{}
	for _, record := range records {
		customer, ok := customerIndex[record.CustomerName]
		if !ok {
			customer = &customerGroup{name: record.CustomerName}
			customerIndex[record.CustomerName] = customer
			groups = append(groups, customer)
		}
		var site *siteGroup
		for _, candidate := range customer.sites {
			if candidate.name == record.SiteName {
				site = candidate
				break
			}
		}
		if site == nil {
			site = &siteGroup{name: record.SiteName}
			customer.sites = append(customer.sites, site)
		}
		site.records = append(site.records, record)
	}

	for _, customer := range groups {
		body.WriteString(fmt.Sprintf("**Client: %s**\n\n", customer.name))
		for _, site := range customer.sites {
			body.WriteString(fmt.Sprintf("  *Chantier: %s*\n", site.name))
			for _, record := range site.records {
				label := labelDoors
				if record.Part == enums.OrderPartFrames.String() {
					label = labelFrames
				}
				body.WriteString(fmt.Sprintf(
					"    - %s (%s) - Créée le %s\n",
					record.Number, label, record.CreationDate.Format(digestDateFmt),
				))
			}
			body.WriteString("\n")
		}
		body.WriteString("---\n\n")
	}

	body.WriteString("Cordialement,\nL'équipe Batiserv")
	return body.String()
}

// PendingDigestMailto builds the mailto link carrying the digest.
func PendingDigestMailto(records []types.PendingOrderRecord) string {
	return fmt.Sprintf(
		"mailto:?subject=%s&body=%s",
		mailtoEscape(digestSubject),
		mailtoEscape(PendingDigest(records)),
	)
}

// mailtoEscape percent-encodes for a mailto URL, where spaces must be %20
// rather than the form-encoded plus sign.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
